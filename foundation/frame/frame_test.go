package frame_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/frame"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_RoundTrip(t *testing.T) {
	messages := []string{
		"GET_BALANCE|alice",
		"!DISCONNECT",
		"",
		strings.Repeat("x", 5000),
	}

	t.Log("Given the need to frame messages across a byte stream.")
	{
		for testID, msg := range messages {
			t.Logf("\tTest %d:\tWhen handling a message of %d bytes.", testID, len(msg))
			{
				var buf bytes.Buffer

				if err := frame.Write(&buf, msg); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to write the message: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to write the message.", success, testID)

				if buf.Len() != frame.HeaderSize+len(msg) {
					t.Fatalf("\t%s\tTest %d:\tShould write exactly header plus payload: got %d, exp %d", failed, testID, buf.Len(), frame.HeaderSize+len(msg))
				}
				t.Logf("\t%s\tTest %d:\tShould write exactly header plus payload.", success, testID)

				got, err := frame.Read(&buf)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to read the message back: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to read the message back.", success, testID)

				if got != msg {
					t.Fatalf("\t%s\tTest %d:\tShould read back the same bytes: got %q", failed, testID, got)
				}
				t.Logf("\t%s\tTest %d:\tShould read back the same bytes.", success, testID)
			}
		}
	}
}

func Test_ReadErrors(t *testing.T) {
	t.Log("Given the need to reject malformed streams.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the length header is not a number.", testID)
		{
			buf := bytes.NewBufferString(strings.Repeat("?", frame.HeaderSize))

			if _, err := frame.Read(buf); !errors.Is(err, frame.ErrBadHeader) {
				t.Fatalf("\t%s\tTest %d:\tShould get a bad header error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a bad header error.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the stream ends before any header.", testID)
		{
			if _, err := frame.Read(bytes.NewBuffer(nil)); !errors.Is(err, io.EOF) {
				t.Fatalf("\t%s\tTest %d:\tShould get io.EOF: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get io.EOF.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the header claims a negative length.", testID)
		{
			header := "-5" + strings.Repeat(" ", frame.HeaderSize-2)

			if _, err := frame.Read(bytes.NewBufferString(header)); !errors.Is(err, frame.ErrBadHeader) {
				t.Fatalf("\t%s\tTest %d:\tShould get a bad header error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a bad header error.", success, testID)
		}
	}
}
