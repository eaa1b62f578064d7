// Package frame implements the wire framing for the command protocol. Every
// message, request or response, is a fixed width ASCII decimal length header
// right padded with spaces, followed by exactly that many bytes of UTF-8
// payload.
package frame

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// HeaderSize is the fixed width of the length header in bytes.
const HeaderSize = 64

// Disconnect is the sentinel payload a client sends for a graceful
// disconnect.
const Disconnect = "!DISCONNECT"

// maxPayload bounds a single message. A header that decodes beyond this is
// treated as malformed so a bad client can't make the node allocate
// arbitrary memory.
const maxPayload = 1 << 20

// ErrBadHeader is returned when a length header is not a valid decimal
// count. The connection can't be resynchronized after this and must close.
var ErrBadHeader = errors.New("malformed length header")

// =============================================================================

// Write frames and writes one message.
func Write(w io.Writer, msg string) error {
	header := strconv.Itoa(len(msg))
	if padding := HeaderSize - len(header); padding > 0 {
		header += strings.Repeat(" ", padding)
	}

	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if _, err := io.WriteString(w, msg); err != nil {
		return fmt.Errorf("writing payload: %w", err)
	}

	return nil
}

// Read reads one framed message. io.EOF is returned unwrapped when the
// connection closes cleanly between messages.
func Read(r io.Reader) (string, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("reading header: %w", err)
	}

	length, err := strconv.Atoi(strings.TrimSpace(string(header)))
	if err != nil || length < 0 || length > maxPayload {
		return "", ErrBadHeader
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return "", fmt.Errorf("reading payload: %w", err)
	}

	return string(payload), nil
}
