package chain_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/chain"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/database"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/hash"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// blockText builds the canonical dot separated encoding for a block.
func blockText(id uint64, nonce string, prevHash string, miner string, txs string) string {
	return fmt.Sprintf("Block id: %d.Nonce: %s.Previous-block hash: %s.Miner id: %s.Transactions: %s",
		id, nonce, prevHash, miner, txs)
}

func Test_Parse(t *testing.T) {
	t.Log("Given the need to parse submitted block text.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen parsing a well formed block.", testID)
		{
			text := blockText(7, "42", "aaaa", "alice", "none")

			block, err := chain.Parse(text)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to parse the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to parse the block.", success, testID)

			if block.ID != 7 || block.Nonce != "42" || block.PrevHash != "aaaa" || block.MinerID != "alice" || block.Transactions != "none" {
				t.Fatalf("\t%s\tTest %d:\tShould decode every field: %+v", failed, testID, block)
			}
			t.Logf("\t%s\tTest %d:\tShould decode every field.", success, testID)
		}

		bad := map[string]string{
			"too few fields":     "Block id: 1.Nonce: 2",
			"missing separators": "garbage.that.has.dots.but no labels",
			"zero identifier":    blockText(0, "1", "h", "m", "t"),
			"non numeric id":     "Block id: x.Nonce: 1.Previous-block hash: h.Miner id: m.Transactions: t",
		}

		for name, text := range bad {
			testID++
			t.Logf("\tTest %d:\tWhen parsing a block with %s.", testID, name)
			{
				if _, err := chain.Parse(text); !errors.Is(err, chain.ErrBadFormat) {
					t.Fatalf("\t%s\tTest %d:\tShould get a bad format error: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould get a bad format error.", success, testID)
			}
		}
	}
}

func Test_Validate(t *testing.T) {
	tail := database.Block{ID: 3, Hash: "tailhash"}
	exists := func(id uint64) bool { return id >= 1 && id <= tail.ID }

	text := blockText(4, "99", tail.Hash, "bob", "none")
	block, err := chain.Parse(text)
	if err != nil {
		t.Fatalf("parsing fixture block: %v", err)
	}

	t.Log("Given the need to validate blocks against the chain rules.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen submitting a valid next block.", testID)
		{
			if err := chain.Validate(block, text, hash.Single(text), tail, 0, exists); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould accept the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould accept the block.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen resubmitting an identifier already on the chain.", testID)
		{
			dupText := blockText(2, "99", tail.Hash, "bob", "none")
			dup, _ := chain.Parse(dupText)

			if err := chain.Validate(dup, dupText, hash.Single(dupText), tail, 0, exists); !errors.Is(err, chain.ErrAlreadyExists) {
				t.Fatalf("\t%s\tTest %d:\tShould get a duplicate error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a duplicate error.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the claimed hash doesn't match the content.", testID)
		{
			if err := chain.Validate(block, text, "0000deadbeef", tail, 0, exists); !errors.Is(err, chain.ErrHashMismatch) {
				t.Fatalf("\t%s\tTest %d:\tShould get a hash mismatch error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a hash mismatch error.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the hash doesn't meet the difficulty target.", testID)
		{
			err := chain.Validate(block, text, hash.Single(text), tail, 64, exists)

			var diffErr *chain.DifficultyError
			if !errors.As(err, &diffErr) {
				t.Fatalf("\t%s\tTest %d:\tShould get a difficulty error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a difficulty error.", success, testID)

			exp := "Hash doesn't meet difficulty requirement: " + strings.Repeat("0", 64)
			if err.Error() != exp {
				t.Fatalf("\t%s\tTest %d:\tShould render the required prefix: got %q", failed, testID, err.Error())
			}
			t.Logf("\t%s\tTest %d:\tShould render the required prefix.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the identifier skips ahead of the tail.", testID)
		{
			skipText := blockText(6, "99", tail.Hash, "bob", "none")
			skip, _ := chain.Parse(skipText)

			if err := chain.Validate(skip, skipText, hash.Single(skipText), tail, 0, exists); !errors.Is(err, chain.ErrBadLinkage) {
				t.Fatalf("\t%s\tTest %d:\tShould get a linkage error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a linkage error.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the previous hash doesn't point at the tail.", testID)
		{
			wrongText := blockText(4, "99", "nottail", "bob", "none")
			wrong, _ := chain.Parse(wrongText)

			if err := chain.Validate(wrong, wrongText, hash.Single(wrongText), tail, 0, exists); !errors.Is(err, chain.ErrBadLinkage) {
				t.Fatalf("\t%s\tTest %d:\tShould get a linkage error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a linkage error.", success, testID)
		}
	}
}
