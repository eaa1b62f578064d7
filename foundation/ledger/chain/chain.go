// Package chain implements the stateless validation rules for externally
// mined blocks. The wire encoding is parsed into a tagged struct at this
// boundary; free form block text never travels past it.
package chain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/database"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/hash"
)

// Rejection reasons. The exact text is part of the wire contract with
// miners, so these are surfaced verbatim inside BLOCK REJECTED responses.
var (
	ErrBadFormat     = errors.New("Invalid block format")
	ErrAlreadyExists = errors.New("Block already exists")
	ErrHashMismatch  = errors.New("Hash mismatch")
	ErrBadLinkage    = errors.New("Invalid previous hash")
)

// DifficultyError is the rejection for a hash that doesn't carry enough
// leading zero characters. It renders the required prefix so miners can see
// the difficulty in force.
type DifficultyError struct {
	Difficulty int
}

// Error implements the error interface.
func (e *DifficultyError) Error() string {
	return fmt.Sprintf("Hash doesn't meet difficulty requirement: %s", strings.Repeat("0", e.Difficulty))
}

// =============================================================================

// Parse decodes the canonical block text into a Block. The encoding is five
// dot separated "Label: value" fields in fixed order: identifier, nonce,
// previous hash, miner id, transactions payload.
func Parse(blockText string) (database.Block, error) {
	parts := strings.Split(blockText, ".")
	if len(parts) < 5 {
		return database.Block{}, ErrBadFormat
	}

	values := make([]string, 5)
	for i := range values {
		_, value, found := strings.Cut(parts[i], ": ")
		if !found {
			return database.Block{}, ErrBadFormat
		}
		values[i] = value
	}

	id, err := strconv.ParseUint(values[0], 10, 64)
	if err != nil || id < 1 {
		return database.Block{}, ErrBadFormat
	}

	block := database.Block{
		ID:           id,
		Nonce:        values[1],
		PrevHash:     values[2],
		MinerID:      values[3],
		Transactions: values[4],
	}

	return block, nil
}

// Validate checks a parsed block against the chain rules: duplicate guard,
// content hash, difficulty target and linkage to the current tail. The
// blockText must be the exact submitted bytes, since the content hash is
// recomputed over them.
func Validate(block database.Block, blockText string, claimedHash string, tail database.Block, difficulty int, exists func(id uint64) bool) error {
	if exists(block.ID) {
		return ErrAlreadyExists
	}

	if hash.Single(blockText) != claimedHash {
		return ErrHashMismatch
	}

	if !strings.HasPrefix(claimedHash, strings.Repeat("0", difficulty)) {
		return &DifficultyError{Difficulty: difficulty}
	}

	// Identifiers must stay contiguous and the block must point at the tail.
	if block.ID != tail.ID+1 {
		return ErrBadLinkage
	}
	if block.ID > 1 && block.PrevHash != tail.Hash {
		return ErrBadLinkage
	}

	return nil
}
