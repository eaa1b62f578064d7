package state

import (
	"context"
	"time"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/chain"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/database"
)

// SubmitBlock takes an externally mined block, validates it against the
// chain rules and the difficulty in force, and on acceptance extends the
// chain and credits the miner reward as one atomic unit. Submissions are
// fully serialized, so two blocks accepted concurrently can never claim the
// same identifier or tail.
func (s *State) SubmitBlock(ctx context.Context, blockText string, claimedHash string) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	block, err := chain.Parse(blockText)
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: SubmitBlock: blk[%d]: miner[%s]: validate", block.ID, block.MinerID)

	difficulty := s.difficulty.Current()

	if err := chain.Validate(block, blockText, claimedHash, s.db.LatestBlock(), difficulty, s.db.BlockExists); err != nil {
		s.evHandler("state: SubmitBlock: blk[%d]: REJECTED: %s", block.ID, err)
		return database.Block{}, err
	}

	block.Hash = claimedHash
	block.Difficulty = difficulty
	block.Timestamp = time.Now().UTC()

	if err := s.db.ExtendChain(ctx, block); err != nil {
		return database.Block{}, err
	}

	// Retarget from the trailing window now that the chain moved. Still under
	// the submission lock, so no block validates against a mid-recompute value.
	newDifficulty := s.difficulty.Recompute(s.db.LastBlocks(s.genesis.RetargetWindow))
	if newDifficulty != difficulty {
		s.evHandler("state: SubmitBlock: difficulty adjusted from %d to %d", difficulty, newDifficulty)
	}

	s.evHandler("state: SubmitBlock: blk[%d]: ACCEPTED: hash[%s]", block.ID, block.Hash)

	return block, nil
}
