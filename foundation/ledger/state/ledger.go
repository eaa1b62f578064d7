package state

import (
	"context"
	"errors"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/database"
	"github.com/shopspring/decimal"
)

// historyLimit caps how many records a history query returns.
const historyLimit = 50

// Balance returns the latest committed balance for the user. Unknown users
// report zero.
func (s *State) Balance(ctx context.Context, username string) (decimal.Decimal, error) {
	return s.db.Balance(ctx, username)
}

// Transfer moves amount between two accounts, charging the sender the
// configured fee.
func (s *State) Transfer(ctx context.Context, from string, to string, amount decimal.Decimal) (database.Tx, error) {
	return s.db.Transfer(ctx, from, to, amount)
}

// History returns the user's transactions, most recent first.
func (s *State) History(ctx context.Context, username string) ([]database.Tx, error) {
	return s.db.History(ctx, username, historyLimit)
}

// UsernameAvailable reports whether the username is free to register.
func (s *State) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	_, err := s.db.QueryAccount(ctx, username)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, database.ErrAccountNotFound):
		return true, nil
	default:
		return false, err
	}
}

// =============================================================================
// Administrative bypass operations. These credit balances through the same
// serialized mutation path as transfers but produce no block record, so they
// don't affect chain length or difficulty. They inflate total supply
// independent of the chain; that is accepted behavior, not an oversight.

// MineReward credits the user a full block reward without a block. Used by
// the simulated mining command.
func (s *State) MineReward(ctx context.Context, username string) (decimal.Decimal, error) {
	reward := s.genesis.BlockReward

	if err := s.db.CreditReward(ctx, username, reward); err != nil {
		return decimal.Zero, err
	}

	s.evHandler("state: MineReward: %s mined %s (simulated)", username, reward.StringFixed(8))

	return reward, nil
}

// AirDrop credits the user an arbitrary administrative amount.
func (s *State) AirDrop(ctx context.Context, username string, amount decimal.Decimal) error {
	if err := s.db.CreditReward(ctx, username, amount); err != nil {
		return err
	}

	s.evHandler("state: AirDrop: %s airdropped to %s", amount.StringFixed(8), username)

	return nil
}
