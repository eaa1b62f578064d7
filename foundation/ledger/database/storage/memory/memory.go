// Package memory implements the database.Storage interface in memory. It
// exists for tests and for running a node without a relational store behind
// it. The same atomicity contract applies: multi row writes happen under one
// lock so observers never see a half applied transfer.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/database"
	"github.com/shopspring/decimal"
)

// Storage provides an in-memory persistence implementation.
type Storage struct {
	mu       sync.RWMutex
	accounts map[string]database.Account
	txs      []database.Tx
	blocks   []database.Block
}

// New constructs an empty in-memory storage.
func New() *Storage {
	return &Storage{
		accounts: make(map[string]database.Account),
	}
}

// Close implements the Storage interface. There is nothing to release.
func (s *Storage) Close() error {
	return nil
}

// =============================================================================

// CreateAccount adds a new account.
func (s *Storage) CreateAccount(ctx context.Context, account database.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.Username]; exists {
		return database.ErrUsernameTaken
	}

	s.accounts[account.Username] = account

	return nil
}

// QueryAccount returns the account for the specified username.
func (s *Storage) QueryAccount(ctx context.Context, username string) (database.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.accounts[username]
	if !exists {
		return database.Account{}, database.ErrAccountNotFound
	}

	return account, nil
}

// UpdateBalance sets the specified account's balance.
func (s *Storage) UpdateBalance(ctx context.Context, username string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[username]
	if !exists {
		return database.ErrAccountNotFound
	}

	account.Balance = balance
	s.accounts[username] = account

	return nil
}

// ApplyTransfer records the transaction and moves both balances as one unit.
func (s *Storage) ApplyTransfer(ctx context.Context, tx database.Tx, fromBalance decimal.Decimal, toBalance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, exists := s.accounts[tx.From]
	if !exists {
		return database.ErrAccountNotFound
	}

	to, exists := s.accounts[tx.To]
	if !exists {
		return database.ErrAccountNotFound
	}

	from.Balance = fromBalance
	to.Balance = toBalance

	s.accounts[tx.From] = from
	s.accounts[tx.To] = to
	s.txs = append(s.txs, tx)

	return nil
}

// QueryHistory returns transactions for the user, most recent first.
func (s *Storage) QueryHistory(ctx context.Context, username string, limit int) ([]database.Tx, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var txs []database.Tx
	for _, tx := range s.txs {
		if tx.From == username || tx.To == username {
			txs = append(txs, tx)
		}
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})

	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}

	return txs, nil
}

// =============================================================================

// WriteBlock appends the block and credits the miner as one unit.
func (s *Storage) WriteBlock(ctx context.Context, block database.Block, miner string, minerBalance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if miner != "" {
		account, exists := s.accounts[miner]
		if !exists {
			return database.ErrAccountNotFound
		}

		account.Balance = minerBalance
		s.accounts[miner] = account
	}

	s.blocks = append(s.blocks, block)

	return nil
}

// QueryAllBlocks returns the full chain ordered by block identifier.
func (s *Storage) QueryAllBlocks(ctx context.Context) ([]database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := make([]database.Block, len(s.blocks))
	copy(blocks, s.blocks)

	return blocks, nil
}

// =============================================================================

var _ database.Storage = (*Storage)(nil)
