// Package database implements the ledger store. It is the single source of
// truth for account balances and owns the serialization discipline that keeps
// balance mutations and chain extensions linearizable across connections.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/genesis"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Set of errors for ledger operations.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
)

// InsufficientFundsError is returned from Transfer when the sender cannot
// cover the amount plus the fee. The two values are carried so callers can
// produce the machine parseable failure text.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

// Error implements the error interface.
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance, required: %s, available: %s", e.Required.StringFixed(8), e.Available.StringFixed(8))
}

// =============================================================================

// Storage interface represents the behavior required to be implemented by any
// package providing persistence for accounts, transactions and blocks. Multi
// row writes must be atomic: they either fully commit or leave no trace.
type Storage interface {
	CreateAccount(ctx context.Context, account Account) error
	QueryAccount(ctx context.Context, username string) (Account, error)
	UpdateBalance(ctx context.Context, username string, balance decimal.Decimal) error
	ApplyTransfer(ctx context.Context, tx Tx, fromBalance decimal.Decimal, toBalance decimal.Decimal) error
	QueryHistory(ctx context.Context, username string, limit int) ([]Tx, error)
	WriteBlock(ctx context.Context, block Block, miner string, minerBalance decimal.Decimal) error
	QueryAllBlocks(ctx context.Context) ([]Block, error)
	Close() error
}

// =============================================================================

// Database manages account balances and the authoritative chain. A single
// write lock closes the check-then-act race on balances; a separate chain
// lock serializes chain extension. Lock acquisition order is always
// muChain before mu.
type Database struct {
	mu      sync.RWMutex
	muChain sync.RWMutex

	genesis     genesis.Genesis
	storage     Storage
	blocks      []Block
	latestBlock Block
	evHandler   func(v string, args ...any)
}

// New constructs the ledger database and loads the chain from storage into
// the in-memory cache used for linkage checks.
func New(gen genesis.Genesis, storage Storage, evHandler func(v string, args ...any)) (*Database, error) {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	blocks, err := storage.QueryAllBlocks(context.Background())
	if err != nil {
		return nil, fmt.Errorf("loading chain: %w", err)
	}

	db := Database{
		genesis:   gen,
		storage:   storage,
		blocks:    blocks,
		evHandler: ev,
	}

	if len(blocks) > 0 {
		db.latestBlock = blocks[len(blocks)-1]
	}

	ev("database: New: loaded %d blocks from storage", len(blocks))

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// =============================================================================
// Balance operations

// Balance returns the latest committed balance for the specified user. An
// unknown user reports a zero balance and is not an error. A transient
// storage failure on this read-only path is retried once.
func (db *Database) Balance(ctx context.Context, username string) (decimal.Decimal, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	account, err := db.storage.QueryAccount(ctx, username)
	if errors.Is(err, ErrAccountNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		if account, err = db.storage.QueryAccount(ctx, username); err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				return decimal.Zero, nil
			}
			return decimal.Zero, fmt.Errorf("querying balance: %w", err)
		}
	}

	return account.Balance, nil
}

// QueryAccount returns the full stored account record.
func (db *Database) QueryAccount(ctx context.Context, username string) (Account, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.storage.QueryAccount(ctx, username)
}

// CreateAccount adds a new account with a zero starting balance.
func (db *Database) CreateAccount(ctx context.Context, account Account) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	account.Balance = decimal.Zero
	account.CreatedAt = time.Now().UTC()

	if err := db.storage.CreateAccount(ctx, account); err != nil {
		return err
	}

	db.evHandler("database: CreateAccount: added account %s", account.Username)

	return nil
}

// Transfer moves amount from one account to another, charging the sender the
// configured fee on top. The debit and credit are applied as one atomic
// storage unit while the ledger write lock is held, so no concurrent check
// can observe a stale balance.
func (db *Database) Transfer(ctx context.Context, from string, to string, amount decimal.Decimal) (Tx, error) {
	if amount.Cmp(decimal.Zero) <= 0 {
		return Tx{}, ErrInvalidAmount
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	sender, err := db.storage.QueryAccount(ctx, from)
	if err != nil {
		return Tx{}, err
	}

	receiver, err := db.storage.QueryAccount(ctx, to)
	if err != nil {
		return Tx{}, err
	}

	fee := amount.Mul(db.genesis.FeeRate)
	required := amount.Add(fee)

	if sender.Balance.Cmp(required) < 0 {
		return Tx{}, &InsufficientFundsError{Required: required, Available: sender.Balance}
	}

	tx := Tx{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Amount:    amount,
		Fee:       fee,
		Status:    TxConfirmed,
		Timestamp: time.Now().UTC(),
	}

	if err := db.storage.ApplyTransfer(ctx, tx, sender.Balance.Sub(required), receiver.Balance.Add(amount)); err != nil {
		return Tx{}, fmt.Errorf("applying transfer: %w", err)
	}

	db.evHandler("database: Transfer: %s sent %s to %s, fee %s", from, amount.StringFixed(8), to, fee.StringFixed(8))

	return tx, nil
}

// CreditReward adds amount to the user's balance outside of any transfer.
// This is the path used for accepted-block rewards taken through ExtendChain
// as well as the administrative credit commands. It shares the transfer
// serialization so the balance invariant holds.
func (db *Database) CreditReward(ctx context.Context, username string, amount decimal.Decimal) error {
	if amount.Cmp(decimal.Zero) <= 0 {
		return ErrInvalidAmount
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	account, err := db.storage.QueryAccount(ctx, username)
	if err != nil {
		return err
	}

	if err := db.storage.UpdateBalance(ctx, username, account.Balance.Add(amount)); err != nil {
		return fmt.Errorf("crediting reward: %w", err)
	}

	db.evHandler("database: CreditReward: credited %s to %s", amount.StringFixed(8), username)

	return nil
}

// History returns transactions where the user is sender or receiver, most
// recent first. A transient storage failure is retried once.
func (db *Database) History(ctx context.Context, username string, limit int) ([]Tx, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	txs, err := db.storage.QueryHistory(ctx, username, limit)
	if err != nil {
		if txs, err = db.storage.QueryHistory(ctx, username, limit); err != nil {
			return nil, fmt.Errorf("querying history: %w", err)
		}
	}

	return txs, nil
}

// =============================================================================
// Chain operations

// LatestBlock returns the current chain tail.
func (db *Database) LatestBlock() Block {
	db.muChain.RLock()
	defer db.muChain.RUnlock()

	return db.latestBlock
}

// ChainLength returns the number of blocks in the chain.
func (db *Database) ChainLength() int {
	db.muChain.RLock()
	defer db.muChain.RUnlock()

	return len(db.blocks)
}

// BlockExists reports whether a block with the specified identifier has
// already been accepted. Identifiers are contiguous from 1 so the cache
// answers without a storage read.
func (db *Database) BlockExists(id uint64) bool {
	db.muChain.RLock()
	defer db.muChain.RUnlock()

	return id >= 1 && id <= db.latestBlock.ID
}

// LastBlocks returns a copy of up to n blocks from the tail of the chain,
// oldest first. It is the read feed for difficulty retargeting.
func (db *Database) LastBlocks(n int) []Block {
	db.muChain.RLock()
	defer db.muChain.RUnlock()

	if n > len(db.blocks) {
		n = len(db.blocks)
	}

	blocks := make([]Block, n)
	copy(blocks, db.blocks[len(db.blocks)-n:])

	return blocks
}

// ExtendChain appends a validated block to the chain and credits the miner
// the block reward as one atomic storage unit. The caller is responsible for
// validation; this method is responsible for making the extension and the
// reward indivisible. A miner id with no matching account forfeits the
// reward, the block is still stored.
func (db *Database) ExtendChain(ctx context.Context, block Block) error {
	db.muChain.Lock()
	defer db.muChain.Unlock()

	db.mu.Lock()
	defer db.mu.Unlock()

	miner := block.MinerID
	minerBalance := decimal.Zero

	account, err := db.storage.QueryAccount(ctx, miner)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		miner = ""
	case err != nil:
		return fmt.Errorf("querying miner account: %w", err)
	default:
		minerBalance = account.Balance.Add(db.genesis.BlockReward)
	}

	if err := db.storage.WriteBlock(ctx, block, miner, minerBalance); err != nil {
		return fmt.Errorf("writing block: %w", err)
	}

	db.blocks = append(db.blocks, block)
	db.latestBlock = block

	db.evHandler("database: ExtendChain: block %d accepted, miner %s rewarded %s", block.ID, block.MinerID, db.genesis.BlockReward.StringFixed(8))

	return nil
}
