// Package postgres implements the database.Storage interface against a
// Postgres relational store using parameterized CRUD. Multi row writes run
// inside a single SQL transaction so a failure between debit and credit can
// never leave the debit applied.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/database"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// uniqueViolation is the Postgres error code for a duplicate key.
const uniqueViolation = "23505"

// Storage provides persistence against a Postgres database.
type Storage struct {
	db *sql.DB
}

// New constructs a Storage for the specified database handle.
func New(db *sql.DB) *Storage {
	return &Storage{
		db: db,
	}
}

// Close releases the database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}

// CreateSchema creates the ledger tables if they don't exist.
func (s *Storage) CreateSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS accounts (
		username       TEXT PRIMARY KEY,
		credential     TEXT NOT NULL,
		cpu_hash       TEXT NOT NULL,
		ram_hash       TEXT NOT NULL,
		disk_hash      TEXT NOT NULL,
		recovery_words JSONB NOT NULL,
		balance        NUMERIC(20,8) NOT NULL DEFAULT 0.00000000,
		created_at     TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS blocks (
		block_id      BIGINT PRIMARY KEY,
		nonce         TEXT NOT NULL,
		previous_hash TEXT NOT NULL,
		miner_id      TEXT NOT NULL,
		transactions  TEXT NOT NULL,
		block_hash    TEXT NOT NULL,
		difficulty    INT NOT NULL,
		accepted_at   TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS transactions (
		transaction_id TEXT PRIMARY KEY,
		from_username  TEXT NOT NULL,
		to_username    TEXT NOT NULL,
		amount         NUMERIC(20,8) NOT NULL,
		fee            NUMERIC(20,8) NOT NULL DEFAULT 0.00000000,
		status         TEXT NOT NULL DEFAULT 'pending',
		block_id       BIGINT NULL REFERENCES blocks(block_id),
		created_at     TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS transactions_from_idx ON transactions (from_username, created_at DESC);
	CREATE INDEX IF NOT EXISTS transactions_to_idx ON transactions (to_username, created_at DESC);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// =============================================================================

// CreateAccount inserts a new account row.
func (s *Storage) CreateAccount(ctx context.Context, account database.Account) error {
	const query = `
	INSERT INTO accounts (username, credential, cpu_hash, ram_hash, disk_hash, recovery_words, balance, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	words, err := json.Marshal(account.RecoveryWords)
	if err != nil {
		return fmt.Errorf("encoding recovery words: %w", err)
	}

	_, err = s.db.ExecContext(ctx, query,
		account.Username,
		account.Credential,
		account.Fingerprints.CPU,
		account.Fingerprints.RAM,
		account.Fingerprints.Disk,
		words,
		account.Balance,
		account.CreatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return database.ErrUsernameTaken
	}

	return err
}

// QueryAccount reads a single account row by username.
func (s *Storage) QueryAccount(ctx context.Context, username string) (database.Account, error) {
	const query = `
	SELECT username, credential, cpu_hash, ram_hash, disk_hash, recovery_words, balance, created_at
	FROM accounts
	WHERE username = $1`

	var account database.Account
	var words []byte

	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&account.Username,
		&account.Credential,
		&account.Fingerprints.CPU,
		&account.Fingerprints.RAM,
		&account.Fingerprints.Disk,
		&words,
		&account.Balance,
		&account.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return database.Account{}, database.ErrAccountNotFound
	}
	if err != nil {
		return database.Account{}, err
	}

	if err := json.Unmarshal(words, &account.RecoveryWords); err != nil {
		return database.Account{}, fmt.Errorf("decoding recovery words: %w", err)
	}

	return account, nil
}

// UpdateBalance sets the specified account's balance.
func (s *Storage) UpdateBalance(ctx context.Context, username string, balance decimal.Decimal) error {
	const query = `UPDATE accounts SET balance = $2 WHERE username = $1`

	_, err := s.db.ExecContext(ctx, query, username, balance)
	return err
}

// ApplyTransfer records the transaction and moves both balances in a single
// SQL transaction. The record is created pending and flipped to its final
// status before the commit, so an observer only ever sees a confirmed
// transfer with both balances moved.
func (s *Storage) ApplyTransfer(ctx context.Context, tx database.Tx, fromBalance decimal.Decimal, toBalance decimal.Decimal) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const insert = `
	INSERT INTO transactions (transaction_id, from_username, to_username, amount, fee, status, created_at)
	VALUES ($1, $2, $3, $4, $5, 'pending', $6)`

	if _, err = dbTx.ExecContext(ctx, insert, tx.ID, tx.From, tx.To, tx.Amount, tx.Fee, tx.Timestamp); err != nil {
		return err
	}

	const update = `UPDATE accounts SET balance = $2 WHERE username = $1`

	if _, err = dbTx.ExecContext(ctx, update, tx.From, fromBalance); err != nil {
		return err
	}
	if _, err = dbTx.ExecContext(ctx, update, tx.To, toBalance); err != nil {
		return err
	}

	const confirm = `UPDATE transactions SET status = $2 WHERE transaction_id = $1`

	if _, err = dbTx.ExecContext(ctx, confirm, tx.ID, tx.Status); err != nil {
		return err
	}

	return dbTx.Commit()
}

// QueryHistory returns transactions where the user is sender or receiver,
// most recent first.
func (s *Storage) QueryHistory(ctx context.Context, username string, limit int) ([]database.Tx, error) {
	const query = `
	SELECT transaction_id, from_username, to_username, amount, fee, status, block_id, created_at
	FROM transactions
	WHERE from_username = $1 OR to_username = $1
	ORDER BY created_at DESC
	LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []database.Tx
	for rows.Next() {
		var tx database.Tx
		var blockID sql.NullInt64

		if err := rows.Scan(&tx.ID, &tx.From, &tx.To, &tx.Amount, &tx.Fee, &tx.Status, &blockID, &tx.Timestamp); err != nil {
			return nil, err
		}

		if blockID.Valid {
			tx.BlockID = uint64(blockID.Int64)
		}

		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

// =============================================================================

// WriteBlock appends the block and credits the miner's reward balance in a
// single SQL transaction. An empty miner means no account is credited.
func (s *Storage) WriteBlock(ctx context.Context, block database.Block, miner string, minerBalance decimal.Decimal) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const insert = `
	INSERT INTO blocks (block_id, nonce, previous_hash, miner_id, transactions, block_hash, difficulty, accepted_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err = dbTx.ExecContext(ctx, insert,
		block.ID,
		block.Nonce,
		block.PrevHash,
		block.MinerID,
		block.Transactions,
		block.Hash,
		block.Difficulty,
		block.Timestamp,
	); err != nil {
		return err
	}

	if miner != "" {
		const update = `UPDATE accounts SET balance = $2 WHERE username = $1`

		if _, err = dbTx.ExecContext(ctx, update, miner, minerBalance); err != nil {
			return err
		}
	}

	return dbTx.Commit()
}

// QueryAllBlocks reads the full chain ordered by block identifier.
func (s *Storage) QueryAllBlocks(ctx context.Context) ([]database.Block, error) {
	const query = `
	SELECT block_id, nonce, previous_hash, miner_id, transactions, block_hash, difficulty, accepted_at
	FROM blocks
	ORDER BY block_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []database.Block
	for rows.Next() {
		var block database.Block

		if err := rows.Scan(
			&block.ID,
			&block.Nonce,
			&block.PrevHash,
			&block.MinerID,
			&block.Transactions,
			&block.Hash,
			&block.Difficulty,
			&block.Timestamp,
		); err != nil {
			return nil, err
		}

		blocks = append(blocks, block)
	}

	return blocks, rows.Err()
}

// =============================================================================

var _ database.Storage = (*Storage)(nil)
