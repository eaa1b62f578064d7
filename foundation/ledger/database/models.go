package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fingerprints carries the single-hashed hardware identifiers bound to an
// account at registration.
type Fingerprints struct {
	CPU  string `json:"cpu_id"`
	RAM  string `json:"ram_id"`
	Disk string `json:"disk_serial"`
}

// Account represents information stored for an individual account. All hash
// fields are stored pre-hashed; the database never sees a raw credential.
type Account struct {
	Username      string
	Credential    string
	Fingerprints  Fingerprints
	RecoveryWords []string
	Balance       decimal.Decimal
	CreatedAt     time.Time
}

// =============================================================================

// Set of statuses a transaction can be in.
const (
	TxPending   = "pending"
	TxConfirmed = "confirmed"
	TxFailed    = "failed"
)

// Tx represents a peer to peer transfer between two accounts. A transaction
// is immutable once confirmed except for the owning block linkage.
type Tx struct {
	ID        string          `json:"id"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Fee       decimal.Decimal `json:"fee"`
	Status    string          `json:"status"`
	BlockID   uint64          `json:"block_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// =============================================================================

// Block represents an externally mined block accepted into the chain.
// The Transactions payload is opaque at this layer.
type Block struct {
	ID           uint64
	Nonce        string
	PrevHash     string
	MinerID      string
	Transactions string
	Hash         string
	Difficulty   int
	Timestamp    time.Time
}
