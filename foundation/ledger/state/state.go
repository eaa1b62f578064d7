// Package state is the core API for the ledger node and implements all the
// business rules and processing.
package state

import (
	"sync"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/database"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/difficulty"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/genesis"
)

// EventHandler defines a function that is called when events occur in the
// processing of ledger and chain operations.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	Genesis   genesis.Genesis
	Storage   database.Storage
	EvHandler EventHandler
}

// State manages the ledger database, the chain and the difficulty in force.
type State struct {
	mu sync.Mutex

	genesis    genesis.Genesis
	db         *database.Database
	difficulty *difficulty.Controller
	evHandler  EventHandler
}

// New constructs a new state for ledger management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	db, err := database.New(cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	// The difficulty in force always starts from the genesis value. Blocks
	// record the difficulty they were accepted under, so history stays
	// auditable across restarts.
	ctrl := difficulty.New(cfg.Genesis.InitialDifficulty, cfg.Genesis.BlockTimeTarget, cfg.Genesis.RetargetWindow)

	state := State{
		genesis:    cfg.Genesis,
		db:         db,
		difficulty: ctrl,
		evHandler:  ev,
	}

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	return s.db.Close()
}

// =============================================================================

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// LatestBlock returns the current chain tail.
func (s *State) LatestBlock() database.Block {
	return s.db.LatestBlock()
}

// ChainLength returns the number of accepted blocks.
func (s *State) ChainLength() int {
	return s.db.ChainLength()
}

// Difficulty returns the difficulty currently in force.
func (s *State) Difficulty() int {
	return s.difficulty.Current()
}
