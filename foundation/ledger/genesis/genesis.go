// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date              time.Time       `json:"date"`
	ChainName         string          `json:"chain_name"`          // A friendly name for this running instance.
	BlockTimeTarget   int             `json:"block_time_target"`   // Desired seconds between accepted blocks.
	RetargetWindow    int             `json:"retarget_window"`     // Number of trailing blocks used to retarget difficulty.
	InitialDifficulty int             `json:"initial_difficulty"`  // Leading zero characters required at chain start.
	BlockReward       decimal.Decimal `json:"block_reward"`        // Reward credited to the miner of an accepted block.
	FeeRate           decimal.Decimal `json:"fee_rate"`            // Fraction of each transfer amount taken as a fee.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
