package commands

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ardanlabs/conf/v3"
)

// Blocks prints the accepted blocks in chain order.
func Blocks(args conf.Args, db *sql.DB) error {
	const q = `
	SELECT block_id, miner_id, block_hash, difficulty, accepted_at
	FROM blocks
	ORDER BY block_id`

	rows, err := db.Query(q)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id uint64
		var miner, hash string
		var difficulty int
		var acceptedAt time.Time
		if err := rows.Scan(&id, &miner, &hash, &difficulty, &acceptedAt); err != nil {
			return err
		}
		fmt.Printf("Block: %d  Miner: %s  Difficulty: %d  Hash: %s  At: %s\n",
			id, miner, difficulty, hash, acceptedAt.Format("2006-01-02 15:04:05"))
	}

	return rows.Err()
}
