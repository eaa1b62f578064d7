package commands

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ardanlabs/conf/v3"
)

// Transactions prints the recorded transactions, most recent first. An
// optional second argument restricts the output to one account.
func Transactions(args conf.Args, db *sql.DB) error {
	const q = `
	SELECT transaction_id, from_username, to_username, amount, fee, status, created_at
	FROM transactions
	WHERE $1 = '' OR from_username = $1 OR to_username = $1
	ORDER BY created_at DESC`

	rows, err := db.Query(q, args.Num(1))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, from, to, amount, fee, status string
		var createdAt time.Time
		if err := rows.Scan(&id, &from, &to, &amount, &fee, &status, &createdAt); err != nil {
			return err
		}
		fmt.Printf("ID: %s  From: %s  To: %s  Amount: %s  Fee: %s  Status: %s  At: %s\n",
			id, from, to, amount, fee, status, createdAt.Format("2006-01-02 15:04:05"))
	}

	return rows.Err()
}
