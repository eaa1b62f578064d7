// Package commands implements the admin tool queries.
package commands

import (
	"database/sql"
	"fmt"

	"github.com/ardanlabs/conf/v3"
)

// Balances prints the current set of account balances. An optional second
// argument restricts the output to one account.
func Balances(args conf.Args, db *sql.DB) error {
	const q = `
	SELECT username, balance
	FROM accounts
	WHERE $1 = '' OR username = $1
	ORDER BY username`

	rows, err := db.Query(q, args.Num(1))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var username string
		var balance string
		if err := rows.Scan(&username, &balance); err != nil {
			return err
		}
		fmt.Printf("Account: %s  Balance: %s\n", username, balance)
	}

	return rows.Err()
}
