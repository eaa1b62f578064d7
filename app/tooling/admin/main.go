// This program performs administrative tasks against the ledger database.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/app/tooling/admin/commands"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/logger"
	"github.com/ardanlabs/conf/v3"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args conf.Args
		DB   struct {
			User       string `conf:"default:postgres"`
			Password   string `conf:"default:postgres,mask"`
			Host       string `conf:"default:localhost"`
			Name       string `conf:"default:vanillacoin"`
			DisableTLS bool   `conf:"default:true"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	sslMode := "require"
	if cfg.DB.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DB.User, cfg.DB.Password),
		Host:     cfg.DB.Host,
		Path:     cfg.DB.Name,
		RawQuery: q.Encode(),
	}

	db, err := sql.Open("postgres", u.String())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	return processCommands(cfg.Args, db)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, db *sql.DB) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(args, db); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "trans":
		if err := commands.Transactions(args, db); err != nil {
			return fmt.Errorf("getting transactions: %w", err)
		}
	case "blocks":
		if err := commands.Blocks(args, db); err != nil {
			return fmt.Errorf("getting blocks: %w", err)
		}
	default:
		fmt.Println("bals:   list account balances")
		fmt.Println("trans:  list transactions, optionally for one account")
		fmt.Println("blocks: list accepted blocks")
		return errors.New("unknown command")
	}

	return nil
}
