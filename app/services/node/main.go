package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/app/services/node/handlers"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/app/services/node/server"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/events"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/database/storage/postgres"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/genesis"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/hash"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/state"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/logger"
	"github.com/ardanlabs/conf/v3"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
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

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			OpsHost         string        `conf:"default:0.0.0.0:8080"`
		}
		Node struct {
			Host        string `conf:"default:0.0.0.0:5050"`
			GenesisPath string `conf:"default:zledger/genesis.json"`
		}
		DB struct {
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

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	fmt.Println(` __     ___    _   _ ___ _     _        ____ ___ ___ _   _ `)
	fmt.Println(` \ \   / / \  | \ | |_ _| |   | |      / ___/ _ \_ _| \ | |`)
	fmt.Println(`  \ \ / / _ \ |  \| || || |   | |     | |  | | | | ||  \| |`)
	fmt.Println(`   \ V / ___ \| |\  || || |___| |___  | |__| |_| | || |\  |`)
	fmt.Println(`    \_/_/   \_\_| \_|___|_____|_____|  \____\___/___|_| \_|`)
	fmt.Print("\n")

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Hashing Support

	// The hashing package carries fixtures for its known digests. A failure
	// here means the linked hash implementation does not produce the digests
	// every client depends on.
	if err := hash.Verify(); err != nil {
		return fmt.Errorf("verifying hash support: %w", err)
	}
	log.Infow("startup", "status", "hash self test passed")

	// =========================================================================
	// Database Support

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

	log.Infow("startup", "status", "initializing database support", "host", cfg.DB.Host)

	db, err := sql.Open("postgres", u.String())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Infow("shutdown", "status", "stopping database support", "host", cfg.DB.Host)
		db.Close()
	}()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	storage := postgres.New(db)
	if err := storage.CreateSchema(context.Background()); err != nil {
		return fmt.Errorf("creating database schema: %w", err)
	}

	// =========================================================================
	// Ledger Support

	gen, err := genesis.Load(cfg.Node.GenesisPath)
	if err != nil {
		return fmt.Errorf("loading genesis: %w", err)
	}
	log.Infow("startup", "status", "genesis loaded", "chain", gen.ChainName, "difficulty", gen.InitialDifficulty)

	// The ledger packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s)
		evts.Send(s)
	}

	// The state value represents the ledger node. It owns the balances, the
	// chain of accepted blocks, and the difficulty in force.
	st, err := state.New(state.Config{
		Genesis:   gen,
		Storage:   storage,
		EvHandler: ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	// The DebugMux function returns a mux to listen and serve on for all the
	// debug related endpoints. This includes the standard library endpoints.

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, handlers.DebugMux(build, log)); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listeners. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Ops Service

	log.Infow("startup", "status", "initializing ops API support")

	opsMux := handlers.OpsMux(handlers.MuxConfig{
		Log:   log,
		State: st,
		Evts:  evts,
	})

	ops := http.Server{
		Addr:         cfg.Web.OpsHost,
		Handler:      opsMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "ops api router started", "host", ops.Addr)
		serverErrors <- ops.ListenAndServe()
	}()

	// =========================================================================
	// Start Node Service

	log.Infow("startup", "status", "initializing node protocol support")

	srv := server.New(server.Config{
		Log:   log,
		State: st,
		Host:  cfg.Node.Host,
	})

	if err := srv.Start(); err != nil {
		return fmt.Errorf("starting node listener: %w", err)
	}

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give active clients a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking the node listener to shut down and close the sessions.
		log.Infow("shutdown", "status", "shutdown node listener started")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("could not stop node listener gracefully: %w", err)
		}

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown ops API started")
		if err := ops.Shutdown(ctx); err != nil {
			ops.Close()
			return fmt.Errorf("could not stop ops service gracefully: %w", err)
		}
	}

	return nil
}
