package database_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/database"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/database/storage/memory"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/genesis"
	"github.com/shopspring/decimal"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// testGenesis returns the ledger settings used across these tests.
func testGenesis() genesis.Genesis {
	return genesis.Genesis{
		ChainName:         "test-chain",
		BlockTimeTarget:   10,
		RetargetWindow:    10,
		InitialDifficulty: 2,
		BlockReward:       decimal.NewFromInt(100),
		FeeRate:           decimal.NewFromFloat(0.01),
	}
}

// newTestDatabase constructs a database over in-memory storage with two
// funded accounts.
func newTestDatabase(t *testing.T, balances map[string]decimal.Decimal) *database.Database {
	t.Helper()

	store := memory.New()
	ctx := context.Background()

	for username, balance := range balances {
		account := database.Account{
			Username:   username,
			Credential: "credential",
			CreatedAt:  time.Now().UTC(),
		}
		if err := store.CreateAccount(ctx, account); err != nil {
			t.Fatalf("creating account %s: %v", username, err)
		}
		if err := store.UpdateBalance(ctx, username, balance); err != nil {
			t.Fatalf("funding account %s: %v", username, err)
		}
	}

	db, err := database.New(testGenesis(), store, nil)
	if err != nil {
		t.Fatalf("constructing database: %v", err)
	}

	return db
}

func Test_Transfer(t *testing.T) {
	t.Log("Given the need to move funds between accounts with a fee.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen alice sends 10 coins to bob from a balance of 100.", testID)
		{
			ctx := context.Background()
			db := newTestDatabase(t, map[string]decimal.Decimal{
				"alice": decimal.NewFromInt(100),
				"bob":   decimal.Zero,
			})

			tx, err := db.Transfer(ctx, "alice", "bob", decimal.NewFromInt(10))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to make the transfer: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to make the transfer.", success, testID)

			if tx.Fee.StringFixed(8) != "0.10000000" {
				t.Fatalf("\t%s\tTest %d:\tShould charge a one percent fee: got %s", failed, testID, tx.Fee)
			}
			t.Logf("\t%s\tTest %d:\tShould charge a one percent fee.", success, testID)

			aliceBal, _ := db.Balance(ctx, "alice")
			if aliceBal.StringFixed(8) != "89.90000000" {
				t.Fatalf("\t%s\tTest %d:\tShould debit the sender amount plus fee: got %s", failed, testID, aliceBal)
			}
			t.Logf("\t%s\tTest %d:\tShould debit the sender amount plus fee.", success, testID)

			bobBal, _ := db.Balance(ctx, "bob")
			if bobBal.StringFixed(8) != "10.00000000" {
				t.Fatalf("\t%s\tTest %d:\tShould credit the receiver the amount only: got %s", failed, testID, bobBal)
			}
			t.Logf("\t%s\tTest %d:\tShould credit the receiver the amount only.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the sender can cover the amount but not the fee.", testID)
		{
			ctx := context.Background()
			db := newTestDatabase(t, map[string]decimal.Decimal{
				"alice": decimal.NewFromInt(100),
				"bob":   decimal.Zero,
			})

			_, err := db.Transfer(ctx, "alice", "bob", decimal.NewFromInt(100))

			var insufficient *database.InsufficientFundsError
			if !errors.As(err, &insufficient) {
				t.Fatalf("\t%s\tTest %d:\tShould get an insufficient funds error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get an insufficient funds error.", success, testID)

			if insufficient.Required.StringFixed(8) != "101.00000000" || insufficient.Available.StringFixed(8) != "100.00000000" {
				t.Fatalf("\t%s\tTest %d:\tShould report required and available: got %s / %s", failed, testID, insufficient.Required, insufficient.Available)
			}
			t.Logf("\t%s\tTest %d:\tShould report required and available.", success, testID)

			aliceBal, _ := db.Balance(ctx, "alice")
			bobBal, _ := db.Balance(ctx, "bob")
			if aliceBal.StringFixed(8) != "100.00000000" || bobBal.StringFixed(8) != "0.00000000" {
				t.Fatalf("\t%s\tTest %d:\tShould leave both balances untouched: got %s / %s", failed, testID, aliceBal, bobBal)
			}
			t.Logf("\t%s\tTest %d:\tShould leave both balances untouched.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a party to the transfer doesn't exist.", testID)
		{
			ctx := context.Background()
			db := newTestDatabase(t, map[string]decimal.Decimal{
				"alice": decimal.NewFromInt(100),
			})

			if _, err := db.Transfer(ctx, "alice", "nobody", decimal.NewFromInt(10)); !errors.Is(err, database.ErrAccountNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould reject an unknown receiver: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject an unknown receiver.", success, testID)

			if _, err := db.Transfer(ctx, "nobody", "alice", decimal.NewFromInt(10)); !errors.Is(err, database.ErrAccountNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould reject an unknown sender: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject an unknown sender.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the amount is zero or negative.", testID)
		{
			ctx := context.Background()
			db := newTestDatabase(t, map[string]decimal.Decimal{
				"alice": decimal.NewFromInt(100),
				"bob":   decimal.Zero,
			})

			if _, err := db.Transfer(ctx, "alice", "bob", decimal.Zero); !errors.Is(err, database.ErrInvalidAmount) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a zero amount: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a zero amount.", success, testID)

			if _, err := db.Transfer(ctx, "alice", "bob", decimal.NewFromInt(-5)); !errors.Is(err, database.ErrInvalidAmount) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a negative amount: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a negative amount.", success, testID)
		}
	}
}

func Test_ConcurrentTransfers(t *testing.T) {
	t.Log("Given the need to keep balances consistent under concurrent transfers.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen 50 goroutines each transfer 1 coin.", testID)
		{
			ctx := context.Background()
			db := newTestDatabase(t, map[string]decimal.Decimal{
				"alice": decimal.NewFromInt(1000),
				"bob":   decimal.Zero,
			})

			const transfers = 50

			var wg sync.WaitGroup
			wg.Add(transfers)
			for i := 0; i < transfers; i++ {
				go func() {
					defer wg.Done()
					db.Transfer(ctx, "alice", "bob", decimal.NewFromInt(1))
				}()
			}
			wg.Wait()

			aliceBal, _ := db.Balance(ctx, "alice")
			if aliceBal.StringFixed(8) != "949.50000000" {
				t.Fatalf("\t%s\tTest %d:\tShould debit alice 1.01 per transfer: got %s", failed, testID, aliceBal)
			}
			t.Logf("\t%s\tTest %d:\tShould debit alice 1.01 per transfer.", success, testID)

			bobBal, _ := db.Balance(ctx, "bob")
			if bobBal.StringFixed(8) != "50.00000000" {
				t.Fatalf("\t%s\tTest %d:\tShould credit bob exactly 50: got %s", failed, testID, bobBal)
			}
			t.Logf("\t%s\tTest %d:\tShould credit bob exactly 50.", success, testID)
		}
	}
}

func Test_BalanceAndHistory(t *testing.T) {
	t.Log("Given the need to report balances and transaction history.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen querying an unknown account.", testID)
		{
			ctx := context.Background()
			db := newTestDatabase(t, nil)

			balance, err := db.Balance(ctx, "ghost")
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould not get an error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not get an error.", success, testID)

			if !balance.IsZero() {
				t.Fatalf("\t%s\tTest %d:\tShould report a zero balance: got %s", failed, testID, balance)
			}
			t.Logf("\t%s\tTest %d:\tShould report a zero balance.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen querying history after several transfers.", testID)
		{
			ctx := context.Background()
			db := newTestDatabase(t, map[string]decimal.Decimal{
				"alice": decimal.NewFromInt(100),
				"bob":   decimal.NewFromInt(100),
				"carol": decimal.NewFromInt(100),
			})

			if _, err := db.Transfer(ctx, "alice", "bob", decimal.NewFromInt(5)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to seed transfers: %v", failed, testID, err)
			}
			if _, err := db.Transfer(ctx, "bob", "alice", decimal.NewFromInt(3)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to seed transfers: %v", failed, testID, err)
			}
			if _, err := db.Transfer(ctx, "bob", "carol", decimal.NewFromInt(2)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to seed transfers: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to seed transfers.", success, testID)

			history, err := db.History(ctx, "alice", 50)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to query history: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to query history.", success, testID)

			if len(history) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould only include alice's transactions: got %d, exp 2", failed, testID, len(history))
			}
			t.Logf("\t%s\tTest %d:\tShould only include alice's transactions.", success, testID)

			if history[0].From != "bob" || history[0].To != "alice" {
				t.Fatalf("\t%s\tTest %d:\tShould order most recent first: got %s -> %s", failed, testID, history[0].From, history[0].To)
			}
			t.Logf("\t%s\tTest %d:\tShould order most recent first.", success, testID)
		}
	}
}

func Test_CreditReward(t *testing.T) {
	t.Log("Given the need to credit rewards outside of transfers.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen crediting a known account.", testID)
		{
			ctx := context.Background()
			db := newTestDatabase(t, map[string]decimal.Decimal{
				"miner": decimal.NewFromInt(1),
			})

			if err := db.CreditReward(ctx, "miner", decimal.NewFromInt(100)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to credit the reward: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to credit the reward.", success, testID)

			balance, _ := db.Balance(ctx, "miner")
			if balance.StringFixed(8) != "101.00000000" {
				t.Fatalf("\t%s\tTest %d:\tShould add the full reward: got %s", failed, testID, balance)
			}
			t.Logf("\t%s\tTest %d:\tShould add the full reward.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen crediting an unknown account.", testID)
		{
			ctx := context.Background()
			db := newTestDatabase(t, nil)

			if err := db.CreditReward(ctx, "nobody", decimal.NewFromInt(100)); !errors.Is(err, database.ErrAccountNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould get a not found error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a not found error.", success, testID)
		}
	}
}

func Test_ExtendChain(t *testing.T) {
	t.Log("Given the need to extend the chain and reward the miner atomically.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen accepting a block mined by a known account.", testID)
		{
			ctx := context.Background()
			db := newTestDatabase(t, map[string]decimal.Decimal{
				"miner": decimal.Zero,
			})

			block := database.Block{
				ID:        1,
				MinerID:   "miner",
				Hash:      "00abc",
				Timestamp: time.Now().UTC(),
			}

			if err := db.ExtendChain(ctx, block); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to extend the chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to extend the chain.", success, testID)

			if db.ChainLength() != 1 || db.LatestBlock().ID != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould update the chain tail: len %d, tail %d", failed, testID, db.ChainLength(), db.LatestBlock().ID)
			}
			t.Logf("\t%s\tTest %d:\tShould update the chain tail.", success, testID)

			balance, _ := db.Balance(ctx, "miner")
			if balance.StringFixed(8) != "100.00000000" {
				t.Fatalf("\t%s\tTest %d:\tShould credit the block reward: got %s", failed, testID, balance)
			}
			t.Logf("\t%s\tTest %d:\tShould credit the block reward.", success, testID)

			if !db.BlockExists(1) || db.BlockExists(2) {
				t.Fatalf("\t%s\tTest %d:\tShould report block existence correctly.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould report block existence correctly.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the miner has no registered account.", testID)
		{
			ctx := context.Background()
			db := newTestDatabase(t, nil)

			block := database.Block{
				ID:        1,
				MinerID:   "stranger",
				Hash:      "00abc",
				Timestamp: time.Now().UTC(),
			}

			if err := db.ExtendChain(ctx, block); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould still store the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould still store the block.", success, testID)

			balance, _ := db.Balance(ctx, "stranger")
			if !balance.IsZero() {
				t.Fatalf("\t%s\tTest %d:\tShould forfeit the reward: got %s", failed, testID, balance)
			}
			t.Logf("\t%s\tTest %d:\tShould forfeit the reward.", success, testID)
		}
	}
}
