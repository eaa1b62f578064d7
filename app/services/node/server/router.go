package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/business/sys/validate"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/database"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/state"
	"github.com/shopspring/decimal"
)

// blockSeparator splits a block submission into its canonical block text
// and the claimed hash.
const blockSeparator = "|||"

// route decodes one protocol message and dispatches it. It returns the
// response for the submitting session and, for an accepted block, the
// message to broadcast to every other session.
func (srv *Server) route(ctx context.Context, msg string) (resp string, broadcast string) {
	switch {
	case strings.HasPrefix(msg, "GET_BALANCE|"):
		return srv.handleBalance(ctx, msg[len("GET_BALANCE|"):]), ""

	case strings.HasPrefix(msg, "SEND_TRANSACTION|"):
		return srv.handleTransaction(ctx, msg[len("SEND_TRANSACTION|"):]), ""

	case strings.HasPrefix(msg, "GET_HISTORY|"):
		return srv.handleHistory(ctx, msg[len("GET_HISTORY|"):]), ""

	case strings.HasPrefix(msg, "MINE|"):
		return srv.handleMine(ctx, msg[len("MINE|"):]), ""

	case strings.HasPrefix(msg, "AIR_DROP|"):
		return srv.handleAirDrop(ctx, msg[len("AIR_DROP|"):]), ""

	case strings.HasPrefix(msg, "CHECK_USERNAME|"):
		return srv.handleCheckUsername(ctx, msg[len("CHECK_USERNAME|"):]), ""

	case strings.HasPrefix(msg, "REGISTER|"):
		return srv.handleRegister(ctx, msg[len("REGISTER|"):]), ""

	case strings.HasPrefix(msg, "LOGIN|"):
		return srv.handleLogin(ctx, msg[len("LOGIN|"):]), ""

	case strings.Contains(msg, blockSeparator):
		return srv.handleBlock(ctx, msg)

	default:
		return fmt.Sprintf("MSG received: %s", msg), ""
	}
}

// =============================================================================

func (srv *Server) handleBalance(ctx context.Context, payload string) string {
	username := strings.TrimSpace(payload)

	balance, err := srv.state.Balance(ctx, username)
	if err != nil {
		return fmt.Sprintf("BALANCE_ERROR: %s", err)
	}

	resp := balanceResponse{
		Balance: balance.StringFixed(8),
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf("BALANCE_ERROR: %s", err)
	}

	return string(data)
}

func (srv *Server) handleTransaction(ctx context.Context, payload string) string {
	parts := strings.Split(payload, "|")
	if len(parts) < 3 {
		return "TRANSACTION_FAILED: Invalid transaction data"
	}

	amount, err := decimal.NewFromString(parts[2])
	if err != nil {
		return "TRANSACTION_FAILED: Invalid transaction data"
	}

	tx, err := srv.state.Transfer(ctx, parts[0], parts[1], amount)
	if err != nil {
		var insufficient *database.InsufficientFundsError
		switch {
		case errors.As(err, &insufficient):
			return fmt.Sprintf("TRANSACTION_FAILED: Insufficient balance. Required: %s, Available: %s",
				insufficient.Required.StringFixed(8), insufficient.Available.StringFixed(8))

		case errors.Is(err, database.ErrAccountNotFound):
			return "TRANSACTION_FAILED: One or both users not found"

		case errors.Is(err, database.ErrInvalidAmount):
			return "TRANSACTION_FAILED: Amount must be greater than zero"

		default:
			return fmt.Sprintf("TRANSACTION_ERROR: %s", err)
		}
	}

	return fmt.Sprintf("SEND_SUCCESS: Transaction successful. ID: %s", tx.ID)
}

func (srv *Server) handleHistory(ctx context.Context, payload string) string {
	username := strings.TrimSpace(payload)

	txs, err := srv.state.History(ctx, username)
	if err != nil {
		return fmt.Sprintf("HISTORY_ERROR: %s", err)
	}

	records := make([]historyRecord, len(txs))
	for i, tx := range txs {
		direction := "received"
		if tx.From == username {
			direction = "sent"
		}

		records[i] = historyRecord{
			ID:        tx.ID,
			From:      tx.From,
			To:        tx.To,
			Amount:    tx.Amount.StringFixed(8),
			Fee:       tx.Fee.StringFixed(8),
			Status:    tx.Status,
			Timestamp: tx.Timestamp.Format("2006-01-02 15:04:05"),
			Type:      direction,
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Sprintf("HISTORY_ERROR: %s", err)
	}

	return string(data)
}

func (srv *Server) handleMine(ctx context.Context, payload string) string {
	parts := strings.Split(payload, "|")
	if len(parts) < 2 {
		return "MINE_FAILED: Invalid mining data"
	}

	username := parts[0]
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return "MINE_FAILED: Invalid mining data"
	}

	reward, err := srv.state.MineReward(ctx, username)
	if err != nil {
		return fmt.Sprintf("MINE_ERROR: %s", err)
	}

	return fmt.Sprintf("MINE_SUCCESS: Mined %s VNC for %s", reward, username)
}

func (srv *Server) handleAirDrop(ctx context.Context, payload string) string {
	parts := strings.Split(payload, "|")
	if len(parts) < 2 {
		return "AIR_DROP_FAILED: Invalid airdrop data"
	}

	amount, err := decimal.NewFromString(parts[1])
	if err != nil {
		return "AIR_DROP_FAILED: Invalid airdrop data"
	}

	if err := srv.state.AirDrop(ctx, parts[0], amount); err != nil {
		return fmt.Sprintf("AIR_DROP_ERROR: %s", err)
	}

	return fmt.Sprintf("AIR_DROP_SUCCESS: %s VNC airdropped to %s", amount, parts[0])
}

func (srv *Server) handleCheckUsername(ctx context.Context, payload string) string {
	username := strings.TrimSpace(payload)

	available, err := srv.state.UsernameAvailable(ctx, username)
	if err != nil {
		return fmt.Sprintf("USERNAME_CHECK_ERROR: %s", err)
	}

	if !available {
		return fmt.Sprintf("USERNAME_TAKEN: %s is already registered", username)
	}

	return fmt.Sprintf("USERNAME_AVAILABLE: %s is available", username)
}

func (srv *Server) handleRegister(ctx context.Context, payload string) string {
	parts := strings.Split(payload, "|")
	if len(parts) < 3 {
		return "REGISTRATION_FAILED: Invalid registration data"
	}

	reg := registerPayload{
		Username: parts[0],
		Password: parts[1],
	}
	if err := validate.Check(reg); err != nil {
		return fmt.Sprintf("REGISTRATION_FAILED: %s", err)
	}

	var words []string
	if err := json.Unmarshal([]byte(parts[2]), &words); err != nil {
		return "REGISTRATION_FAILED: Invalid word list JSON"
	}

	// A hardware payload that doesn't decode is treated as absent.
	var hardware *state.Hardware
	if len(parts) >= 4 && strings.TrimSpace(parts[3]) != "" {
		var hw state.Hardware
		if err := json.Unmarshal([]byte(parts[3]), &hw); err == nil {
			hardware = &hw
		}
	}

	if err := srv.state.Register(ctx, reg.Username, reg.Password, words, hardware); err != nil {
		if errors.Is(err, database.ErrUsernameTaken) {
			return "REGISTRATION_FAILED: Username already exists"
		}
		return fmt.Sprintf("REGISTRATION_ERROR: %s", err)
	}

	return "REGISTRATION_SUCCESS: User created successfully"
}

func (srv *Server) handleLogin(ctx context.Context, payload string) string {
	parts := strings.Split(payload, "|")
	if len(parts) < 2 {
		return "LOGIN_FAILED: Invalid login data"
	}

	login := loginPayload{
		Username: parts[0],
		Password: parts[1],
	}
	if err := validate.Check(login); err != nil {
		return fmt.Sprintf("LOGIN_FAILED: %s", err)
	}

	var words []string
	if len(parts) >= 3 && strings.TrimSpace(parts[2]) != "" {
		json.Unmarshal([]byte(parts[2]), &words)
	}

	var hardware *state.Hardware
	if len(parts) >= 4 && strings.TrimSpace(parts[3]) != "" {
		var hw state.Hardware
		if err := json.Unmarshal([]byte(parts[3]), &hw); err == nil {
			hardware = &hw
		}
	}

	if err := srv.state.Login(ctx, login.Username, login.Password, words, hardware); err != nil {
		switch {
		case errors.Is(err, database.ErrAccountNotFound):
			return "LOGIN_FAILED: User not found"

		case errors.Is(err, state.ErrInvalidPassword):
			return "LOGIN_FAILED: Invalid password"

		case errors.Is(err, state.ErrHardwareMismatch):
			return "LOGIN_FAILED: HARDWARE_MISMATCH"

		case errors.Is(err, state.ErrInvalidRecoveryWords):
			return "LOGIN_FAILED: Invalid security words"

		default:
			return fmt.Sprintf("LOGIN_ERROR: %s", err)
		}
	}

	return "LOGIN_SUCCESS: Login successful"
}

// handleBlock processes an externally mined block submission of the form
// <canonical block text>|||<claimed hash>.
func (srv *Server) handleBlock(ctx context.Context, msg string) (resp string, broadcast string) {
	blockText, claimedHash, _ := strings.Cut(msg, blockSeparator)

	block, err := srv.state.SubmitBlock(ctx, blockText, claimedHash)
	if err != nil {
		if reason := rejectReason(err); reason != "" {
			return fmt.Sprintf("BLOCK REJECTED: %s", reason), ""
		}
		return "BLOCK REJECTED: Storage failed", ""
	}

	srv.log.Infow("block accepted", "block", block.ID, "miner", block.MinerID, "hash", block.Hash)

	return "BLOCK ACCEPTED: Valid block", fmt.Sprintf("NEW_BLOCK%s%s", blockSeparator, msg)
}
