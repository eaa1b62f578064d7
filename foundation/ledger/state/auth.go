package state

import (
	"context"
	"errors"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/database"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/hash"
)

// Set of errors for login processing. ErrHardwareMismatch is a distinct
// signal: the password was right but device binding failed and no recovery
// words were supplied, so the client should prompt for them rather than
// report a bad credential.
var (
	ErrInvalidPassword      = errors.New("invalid password")
	ErrHardwareMismatch     = errors.New("hardware mismatch")
	ErrInvalidRecoveryWords = errors.New("invalid security words")
)

// Hardware carries the raw hardware identifiers a client reads off its
// machine. A nil Hardware on login means the client didn't supply one and
// the device binding check is skipped.
type Hardware struct {
	CPUID      string `json:"cpu_id"`
	RAMID      string `json:"ram_id"`
	DiskSerial string `json:"disk_serial"`
}

// =============================================================================

// Register creates a new account. The credential is stored at double hash
// depth, the hardware identifiers and each recovery word at single depth.
// Raw secrets never reach the ledger store.
func (s *State) Register(ctx context.Context, username string, password string, words []string, hardware *Hardware) error {
	var hw Hardware
	if hardware != nil {
		hw = *hardware
	}

	hashedWords := make([]string, len(words))
	for i, word := range words {
		hashedWords[i] = hash.Single(word)
	}

	account := database.Account{
		Username:   username,
		Credential: hash.Double(password),
		Fingerprints: database.Fingerprints{
			CPU:  hash.Single(hw.CPUID),
			RAM:  hash.Single(hw.RAMID),
			Disk: hash.Single(hw.DiskSerial),
		},
		RecoveryWords: hashedWords,
	}

	if err := s.db.CreateAccount(ctx, account); err != nil {
		return err
	}

	s.evHandler("state: Register: account %s created", username)

	return nil
}

// Login verifies the user's password and, when a hardware payload is
// supplied, applies the 2-of-3 fingerprint rule. An account on unmatched
// hardware must present its full ordered recovery word list.
func (s *State) Login(ctx context.Context, username string, password string, words []string, hardware *Hardware) error {
	account, err := s.db.QueryAccount(ctx, username)
	if err != nil {
		return err
	}

	if hash.Double(password) != account.Credential {
		return ErrInvalidPassword
	}

	if hardware == nil {
		return nil
	}

	if fingerprintMatches(*hardware, account.Fingerprints) >= 2 {
		s.evHandler("state: Login: %s authenticated with hardware verification", username)
		return nil
	}

	if words == nil {
		return ErrHardwareMismatch
	}

	if !recoveryWordsMatch(words, account.RecoveryWords) {
		return ErrInvalidRecoveryWords
	}

	s.evHandler("state: Login: %s authenticated with recovery words due to hardware changes", username)

	return nil
}

// =============================================================================

// fingerprintMatches counts how many of the three hardware identifiers match
// their stored single-hashed values.
func fingerprintMatches(hw Hardware, stored database.Fingerprints) int {
	var matches int

	if hash.Single(hw.CPUID) == stored.CPU {
		matches++
	}
	if hash.Single(hw.RAMID) == stored.RAM {
		matches++
	}
	if hash.Single(hw.DiskSerial) == stored.Disk {
		matches++
	}

	return matches
}

// recoveryWordsMatch compares the supplied words, each hashed at single
// depth, against the stored list as an ordered sequence.
func recoveryWordsMatch(words []string, stored []string) bool {
	if len(words) != len(stored) {
		return false
	}

	for i, word := range words {
		if hash.Single(word) != stored[i] {
			return false
		}
	}

	return true
}
