package server

import (
	"errors"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/chain"
)

// balanceResponse is the JSON reply to a GET_BALANCE command. The balance
// is rendered as an 8 decimal string for external collaborators.
type balanceResponse struct {
	Balance string `json:"balance"`
}

// historyRecord is one entry in the GET_HISTORY JSON reply.
type historyRecord struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Fee       string `json:"fee"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
}

// registerPayload carries the credential fields of a REGISTER command for
// validation before any hashing happens.
type registerPayload struct {
	Username string `validate:"required,max=256"`
	Password string `validate:"required,max=256"`
}

// loginPayload carries the credential fields of a LOGIN command.
type loginPayload struct {
	Username string `validate:"required,max=256"`
	Password string `validate:"required"`
}

// =============================================================================

// rejectReason maps a chain validation error to the rejection text owed to
// the submitter. Anything else is not a validation outcome and returns "".
func rejectReason(err error) string {
	var difficultyErr *chain.DifficultyError

	switch {
	case errors.Is(err, chain.ErrBadFormat),
		errors.Is(err, chain.ErrAlreadyExists),
		errors.Is(err, chain.ErrHashMismatch),
		errors.Is(err, chain.ErrBadLinkage):
		return err.Error()

	case errors.As(err, &difficultyErr):
		return difficultyErr.Error()
	}

	return ""
}
