package service

import (
	"errors"
	"fmt"
)

// Sentinel kinds for service errors.
var (
	// ErrNotInitialized is the panic value of any command issued before
	// Initialize.
	ErrNotInitialized = errors.New("race service not initialized")
	// ErrRejected is wrapped by every RejectError.
	ErrRejected = errors.New("command rejected")
)

// Rejection reasons.
const (
	ReasonNoRun              = "no_run"
	ReasonWrongState         = "wrong_state"
	ReasonNotFinalized       = "not_finalized"
	ReasonAlreadyFinalized   = "already_finalized"
	ReasonAlreadyClaimed     = "already_claimed"
	ReasonNotRanked          = "player_not_ranked"
	ReasonExtendNotAllowed   = "extend_not_allowed"
	ReasonAlreadyExtended    = "already_extended"
	ReasonPlayerFinished     = "player_finished"
	ReasonPaymentUnavailable = "payment_unavailable"
	ReasonPaymentFailed      = "payment_failed"
	ReasonRunChanged         = "run_changed"
	ReasonNotEligible        = "not_eligible"
	ReasonRunActive          = "run_active"
	ReasonUnknownBot         = "unknown_bot"
)

// RejectError reports a command whose guard failed. State is unchanged.
type RejectError struct {
	Command string
	Reason  string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Command, e.Reason)
}

// Unwrap lets errors.Is match ErrRejected.
func (e *RejectError) Unwrap() error { return ErrRejected }

// ReasonOf returns the rejection reason of err, or "" when err is not a
// rejection.
func ReasonOf(err error) string {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}
