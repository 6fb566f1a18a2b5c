package fsm

import "errors"

// ErrIllegalTransition is returned when a transition is not in the table.
var ErrIllegalTransition = errors.New("illegal state transition")
