package contract

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by contract operations. Any failed check aborts the
// whole call with no state change; callers match the kind with errors.Is.
var (
	ErrAccessDenied    = errors.New("access_denied")
	ErrIllegalArgument = errors.New("illegal_argument")
	ErrIllegalTxAmount = errors.New("illegal_tx_amount")
	ErrPaused          = errors.New("paused")
)

func illegalArg(field string) error {
	return fmt.Errorf("%w: %s", ErrIllegalArgument, field)
}
