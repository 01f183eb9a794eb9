package simchain

import (
	"errors"
	"fmt"
)

// RevertError is returned when a contract call reverts
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	return "execution reverted: " + e.Reason
}

func revert(reason string) error {
	return &RevertError{Reason: reason}
}

func revertf(format string, args ...any) error {
	return &RevertError{Reason: fmt.Sprintf(format, args...)}
}

// IsRevert reports whether err is a revert with the given reason. An empty
// reason matches any revert.
func IsRevert(err error, reason string) bool {
	var r *RevertError
	if !errors.As(err, &r) {
		return false
	}
	return reason == "" || r.Reason == reason
}
