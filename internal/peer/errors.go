package peer

import (
	"errors"
	"fmt"
)

var (
	ErrPairClosed       = errors.New("pair closed")
	ErrUnexpectedSignal = errors.New("unexpected signal type")
)

// PairError ties a negotiation failure to the operation and remote peer it
// happened against. Failures are contained at the pair: the caller logs them
// and the room session continues without that peer's media.
type PairError struct {
	Op     string
	Remote string
	Err    error
}

func (e *PairError) Error() string {
	if e.Remote != "" {
		return fmt.Sprintf("%s (peer %s): %v", e.Op, e.Remote, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PairError) Unwrap() error {
	return e.Err
}

func pairErr(op, remote string, err error) *PairError {
	return &PairError{Op: op, Remote: remote, Err: err}
}
