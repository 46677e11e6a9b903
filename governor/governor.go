// Package governor owns the policy gate contract.
//
// Ownership boundary:
// - policy evaluation request/decision shapes
// - decision-to-error mapping used by callers
// - static in-process gateway for embedding and tests
//
// The evaluation algorithm itself is an external collaborator; this
// package treats any Gateway as a black box with a bounded response
// time.
package governor

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrDenied  = errors.New("governor denied")
	ErrTimeout = errors.New("governor evaluation timed out")
)

// Decision is the outcome of a policy evaluation.
type Decision int

const (
	DecisionApprove Decision = iota
	DecisionDecline
	DecisionNeedsInteractive
)

// String returns the display name for the decision.
func (d Decision) String() string {
	switch d {
	case DecisionApprove:
		return "Approve"
	case DecisionDecline:
		return "Decline"
	case DecisionNeedsInteractive:
		return "NeedsInteractive"
	default:
		return "Unknown"
	}
}

// Request describes the privileged action awaiting approval. Pod
// fields are always present; Executable/Arguments only for app runs.
type Request struct {
	PolicyID   uint32
	PodName    string
	PodType    string
	Security   string
	Executable string
	Arguments  []string
}

// Gateway evaluates a policy for a privileged pod action. It may
// cache decisions internally; callers bound each call with a context
// deadline.
type Gateway interface {
	Evaluate(ctx context.Context, req Request) (Decision, error)
}

// Check runs one gated evaluation and maps the outcome onto the error
// taxonomy: decline and interactive-required become ErrDenied, a
// context deadline becomes ErrTimeout, and approval returns nil.
func Check(ctx context.Context, gw Gateway, req Request) error {
	decision, err := gw.Evaluate(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: policy %d for pod %q", ErrTimeout, req.PolicyID, req.PodName)
		}
		return fmt.Errorf("%w: policy %d: %v", ErrDenied, req.PolicyID, err)
	}
	switch decision {
	case DecisionApprove:
		return nil
	case DecisionNeedsInteractive:
		return fmt.Errorf("%w: policy %d requires interactive approval", ErrDenied, req.PolicyID)
	default:
		return fmt.Errorf("%w: policy %d declined for pod %q", ErrDenied, req.PolicyID, req.PodName)
	}
}
