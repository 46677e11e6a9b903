package governor

import (
	"context"
	"sync"
	"time"
)

// Static is an in-process gateway with a fixed default decision and
// per-policy overrides. It stands in for the external Governor when
// embedding the control plane without one, and doubles as the test
// gateway. An optional Delay simulates a slow evaluation so callers
// can exercise their deadline handling.
type Static struct {
	// Default applies to policies without an override.
	Default Decision

	// Delay is waited before answering, honoring ctx cancellation.
	Delay time.Duration

	mu        sync.Mutex
	overrides map[uint32]Decision
	checks    uint64
}

// SetPolicy overrides the decision for one policy identifier.
func (s *Static) SetPolicy(policyID uint32, d Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overrides == nil {
		s.overrides = make(map[uint32]Decision)
	}
	s.overrides[policyID] = d
}

// Checks returns the total number of evaluations served.
func (s *Static) Checks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checks
}

// Evaluate answers with the override for req.PolicyID, or Default.
func (s *Static) Evaluate(ctx context.Context, req Request) (Decision, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return DecisionDecline, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return DecisionDecline, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks++
	if d, ok := s.overrides[req.PolicyID]; ok {
		return d, nil
	}
	return s.Default, nil
}

var _ Gateway = (*Static)(nil)
