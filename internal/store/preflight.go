package store

import (
	"context"
	"fmt"
)

// PreflightError reports a failed precondition that must abort a run
// before traversal begins.
type PreflightError struct {
	Check   string
	Message string
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("%s: %s", e.Check, e.Message)
}

// Preflight verifies that the store is reachable and that the seed path is
// a known record. Traversal must not start when either check fails.
func Preflight(ctx context.Context, s Store, seed string) error {
	ok, err := s.Exists(ctx, seed)
	if err != nil {
		return &PreflightError{
			Check:   "STORE_AVAILABILITY_CHECK",
			Message: fmt.Sprintf("store unavailable: %v", err),
		}
	}
	if !ok {
		return &PreflightError{
			Check:   "SEED_EXISTENCE_CHECK",
			Message: fmt.Sprintf("seed path %q not found in store", seed),
		}
	}
	return nil
}
