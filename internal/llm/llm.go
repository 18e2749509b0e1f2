// Package llm provides the completion client used by extraction and
// synthesis, plus transient-error classification for retry decisions.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Completer issues a single completion call. Implementations must be
// safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// TransientError indicates a failure worth retrying (rate limits,
// server errors, timeouts).
type TransientError struct {
	StatusCode int
	Message    string
}

func (e *TransientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transient error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
	}
	return fmt.Sprintf("transient error: %s", truncate(e.Message, 200))
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
