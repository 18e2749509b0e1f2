package pipeline

import "fmt"

// InvalidInputError reports a transcript or parameter that cannot be
// analyzed (empty text, bad chunk sizing).
type InvalidInputError struct {
	Reason string
	Cause  error
}

func (e *InvalidInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return e.Cause }

// LoadError reports a transcript file that could not be read or parsed.
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// ExtractionError reports a chunk whose extraction failed after
// exhausting retries.
type ExtractionError struct {
	Index int
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract chunk %d: %v", e.Index, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// SynthesisError reports a failed synthesis or digest call.
type SynthesisError struct {
	Cause error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesize: %v", e.Cause)
}

func (e *SynthesisError) Unwrap() error { return e.Cause }

// CancelledError reports a run stopped by context cancellation or
// timeout before it could finish.
type CancelledError struct {
	Phase string
	Cause error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("run cancelled during %s: %v", e.Phase, e.Cause)
}

func (e *CancelledError) Unwrap() error { return e.Cause }
