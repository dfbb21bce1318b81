package markdown

import "strings"

// RecursionLimitExceededError is the fatal, per-note error raised when an
// embed chain cycles back on itself in the default cycle mode, or when the
// recursion depth budget is exhausted. It carries the full chain so the
// diagnostic sink can print every path involved.
type RecursionLimitExceededError struct {
	// Chain is the ordered sequence of paths traversed, root note first,
	// ending with the path that closed the cycle (or the path at which
	// the depth budget ran out).
	Chain []string

	// Reason distinguishes a depth-budget exhaustion from a detected
	// cycle, for a clearer diagnostic message.
	Reason string
}

func (e *RecursionLimitExceededError) Error() string {
	return "RecursionLimitExceeded: " + e.Reason + ": " + strings.Join(e.Chain, " -> ")
}
