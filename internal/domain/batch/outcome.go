// Package batch defines the per-batch accounting of the ingestion pipeline.
package batch

import (
	"fmt"
	"strings"
)

// ItemFailure records why one batch item was not stored.
type ItemFailure struct {
	ref    string
	reason string
}

// NewItemFailure creates a per-item failure record.
func NewItemFailure(ref, reason string) ItemFailure {
	return ItemFailure{ref: ref, reason: reason}
}

// Ref returns the item's display reference.
func (f ItemFailure) Ref() string { return f.ref }

// Reason returns the human-readable failure reason.
func (f ItemFailure) Reason() string { return f.reason }

// Outcome is the result of one ingestion batch: how many items were
// submitted, how many were embedded and stored, and why the rest failed.
// Constructed during one ingestion call; never persisted.
type Outcome struct {
	submitted int
	stored    int
	failures  []ItemFailure
}

// NewOutcome creates a batch outcome.
func NewOutcome(submitted, stored int, failures []ItemFailure) Outcome {
	return Outcome{submitted: submitted, stored: stored, failures: failures}
}

// Submitted returns the number of items in the batch.
func (o Outcome) Submitted() int { return o.submitted }

// Stored returns the number of items embedded and persisted.
func (o Outcome) Stored() int { return o.stored }

// Failures returns the per-item failure records.
func (o Outcome) Failures() []ItemFailure { return o.failures }

// AllFailed reports whether every item in a non-empty batch failed.
func (o Outcome) AllFailed() bool { return o.submitted > 0 && o.stored == 0 }

// AllFailedError aggregates every per-item reason when a whole batch fails.
type AllFailedError struct {
	Outcome Outcome
}

func (e *AllFailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all %d items failed to ingest:", e.Outcome.Submitted())
	for _, f := range e.Outcome.Failures() {
		fmt.Fprintf(&b, "\n- %s: %s", f.Ref(), f.Reason())
	}
	return b.String()
}
