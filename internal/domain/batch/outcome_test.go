package batch

import (
	"strings"
	"testing"
)

func TestOutcome_AllFailed(t *testing.T) {
	tests := []struct {
		name      string
		submitted int
		stored    int
		want      bool
	}{
		{"everything failed", 3, 0, true},
		{"partial", 3, 1, false},
		{"all stored", 3, 3, false},
		{"empty batch", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOutcome(tt.submitted, tt.stored, nil)
			if o.AllFailed() != tt.want {
				t.Errorf("AllFailed() = %v, want %v", o.AllFailed(), tt.want)
			}
		})
	}
}

func TestAllFailedError_ListsEveryReason(t *testing.T) {
	failures := []ItemFailure{
		NewItemFailure("cv-1.pdf", "failed to generate embedding: timeout"),
		NewItemFailure("cv-2.pdf", "failed to persist: connection refused"),
	}
	err := &AllFailedError{Outcome: NewOutcome(2, 0, failures)}

	msg := err.Error()
	if !strings.Contains(msg, "all 2 items failed") {
		t.Errorf("missing total in message: %q", msg)
	}
	for _, f := range failures {
		if !strings.Contains(msg, f.Ref()) || !strings.Contains(msg, f.Reason()) {
			t.Errorf("missing %q / %q in message: %q", f.Ref(), f.Reason(), msg)
		}
	}
}
