package redis

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/candidhr/talentsearch/internal/domain/search"
)

func TestRankAndTrim(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	in := []search.Result{
		search.NewResult("mid", "mid.pdf", 0.5, "body", nil, newer),
		search.NewResult("tied-old", "a.pdf", 0.9, "body", nil, older),
		search.NewResult("tied-new", "b.pdf", 0.9, "body", nil, newer),
	}

	out := rankAndTrim(in, 2)

	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].ID() != "tied-new" || out[1].ID() != "tied-old" {
		t.Errorf("cutoff membership = [%s, %s], want tied records kept by recency",
			out[0].ID(), out[1].ID())
	}
}

func TestRankAndTrim_LimitExceedsResults(t *testing.T) {
	in := []search.Result{
		search.NewResult("only", "only.pdf", 0.7, "body", nil, time.Now()),
	}
	if out := rankAndTrim(in, 10); len(out) != 1 {
		t.Errorf("expected 1 result, got %d", len(out))
	}
}

func TestVectorToBytes(t *testing.T) {
	vec := []float32{0.5, -1.25, 3.0}
	blob := []byte(vectorToBytes(vec))

	if len(blob) != len(vec)*4 {
		t.Fatalf("blob length = %d, want %d", len(blob), len(vec)*4)
	}
	for i, f := range vec {
		got := math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
		if got != f {
			t.Errorf("decoded[%d] = %f, want %f", i, got, f)
		}
	}
}

func TestVectorToBytes_Empty(t *testing.T) {
	if got := vectorToBytes(nil); got != "" {
		t.Errorf("empty vector encoded to %d bytes", len(got))
	}
}

func TestEscapeTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"candidates", "candidates"},
		{"my-corpus", `my\-corpus`},
		{"a b", `a\ b`},
		{"x{y}", `x\{y\}`},
		{`a\b`, `a\\b`},
		{"a|b", `a\|b`},
	}
	for _, tt := range tests {
		if got := escapeTag(tt.in); got != tt.want {
			t.Errorf("escapeTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
