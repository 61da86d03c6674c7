package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/candidhr/talentsearch/internal/domain"
	"github.com/candidhr/talentsearch/internal/domain/batch"
	"github.com/candidhr/talentsearch/internal/domain/corpus"
	"github.com/candidhr/talentsearch/internal/domain/record"
)

type mockEmbedder struct {
	vec    []float32
	errFor map[string]error // keyed by substring of the embedded text
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	for needle, err := range m.errFor {
		if strings.Contains(text, needle) {
			return domain.EmbeddingResult{}, err
		}
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 12}, nil
}

type mockStore struct {
	inserted []*record.Record
	err      error
}

func (m *mockStore) Insert(_ context.Context, rec *record.Record) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, rec)
	return nil
}

func source(ref, name string) record.Source {
	return record.Source{Ref: ref, Fields: map[string]string{"Name": name}}
}

func TestIngest_StoresAllItems(t *testing.T) {
	store := &mockStore{}
	svc := New(corpus.Candidates, &mockEmbedder{vec: []float32{0.1, 0.2}}, store, 2, zap.NewNop())

	outcome, err := svc.Ingest(context.Background(), []record.Source{
		source("a.pdf", "An"),
		source("b.pdf", "Binh"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Submitted() != 2 || outcome.Stored() != 2 || len(outcome.Failures()) != 0 {
		t.Errorf("outcome = %d/%d/%d failures", outcome.Submitted(), outcome.Stored(), len(outcome.Failures()))
	}
	if len(store.inserted) != 2 {
		t.Fatalf("inserted %d records", len(store.inserted))
	}
	for _, rec := range store.inserted {
		if rec.Corpus() != corpus.Candidates.Name() {
			t.Errorf("record corpus = %q", rec.Corpus())
		}
		if !rec.Searchable() {
			t.Error("stored record has no embedding")
		}
	}
}

func TestIngest_MixedBatchAccounting(t *testing.T) {
	embed := &mockEmbedder{
		vec:    []float32{0.1, 0.2},
		errFor: map[string]error{"Broken": errors.New("provider refused")},
	}
	store := &mockStore{}
	svc := New(corpus.Candidates, embed, store, 2, zap.NewNop())

	outcome, err := svc.Ingest(context.Background(), []record.Source{
		source("ok.pdf", "An"),
		source("bad.pdf", "Broken"),
		source("ok2.pdf", "Binh"),
	})
	if err != nil {
		t.Fatalf("a partial batch must not return an error, got %v", err)
	}
	if outcome.Stored() != 2 {
		t.Errorf("stored = %d, want 2", outcome.Stored())
	}
	if outcome.Stored()+len(outcome.Failures()) != outcome.Submitted() {
		t.Error("stored + failed must equal submitted")
	}

	failures := outcome.Failures()
	if len(failures) != 1 || failures[0].Ref() != "bad.pdf" {
		t.Fatalf("failures = %+v", failures)
	}
	if !strings.Contains(failures[0].Reason(), "failed to generate embedding") {
		t.Errorf("reason = %q", failures[0].Reason())
	}
	if len(store.inserted) != 2 {
		t.Errorf("failed item must not reach the store, inserted %d", len(store.inserted))
	}
}

func TestIngest_AllFailed(t *testing.T) {
	embed := &mockEmbedder{errFor: map[string]error{"Name:": errors.New("quota exceeded")}}
	svc := New(corpus.Candidates, embed, &mockStore{}, 2, zap.NewNop())

	outcome, err := svc.Ingest(context.Background(), []record.Source{
		source("a.pdf", "An"),
		source("b.pdf", "Binh"),
	})
	if err == nil {
		t.Fatal("expected error when every item fails")
	}

	var allFailed *batch.AllFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("error type %T, want *batch.AllFailedError", err)
	}
	if allFailed.Outcome.Submitted() != 2 || len(allFailed.Outcome.Failures()) != 2 {
		t.Errorf("aggregate outcome = %d submitted, %d failures",
			allFailed.Outcome.Submitted(), len(allFailed.Outcome.Failures()))
	}
	for _, ref := range []string{"a.pdf", "b.pdf"} {
		if !strings.Contains(err.Error(), ref) {
			t.Errorf("aggregate error missing ref %s: %s", ref, err.Error())
		}
	}
	if outcome.Stored() != 0 {
		t.Errorf("stored = %d, want 0", outcome.Stored())
	}
}

func TestIngest_EmptyBatch(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}
	svc := New(corpus.Candidates, embed, &mockStore{}, 2, zap.NewNop())

	outcome, err := svc.Ingest(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty batch must succeed, got %v", err)
	}
	if outcome.Submitted() != 0 || outcome.AllFailed() {
		t.Errorf("outcome = %+v", outcome)
	}
	if embed.calls != 0 {
		t.Error("embedder must not run for an empty batch")
	}
}

func TestIngest_NoMatchableFields(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}
	svc := New(corpus.Candidates, embed, &mockStore{}, 2, zap.NewNop())

	outcome, err := svc.Ingest(context.Background(), []record.Source{
		{Ref: "empty.pdf", Fields: map[string]string{"Unknown Label": "x"}},
	})

	var allFailed *batch.AllFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("got %v", err)
	}
	if embed.calls != 0 {
		t.Error("nothing to embed, embedder must not be called")
	}
	if !strings.Contains(outcome.Failures()[0].Reason(), "no matchable fields") {
		t.Errorf("reason = %q", outcome.Failures()[0].Reason())
	}
}

func TestIngest_DimensionMismatchRejected(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	store := &mockStore{}
	svc := New(corpus.Candidates, embed, store, 2, zap.NewNop())

	outcome, err := svc.Ingest(context.Background(), []record.Source{source("a.pdf", "An")})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(outcome.Failures()[0].Reason(), domain.ErrDimensionMismatch.Error()) {
		t.Errorf("reason = %q", outcome.Failures()[0].Reason())
	}
	if len(store.inserted) != 0 {
		t.Error("mismatched embedding must not be persisted")
	}
}

func TestIngest_PersistenceFailure(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}
	store := &mockStore{err: errors.New("connection reset")}
	svc := New(corpus.Candidates, embed, store, 2, zap.NewNop())

	outcome, err := svc.Ingest(context.Background(), []record.Source{source("a.pdf", "An")})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(outcome.Failures()[0].Reason(), domain.ErrPersistenceFailure.Error()) {
		t.Errorf("reason = %q", outcome.Failures()[0].Reason())
	}
	if outcome.Stored() != 0 {
		t.Errorf("stored = %d, want 0", outcome.Stored())
	}
}

func TestIngest_RefStoredInMeta(t *testing.T) {
	store := &mockStore{}
	svc := New(corpus.Candidates, &mockEmbedder{vec: []float32{0.1, 0.2}}, store, 2, zap.NewNop())

	src := record.Source{
		Ref:    "an_nguyen_cv.pdf",
		Fields: map[string]string{"Name": "An Nguyen"},
		Meta:   map[string]string{"uploader": "hr-portal"},
	}
	if _, err := svc.Ingest(context.Background(), []record.Source{src}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meta := store.inserted[0].Meta()
	if meta[record.MetaRef] != "an_nguyen_cv.pdf" {
		t.Errorf("meta ref = %q", meta[record.MetaRef])
	}
	if meta["uploader"] != "hr-portal" {
		t.Errorf("existing meta lost: %+v", meta)
	}
	if src.Meta[record.MetaRef] != "" {
		t.Error("source meta map must not be mutated")
	}
}
