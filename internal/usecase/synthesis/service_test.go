package synthesis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/candidhr/talentsearch/internal/domain/corpus"
	"github.com/candidhr/talentsearch/internal/domain/search"
)

type mockGen struct {
	text       string
	err        error
	lastSystem string
	lastUser   string
	calls      int
}

func (m *mockGen) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	m.calls++
	m.lastSystem = systemPrompt
	m.lastUser = userPrompt
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func result(ref string, score float64, body string) search.Result {
	return search.NewResult(ref+"-id", ref, score, body, nil, time.Now())
}

func TestMatches_ReturnsGeneratedText(t *testing.T) {
	gen := &mockGen{text: "hire the first one"}
	svc := New(gen, zap.NewNop())

	got := svc.Matches(context.Background(), corpus.Candidates, "golang dev",
		[]search.Result{result("cv-1", 0.82, "ten years of Go")})

	if got != "hire the first one" {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(gen.lastSystem, "HR consultant") {
		t.Errorf("candidates system prompt not used: %q", gen.lastSystem)
	}
}

func TestMatches_FallbackOnGeneratorError(t *testing.T) {
	gen := &mockGen{err: errors.New("rate limited")}
	svc := New(gen, zap.NewNop())

	got := svc.Matches(context.Background(), corpus.Candidates, "golang dev",
		[]search.Result{result("cv-1", 0.82, "ten years of Go")})

	if got != profiles[corpus.Candidates.Name()].fallbackMatch {
		t.Errorf("expected static fallback, got %q", got)
	}
}

func TestNoMatch_FallbackOnGeneratorError(t *testing.T) {
	for _, c := range []corpus.Corpus{corpus.Candidates, corpus.Jobs} {
		gen := &mockGen{err: errors.New("timeout")}
		svc := New(gen, zap.NewNop())

		got := svc.NoMatch(context.Background(), c, "anything")
		if got != profiles[c.Name()].fallbackNone {
			t.Errorf("%s: expected static fallback, got %q", c.Name(), got)
		}
	}
}

func TestNoData_PerCorpus(t *testing.T) {
	if got := NoData(corpus.Candidates); !strings.Contains(got, "CVs") {
		t.Errorf("candidates no-data message: %q", got)
	}
	if got := NoData(corpus.Jobs); !strings.Contains(got, "jobs") {
		t.Errorf("jobs no-data message: %q", got)
	}
}

func TestBuildMatchPrompt_CapsResults(t *testing.T) {
	var results []search.Result
	for i := 0; i < 8; i++ {
		results = append(results, result(fmt.Sprintf("cv-%d", i), 0.9, "body"))
	}

	prompt := buildMatchPrompt(corpus.Candidates, "engineer", results)

	if !strings.Contains(prompt, fmt.Sprintf("Result %d:", MaxPromptResults)) {
		t.Errorf("expected %d results in prompt", MaxPromptResults)
	}
	if strings.Contains(prompt, fmt.Sprintf("Result %d:", MaxPromptResults+1)) {
		t.Errorf("prompt must not include more than %d results", MaxPromptResults)
	}
}

func TestBuildMatchPrompt_TruncatesBodies(t *testing.T) {
	long := strings.Repeat("x", PromptPreviewChars+100)
	prompt := buildMatchPrompt(corpus.Candidates, "engineer",
		[]search.Result{result("cv-1", 0.9, long)})

	if strings.Contains(prompt, long) {
		t.Error("full body leaked into the prompt")
	}
	if !strings.Contains(prompt, strings.Repeat("x", PromptPreviewChars)+"...") {
		t.Error("expected truncated body with ellipsis")
	}
}

func TestBuildMatchPrompt_CVSwitchForJobs(t *testing.T) {
	shortQuery := "backend developer in Hanoi"
	longQuery := strings.Repeat("Experienced engineer. ", 30) // > 500 runes

	hits := []search.Result{result("job-1", 0.8, "Go role at a fintech")}

	if p := buildMatchPrompt(corpus.Jobs, shortQuery, hits); strings.Contains(p, "CV/Profile Summary") {
		t.Error("short jobs query must use the plain search prompt")
	}
	if p := buildMatchPrompt(corpus.Jobs, longQuery, hits); !strings.Contains(p, "CV/Profile Summary") {
		t.Error("long jobs query must use the CV-profile prompt")
	}
	if p := buildMatchPrompt(corpus.Candidates, longQuery, hits); strings.Contains(p, "CV/Profile Summary") {
		t.Error("candidates corpus must never use the CV-profile prompt")
	}
}

func TestPrompts_CarryLanguageInstructions(t *testing.T) {
	hits := []search.Result{result("cv-1", 0.8, "body")}

	if p := buildMatchPrompt(corpus.Candidates, "kỹ sư phần mềm", hits); !strings.Contains(p, "LANGUAGE INSTRUCTIONS") {
		t.Error("match prompt missing language instructions")
	}
	if p := buildNoMatchPrompt("kỹ sư phần mềm"); !strings.Contains(p, "LANGUAGE INSTRUCTIONS") {
		t.Error("no-match prompt missing language instructions")
	}
}

func TestBuildNoMatchPrompt_TruncatesQuery(t *testing.T) {
	long := strings.Repeat("q", 600)
	p := buildNoMatchPrompt(long)

	if strings.Contains(p, long) {
		t.Error("full query leaked into the no-match prompt")
	}
	if !strings.Contains(p, strings.Repeat("q", 500)+"...") {
		t.Error("expected 500-char truncated query")
	}
}
