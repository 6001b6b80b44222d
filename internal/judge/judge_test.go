package judge

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/auralab/aura-bench/internal/llm"
	"github.com/auralab/aura-bench/internal/qa"
)

type fakeProvider struct {
	responses []string
	errs      []error
	calls     int
	systems   []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i := f.calls
	f.calls++
	f.systems = append(f.systems, req.System)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.responses) {
		return nil, errors.New("fake: no scripted response")
	}
	return &llm.Response{Content: []llm.ContentBlock{{Type: "text", Text: f.responses[i]}}}, nil
}

func testResponse(question, modelKey string) qa.ModelResponse {
	return qa.ModelResponse{
		Pair: qa.Pair{
			Question: question,
			Options: map[string]string{
				"A": "a sustained note", "B": "silence", "C": "a drum hit", "D": "applause",
			},
			CorrectAnswerKey: "A",
			GoldReasoning:    "The note begins when the bow touches the string.",
			VideoID:          "video001",
			Category:         "causal_reasoning",
		},
		ModelAnswerKey: modelKey,
		ModelReasoning: "The bow contact is what starts the note.",
	}
}

// fullPipeline scripts the four judge calls a correct keyed answer makes:
// factual, two sanitize passes, entailment.
func fullPipeline() []string {
	return []string{
		`{"factual_consistency_score": 1.0, "explanation": "Matches the reference."}`,
		"The note starts at bow contact.",
		"Bow contact starts the note.",
		`{"entails": true}`,
	}
}

func testConfig(t *testing.T, dir string) Config {
	t.Helper()
	return Config{
		OutputPath: filepath.Join(dir, "evaluation.jsonl"),
		JudgeModel: "test-judge",
	}
}

func TestRun_CorrectAnswerFullPipeline(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	provider := &fakeProvider{responses: fullPipeline()}

	res, err := New(provider, cfg).Run(context.Background(), []qa.ModelResponse{testResponse("q1", "A")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Judged != 1 || res.Failed != 0 {
		t.Fatalf("result: %+v", res)
	}
	if provider.calls != 4 {
		t.Fatalf("calls: got %d want 4", provider.calls)
	}

	evals, err := qa.ReadJSONL[qa.Evaluation](cfg.OutputPath)
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	// one record plus the summary line
	if len(evals) != 2 {
		t.Fatalf("lines: got %d want 2", len(evals))
	}
	rec := evals[0]
	if !rec.IsCorrect || rec.FactualScore != 1.0 || rec.EntailmentScore != 1.0 {
		t.Fatalf("record: %+v", rec)
	}
	if rec.JudgeModel != "test-judge" {
		t.Fatalf("judge model: got %q", rec.JudgeModel)
	}
}

func TestRun_WrongAnswerShortCircuits(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	provider := &fakeProvider{}

	res, err := New(provider, cfg).Run(context.Background(), []qa.ModelResponse{testResponse("q1", "B")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Judged != 1 {
		t.Fatalf("result: %+v", res)
	}
	if provider.calls != 0 {
		t.Fatalf("calls: got %d want 0", provider.calls)
	}

	evals, err := qa.ReadJSONL[qa.Evaluation](cfg.OutputPath)
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	rec := evals[0]
	if rec.IsCorrect || rec.FactualScore != 0 || rec.EntailmentScore != 0 {
		t.Fatalf("record: %+v", rec)
	}
	if rec.FactualExplain != "Answer was incorrect; not evaluated." {
		t.Fatalf("explanation: got %q", rec.FactualExplain)
	}
}

func TestRun_FreeTextAnswerUsesJudge(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	provider := &fakeProvider{responses: append([]string{`{"is_correct": true}`}, fullPipeline()...)}

	resp := testResponse("q1", "")
	resp.ModelAnswer = "It is the sustained note, option A."
	res, err := New(provider, cfg).Run(context.Background(), []qa.ModelResponse{resp})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Judged != 1 {
		t.Fatalf("result: %+v", res)
	}
	if provider.calls != 5 {
		t.Fatalf("calls: got %d want 5", provider.calls)
	}
	if !strings.Contains(provider.systems[0], "multiple-choice question") {
		t.Fatalf("first call system: got %q", provider.systems[0])
	}
}

func TestRun_JudgeErrorSkipsRecord(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	provider := &fakeProvider{errs: []error{errors.New("upstream 500")}}

	resp := testResponse("q1", "A")
	res, err := New(provider, cfg).Run(context.Background(), []qa.ModelResponse{resp})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failed != 1 || res.Judged != 0 {
		t.Fatalf("result: %+v", res)
	}

	evals, err := qa.ReadJSONL[qa.Evaluation](cfg.OutputPath)
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	// summary line only
	if len(evals) != 1 || evals[0].Question != "" {
		t.Fatalf("lines: %+v", evals)
	}
}

func TestRun_Resume(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Resume = true

	first := &fakeProvider{responses: fullPipeline()}
	if _, err := New(first, cfg).Run(context.Background(), []qa.ModelResponse{testResponse("q1", "A")}); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	second := &fakeProvider{}
	res, err := New(second, cfg).Run(context.Background(), []qa.ModelResponse{
		testResponse("q1", "A"),
		testResponse("q2", "B"),
	})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.SkippedResume != 1 || res.Judged != 1 {
		t.Fatalf("result: %+v", res)
	}
	if second.calls != 0 {
		t.Fatalf("calls: got %d want 0", second.calls)
	}

	// summary covers both the resumed and the new record
	if res.Summary.Total != 2 || res.Summary.Correct != 1 {
		t.Fatalf("summary: %+v", res.Summary)
	}
}

func TestSummarize(t *testing.T) {
	records := []qa.Evaluation{
		{Question: "q1", Category: "causal_reasoning", IsCorrect: true, FactualScore: 1.0, EntailmentScore: 1.0},
		{Question: "q2", Category: "causal_reasoning", IsCorrect: false},
		{Question: "q3", Category: "unanswerability", IsCorrect: true, FactualScore: 0.5, EntailmentScore: 0.0},
	}

	s := Summarize(records)
	if s.Type != qa.SummaryType {
		t.Fatalf("type: got %q", s.Type)
	}
	if s.Total != 3 || s.Correct != 2 {
		t.Fatalf("counts: %+v", s)
	}
	if math.Abs(s.AnswerAccuracy-2.0/3.0) > 1e-9 {
		t.Fatalf("accuracy: got %v", s.AnswerAccuracy)
	}
	if math.Abs(s.FactualConsistency-0.5) > 1e-9 {
		t.Fatalf("factual: got %v", s.FactualConsistency)
	}
	if math.Abs(s.CoreInference-1.0/3.0) > 1e-9 {
		t.Fatalf("inference: got %v", s.CoreInference)
	}
	if got := s.PerCategory["causal_reasoning"]; math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("per category: got %v", got)
	}
	if got := s.PerCategory["unanswerability"]; got != 1.0 {
		t.Fatalf("per category: got %v", got)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.AnswerAccuracy != 0 {
		t.Fatalf("summary: %+v", s)
	}
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(&fakeProvider{}, cfg).Run(ctx, []qa.ModelResponse{testResponse("q1", "A")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err: got %v want context.Canceled", err)
	}
}
