// Package judge scores candidate model answers against the released QA
// pairs. A wrong answer short-circuits: the reasoning stages only run when
// the answer itself was correct, so their scores measure reasoning quality
// among correct answers rather than punishing wrong ones twice.
package judge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/auralab/aura-bench/internal/llm"
	"github.com/auralab/aura-bench/internal/qa"
)

const notEvaluated = "Answer was incorrect; not evaluated."

// Config controls one evaluation run.
type Config struct {
	OutputPath string
	JudgeModel string

	Temperature float64
	MaxTokens   int
	Sleep       time.Duration
	Timeout     time.Duration

	// Resume skips responses whose question text already has a record in
	// OutputPath.
	Resume bool

	// Out receives one progress line per response. Nil means silent.
	Out io.Writer
}

// Result tallies a run. Every input response lands in exactly one of
// Judged, SkippedResume, or Failed.
type Result struct {
	Judged        int
	SkippedResume int
	Failed        int
	Summary       *qa.Summary
}

// Judge evaluates model responses with a judge provider.
type Judge struct {
	provider llm.Provider
	cfg      Config
}

// New creates a Judge with defaults clamped.
func New(provider llm.Provider, cfg Config) *Judge {
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Sleep < 0 {
		cfg.Sleep = 0
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	return &Judge{provider: provider, cfg: cfg}
}

// Run judges every response, appends per-response records to the output
// file, and finishes with one summary line aggregated over all records in
// the file, resumed ones included.
func (j *Judge) Run(ctx context.Context, responses []qa.ModelResponse) (*Result, error) {
	if j == nil || j.provider == nil {
		return nil, errors.New("judge: nil provider")
	}
	if strings.TrimSpace(j.cfg.OutputPath) == "" {
		return nil, errors.New("judge: empty output path")
	}

	existing, done, err := j.existingRecords()
	if err != nil {
		return nil, err
	}

	out, err := qa.OpenWriter(j.cfg.OutputPath)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	res := &Result{}
	records := existing
	for i := range responses {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		r := &responses[i]
		if done[r.Question] {
			res.SkippedResume++
			fmt.Fprintf(j.cfg.Out, "%s: already judged, skipping\n", r.VideoID)
			continue
		}

		eval, err := j.judgeOne(ctx, r)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			res.Failed++
			fmt.Fprintf(j.cfg.Out, "%s: judge failed: %v\n", r.VideoID, err)
			continue
		}

		if err := out.Append(eval); err != nil {
			return res, err
		}
		records = append(records, *eval)
		res.Judged++
		fmt.Fprintf(j.cfg.Out, "%s: correct=%t factual=%.1f entail=%.1f\n",
			r.VideoID, eval.IsCorrect, eval.FactualScore, eval.EntailmentScore)
	}

	summary := Summarize(records)
	if err := out.Append(summary); err != nil {
		return res, err
	}
	res.Summary = summary
	return res, nil
}

func (j *Judge) judgeOne(ctx context.Context, r *qa.ModelResponse) (*qa.Evaluation, error) {
	if err := qa.Validate(&r.Pair); err != nil {
		return nil, err
	}

	correct, err := j.checkAnswer(ctx, r)
	if err != nil {
		return nil, err
	}

	eval := &qa.Evaluation{
		Question:         r.Question,
		VideoID:          r.VideoID,
		Category:         r.Category,
		CorrectAnswerKey: r.CorrectAnswerKey,
		ModelAnswerKey:   r.ModelAnswerKey,
		IsCorrect:        correct,
		JudgeModel:       j.cfg.JudgeModel,
	}

	if !correct {
		eval.FactualExplain = notEvaluated
		return eval, nil
	}
	if strings.TrimSpace(r.ModelReasoning) == "" {
		eval.FactualExplain = "No model reasoning provided."
		return eval, nil
	}

	score, explain, err := j.checkFactual(ctx, r)
	if err != nil {
		return nil, err
	}
	eval.FactualScore = score
	eval.FactualExplain = explain

	entail, err := j.checkEntailment(ctx, r)
	if err != nil {
		return nil, err
	}
	eval.EntailmentScore = entail
	return eval, nil
}

// checkAnswer compares answer keys directly when the candidate reported
// one; the judge model only sees free-text answers.
func (j *Judge) checkAnswer(ctx context.Context, r *qa.ModelResponse) (bool, error) {
	if key := strings.TrimSpace(r.ModelAnswerKey); key != "" {
		return strings.EqualFold(key, r.CorrectAnswerKey), nil
	}

	answer := strings.TrimSpace(r.ModelAnswer)
	if answer == "" {
		return false, errors.New("judge: response has neither answer key nor answer text")
	}

	user, err := render(answerUserTmpl, map[string]any{
		"Question":    r.Question,
		"Options":     r.Options,
		"CorrectKey":  r.CorrectAnswerKey,
		"CorrectText": r.Options[r.CorrectAnswerKey],
		"ModelAnswer": answer,
	})
	if err != nil {
		return false, err
	}

	raw, err := j.complete(ctx, answerSystemPrompt, user)
	if err != nil {
		return false, err
	}

	var verdict struct {
		IsCorrect bool `json:"is_correct"`
	}
	if err := llm.ParseJSON(raw, &verdict); err != nil {
		return false, fmt.Errorf("judge: answer verdict: %w", err)
	}
	return verdict.IsCorrect, nil
}

func (j *Judge) checkFactual(ctx context.Context, r *qa.ModelResponse) (float64, string, error) {
	user, err := render(factualUserTmpl, map[string]any{
		"Question":       r.Question,
		"GoldReasoning":  r.GoldReasoning,
		"ModelReasoning": r.ModelReasoning,
	})
	if err != nil {
		return 0, "", err
	}

	raw, err := j.complete(ctx, factualSystemPrompt, user)
	if err != nil {
		return 0, "", err
	}

	var verdict struct {
		Score       float64 `json:"factual_consistency_score"`
		Explanation string  `json:"explanation"`
	}
	if err := llm.ParseJSON(raw, &verdict); err != nil {
		return 0, "", fmt.Errorf("judge: factual verdict: %w", err)
	}
	if verdict.Score < 0 || verdict.Score > 1 {
		return 0, "", fmt.Errorf("judge: factual score %v out of range", verdict.Score)
	}
	return verdict.Score, strings.TrimSpace(verdict.Explanation), nil
}

// checkEntailment sanitizes both reasonings to their core claims and asks
// whether the model's claim follows from the gold one.
func (j *Judge) checkEntailment(ctx context.Context, r *qa.ModelResponse) (float64, error) {
	premise, err := j.sanitize(ctx, r.GoldReasoning)
	if err != nil {
		return 0, err
	}
	hypothesis, err := j.sanitize(ctx, r.ModelReasoning)
	if err != nil {
		return 0, err
	}

	user, err := render(entailUserTmpl, map[string]any{
		"Premise":    premise,
		"Hypothesis": hypothesis,
	})
	if err != nil {
		return 0, err
	}

	raw, err := j.complete(ctx, entailSystemPrompt, user)
	if err != nil {
		return 0, err
	}

	var verdict struct {
		Entails bool `json:"entails"`
	}
	if err := llm.ParseJSON(raw, &verdict); err != nil {
		return 0, fmt.Errorf("judge: entailment verdict: %w", err)
	}
	if verdict.Entails {
		return 1, nil
	}
	return 0, nil
}

func (j *Judge) sanitize(ctx context.Context, reasoning string) (string, error) {
	user, err := render(sanitizeUserTmpl, map[string]any{"Reasoning": reasoning})
	if err != nil {
		return "", err
	}

	raw, err := j.complete(ctx, sanitizeSystemPrompt, user)
	if err != nil {
		return "", err
	}

	claim := strings.TrimSpace(raw)
	if claim == "" {
		return "", errors.New("judge: sanitizer returned empty claim")
	}
	return claim, nil
}

func (j *Judge) complete(ctx context.Context, system, user string) (string, error) {
	callCtx := ctx
	if j.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, j.cfg.Timeout)
		defer cancel()
	}

	resp, err := j.provider.Complete(callCtx, &llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: "user", Content: user}},
		MaxTokens:   j.cfg.MaxTokens,
		Temperature: j.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}

	if err := sleepWithContext(ctx, j.cfg.Sleep); err != nil {
		return "", err
	}
	return llm.Text(resp), nil
}

// Summarize aggregates evaluation records into the trailing summary line.
// Factual consistency and core inference average over all judged records,
// so wrong answers pull both down with their zero scores.
func Summarize(records []qa.Evaluation) *qa.Summary {
	s := &qa.Summary{Type: qa.SummaryType, Total: len(records)}
	if len(records) == 0 {
		return s
	}

	var factual, entail float64
	catTotal := make(map[string]int)
	catCorrect := make(map[string]int)
	for i := range records {
		r := &records[i]
		if r.IsCorrect {
			s.Correct++
		}
		factual += r.FactualScore
		entail += r.EntailmentScore
		if r.Category != "" {
			catTotal[r.Category]++
			if r.IsCorrect {
				catCorrect[r.Category]++
			}
		}
	}

	n := float64(len(records))
	s.AnswerAccuracy = float64(s.Correct) / n
	s.FactualConsistency = factual / n
	s.CoreInference = entail / n

	if len(catTotal) > 0 {
		s.PerCategory = make(map[string]float64, len(catTotal))
		for cat, total := range catTotal {
			s.PerCategory[cat] = float64(catCorrect[cat]) / float64(total)
		}
	}
	return s
}

// existingRecords loads prior evaluation lines for resume, skipping summary
// lines from earlier runs.
func (j *Judge) existingRecords() ([]qa.Evaluation, map[string]bool, error) {
	if !j.cfg.Resume {
		return nil, nil, nil
	}

	all, err := qa.ReadJSONL[qa.Evaluation](j.cfg.OutputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("judge: read existing output: %w", err)
	}

	records := make([]qa.Evaluation, 0, len(all))
	done := make(map[string]bool, len(all))
	for i := range all {
		if strings.TrimSpace(all[i].Question) == "" {
			continue
		}
		records = append(records, all[i])
		done[all[i].Question] = true
	}
	return records, done, nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("judge: render prompt: %w", err)
	}
	return buf.String(), nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
