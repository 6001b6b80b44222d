// Package generate drives QA-pair generation: one model call per clip and
// category, validated and appended to the release JSONL as soon as it
// succeeds so an interrupted run keeps everything finished before the kill.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/auralab/aura-bench/internal/dataset"
	"github.com/auralab/aura-bench/internal/llm"
	"github.com/auralab/aura-bench/internal/qa"
	"github.com/auralab/aura-bench/internal/task"
)

// Config controls one generation run over a single category.
type Config struct {
	Task        *task.Task
	OutputPath  string
	FailurePath string

	// SyncStatus is required by the tempo_av_sync_analysis category and
	// ignored by the rest.
	SyncStatus string

	Temperature float64
	MaxTokens   int
	Sleep       time.Duration
	Timeout     time.Duration

	// Resume skips clips whose video IDs already appear in OutputPath.
	Resume bool

	// Out receives one progress line per clip. Nil means silent.
	Out io.Writer
}

// Result summarizes a run. Every input item lands in exactly one of
// Generated, SkippedResume, or Failed.
type Result struct {
	Generated     int
	Pairs         int
	SkippedResume int
	Failed        int
}

// Generator turns dataset items into validated QA pairs with one provider.
type Generator struct {
	provider llm.Provider
	cfg      Config
}

// New creates a Generator with defaults clamped.
func New(provider llm.Provider, cfg Config) *Generator {
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.5
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Sleep < 0 {
		cfg.Sleep = 0
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	return &Generator{provider: provider, cfg: cfg}
}

// Run processes every item and returns the tally. Per-clip failures are
// recorded and skipped, never fatal; only I/O errors on the output files and
// context cancellation abort the run.
func (g *Generator) Run(ctx context.Context, items []dataset.Item) (*Result, error) {
	if g == nil || g.provider == nil {
		return nil, errors.New("generate: nil provider")
	}
	if g.cfg.Task == nil {
		return nil, errors.New("generate: nil task")
	}
	if strings.TrimSpace(g.cfg.OutputPath) == "" {
		return nil, errors.New("generate: empty output path")
	}

	done, err := g.doneVideoIDs()
	if err != nil {
		return nil, err
	}

	out, err := qa.OpenWriter(g.cfg.OutputPath)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	var failures *qa.Writer
	if strings.TrimSpace(g.cfg.FailurePath) != "" {
		failures, err = qa.OpenWriter(g.cfg.FailurePath)
		if err != nil {
			return nil, err
		}
		defer failures.Close()
	}

	res := &Result{}
	for i := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		item := &items[i]
		if done[item.VideoID] {
			res.SkippedResume++
			fmt.Fprintf(g.cfg.Out, "%s %s: already done, skipping\n", item.VideoID, g.cfg.Task.Category)
			continue
		}

		pairs, failure := g.generateOne(ctx, item)
		if failure != nil {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			res.Failed++
			fmt.Fprintf(g.cfg.Out, "%s %s: %s\n", item.VideoID, g.cfg.Task.Category, failure.Reason)
			if failures != nil {
				if err := failures.Append(failure); err != nil {
					return res, err
				}
			}
		} else {
			for j := range pairs {
				if err := out.Append(&pairs[j]); err != nil {
					return res, err
				}
			}
			res.Generated++
			res.Pairs += len(pairs)
			fmt.Fprintf(g.cfg.Out, "%s %s: %d pairs\n", item.VideoID, g.cfg.Task.Category, len(pairs))
		}

		if i < len(items)-1 {
			if err := sleepWithContext(ctx, g.cfg.Sleep); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

func (g *Generator) generateOne(ctx context.Context, item *dataset.Item) ([]qa.Pair, *qa.Failure) {
	t := g.cfg.Task

	system, user, err := t.Render(item, task.RenderOptions{SyncStatus: g.cfg.SyncStatus})
	if err != nil {
		return nil, g.failure(item, fmt.Sprintf("render prompt: %v", err), "")
	}

	callCtx := ctx
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	resp, err := g.provider.Complete(callCtx, &llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: "user", Content: user}},
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, g.failure(item, fmt.Sprintf("llm call: %v", err), "")
	}

	raw := llm.Text(resp)
	var pairs []qa.Pair
	if err := llm.ParseJSONList(raw, &pairs); err != nil {
		return nil, g.failure(item, fmt.Sprintf("parse response: %v", err), raw)
	}
	if len(pairs) != t.QuestionsPerClip {
		return nil, g.failure(item, fmt.Sprintf("got %d pairs, want %d", len(pairs), t.QuestionsPerClip), raw)
	}

	for i := range pairs {
		p := &pairs[i]
		p.VideoID = item.VideoID
		p.Category = t.Category
		if t.NeedsSyncStatus {
			p.SyncStatus = g.cfg.SyncStatus
		}
		if err := qa.Validate(p); err != nil {
			return nil, g.failure(item, fmt.Sprintf("pair %d: %v", i, err), raw)
		}
	}
	return pairs, nil
}

func (g *Generator) failure(item *dataset.Item, reason, raw string) *qa.Failure {
	return &qa.Failure{
		VideoID:     item.VideoID,
		Category:    g.cfg.Task.Category,
		Reason:      reason,
		RawResponse: raw,
	}
}

// doneVideoIDs reads the existing output file and collects the clips this
// category already covered.
func (g *Generator) doneVideoIDs() (map[string]bool, error) {
	if !g.cfg.Resume {
		return nil, nil
	}

	pairs, err := qa.ReadJSONL[qa.Pair](g.cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("generate: read existing output: %w", err)
	}

	done := make(map[string]bool, len(pairs))
	for i := range pairs {
		if pairs[i].Category != g.cfg.Task.Category {
			continue
		}
		done[pairs[i].VideoID] = true
	}
	return done, nil
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
