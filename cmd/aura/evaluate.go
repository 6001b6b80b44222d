package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/auralab/aura-bench/internal/judge"
	"github.com/auralab/aura-bench/internal/llm"
	"github.com/auralab/aura-bench/internal/qa"
	"github.com/auralab/aura-bench/internal/store"
)

type evaluateOptions struct {
	input       string
	output      string
	candidate   string
	provider    string
	model       string
	temperature float64
	maxTokens   int
	sleep       time.Duration
	timeout     time.Duration
	noResume    bool
	save        bool
}

func newEvaluateCmd(st *cliState) *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:     "evaluate",
		Short:   "Judge candidate model answers against the gold QA pairs",
		Args:    cobra.NoArgs,
		PreRunE: loadConfigPreRun(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "JSONL file of candidate model responses")
	cmd.Flags().StringVar(&opts.output, "output", "output/evaluation_results.jsonl", "evaluation output file")
	cmd.Flags().StringVar(&opts.candidate, "candidate", "", "candidate model name for the leaderboard")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "judge provider name (overrides config)")
	cmd.Flags().StringVar(&opts.model, "model", "", "judge model name (overrides config)")
	cmd.Flags().Float64Var(&opts.temperature, "temperature", 0, "judge temperature (overrides config)")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 0, "judge max response tokens (overrides config)")
	cmd.Flags().DurationVar(&opts.sleep, "sleep", 0, "pause between judge calls (overrides config)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "per-call timeout (overrides config)")
	cmd.Flags().BoolVar(&opts.noResume, "no-resume", false, "rejudge responses already present in the output file")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the summary to the leaderboard store")

	return cmd
}

func runEvaluate(cmd *cobra.Command, st *cliState, opts *evaluateOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("evaluate: missing config (internal error)")
	}
	if strings.TrimSpace(opts.input) == "" {
		return fmt.Errorf("evaluate: missing --input")
	}

	responses, err := qa.ReadJSONL[qa.ModelResponse](opts.input)
	if err != nil {
		return err
	}
	if len(responses) == 0 {
		return fmt.Errorf("evaluate: no responses in %q", opts.input)
	}

	provider, err := llm.ProviderFromConfig(st.cfg, opts.provider, opts.model)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ecfg := st.cfg.Evaluation
	cfg := judge.Config{
		OutputPath:  opts.output,
		JudgeModel:  judgeModelName(st, opts),
		Temperature: firstNonZero(opts.temperature, ecfg.Temperature),
		MaxTokens:   firstNonZeroInt(opts.maxTokens, ecfg.MaxTokens),
		Sleep:       firstNonZeroDuration(opts.sleep, ecfg.Sleep),
		Timeout:     firstNonZeroDuration(opts.timeout, ecfg.Timeout),
		Resume:      !opts.noResume,
		Out:         out,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, runErr := judge.New(provider, cfg).Run(ctx, responses)
	if res != nil {
		fmt.Fprintf(out, "Evaluation done: judged=%d skipped=%d failed=%d\n",
			res.Judged, res.SkippedResume, res.Failed)
		if res.Summary != nil {
			printSummary(cmd, res.Summary)
		}
	}
	if runErr != nil {
		return runErr
	}

	if opts.save && res != nil && res.Summary != nil {
		return saveSummary(cmd, st, opts, res.Summary)
	}
	return nil
}

func printSummary(cmd *cobra.Command, s *qa.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Answer Correctness: %.1f%% (%d/%d)\n", s.AnswerAccuracy*100, s.Correct, s.Total)
	fmt.Fprintf(out, "Factual Consistency: %.3f\n", s.FactualConsistency)
	fmt.Fprintf(out, "Core Inference: %.3f\n", s.CoreInference)
	for cat, acc := range s.PerCategory {
		fmt.Fprintf(out, "  %s: %.1f%%\n", cat, acc*100)
	}
}

func saveSummary(cmd *cobra.Command, st *cliState, opts *evaluateOptions, s *qa.Summary) error {
	candidate := strings.TrimSpace(opts.candidate)
	if candidate == "" {
		return fmt.Errorf("evaluate: --save requires --candidate")
	}

	db, err := openStore(st.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	entry, err := store.EntryFromSummary(candidate, judgeModelName(st, opts), s)
	if err != nil {
		return err
	}
	if err := db.Save(cmd.Context(), entry); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Leaderboard entry saved: id=%d model=%s accuracy=%.4f\n",
		entry.ID, entry.Model, entry.AnswerAccuracy)
	return nil
}

func judgeModelName(st *cliState, opts *evaluateOptions) string {
	return resolveModelName(st, opts.provider, opts.model)
}

// resolveModelName reports the model a command will use, for bookkeeping.
func resolveModelName(st *cliState, provider, model string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	name := strings.TrimSpace(provider)
	if name == "" {
		name = st.cfg.LLM.DefaultProvider
	}
	if p, ok := st.cfg.LLM.Providers[strings.ToLower(strings.TrimSpace(name))]; ok {
		return strings.TrimSpace(p.Model)
	}
	return ""
}
