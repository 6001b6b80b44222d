package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/auralab/aura-bench/internal/dataset"
	"github.com/auralab/aura-bench/internal/generate"
	"github.com/auralab/aura-bench/internal/llm"
	"github.com/auralab/aura-bench/internal/store"
	"github.com/auralab/aura-bench/internal/task"
)

type generateOptions struct {
	dataDir     string
	outputDir   string
	category    string
	provider    string
	model       string
	syncStatus  string
	temperature float64
	maxTokens   int
	sleep       time.Duration
	timeout     time.Duration
	noResume    bool
}

func newGenerateCmd(st *cliState) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Generate QA pairs for one category from a caption dataset",
		Args:    cobra.NoArgs,
		PreRunE: loadConfigPreRun(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "dataset root with transcripts/, visual_captions/, audio_captions/")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "output", "directory for generated JSONL files")
	cmd.Flags().StringVar(&opts.category, "category", "", "question category: "+strings.Join(task.Names(), "|"))
	cmd.Flags().StringVar(&opts.provider, "provider", "", "provider name (overrides config)")
	cmd.Flags().StringVar(&opts.model, "model", "", "model name (overrides config)")
	cmd.Flags().StringVar(&opts.syncStatus, "sync-status", "", "ground-truth alignment for tempo_av_sync_analysis: Aligned|Misaligned")
	cmd.Flags().Float64Var(&opts.temperature, "temperature", 0, "sampling temperature (overrides config)")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 0, "max response tokens (overrides config)")
	cmd.Flags().DurationVar(&opts.sleep, "sleep", 0, "pause between clips (overrides config)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "per-call timeout (overrides config)")
	cmd.Flags().BoolVar(&opts.noResume, "no-resume", false, "reprocess clips already present in the output file")

	return cmd
}

func runGenerate(cmd *cobra.Command, st *cliState, opts *generateOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("generate: missing config (internal error)")
	}
	if strings.TrimSpace(opts.dataDir) == "" {
		return fmt.Errorf("generate: missing --data-dir")
	}

	t, err := task.Get(opts.category)
	if err != nil {
		return err
	}

	provider, err := llm.ProviderFromConfig(st.cfg, opts.provider, opts.model)
	if err != nil {
		return err
	}

	report, err := dataset.Load(opts.dataDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, skip := range report.Skipped {
		fmt.Fprintf(out, "skip %s: %s\n", skip.VideoID, skip.Reason)
	}

	gcfg := st.cfg.Generation
	cfg := generate.Config{
		Task:        t,
		OutputPath:  filepath.Join(opts.outputDir, "qa_pairs_"+t.Category+".jsonl"),
		FailurePath: filepath.Join(opts.outputDir, "failures_"+t.Category+".jsonl"),
		SyncStatus:  opts.syncStatus,
		Temperature: firstNonZero(opts.temperature, gcfg.Temperature),
		MaxTokens:   firstNonZeroInt(opts.maxTokens, gcfg.MaxTokens),
		Sleep:       firstNonZeroDuration(opts.sleep, gcfg.Sleep),
		Timeout:     firstNonZeroDuration(opts.timeout, gcfg.Timeout),
		Resume:      !opts.noResume,
		Out:         out,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	started := time.Now().UTC()
	res, runErr := generate.New(provider, cfg).Run(ctx, report.Items)
	if res != nil {
		fmt.Fprintf(out, "Generation done: category=%s clips=%d pairs=%d skipped=%d failed=%d\n",
			t.Category, res.Generated, res.Pairs, res.SkippedResume, res.Failed)
		if err := saveGenerationRun(cmd, st, t.Category, resolveModelName(st, opts.provider, opts.model), len(report.Items), res, started); err != nil {
			fmt.Fprintf(out, "record run: %v\n", err)
		}
	}
	return runErr
}

func saveGenerationRun(cmd *cobra.Command, st *cliState, category, model string, items int, res *generate.Result, started time.Time) error {
	db, err := openStore(st.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.SaveGenerationRun(cmd.Context(), &store.GenerationRun{
		Category:   category,
		Model:      model,
		Items:      items,
		Generated:  res.Generated,
		Failed:     res.Failed,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	})
}

func firstNonZero(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonZeroInt(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonZeroDuration(vals ...time.Duration) time.Duration {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
