package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/auralab/aura-bench/internal/store"
)

type leaderboardOptions struct {
	model  string
	top    int
	format string
}

func newLeaderboardCmd(st *cliState) *cobra.Command {
	var opts leaderboardOptions

	cmd := &cobra.Command{
		Use:     "leaderboard",
		Short:   "Show saved benchmark results",
		Args:    cobra.NoArgs,
		PreRunE: loadConfigPreRun(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboardCmd(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.model, "model", "", "show run history for one model instead of the ranking")
	cmd.Flags().IntVar(&opts.top, "top", 20, "top N entries")
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table|json")

	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, st *cliState, opts *leaderboardOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("leaderboard: missing config (internal error)")
	}

	db, err := openStore(st.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var entries []store.Entry
	if model := strings.TrimSpace(opts.model); model != "" {
		entries, err = db.ModelHistory(cmd.Context(), model)
	} else {
		entries, err = db.Leaderboard(cmd.Context(), opts.top)
	}
	if err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(opts.format)) {
	case "", "table":
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tMODEL\tJUDGE\tACCURACY\tFACTUAL\tINFERENCE\tTOTAL\tDATE")
		for i, e := range entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\t%.4f\t%.4f\t%d\t%s\n",
				i+1,
				e.Model,
				e.JudgeModel,
				e.AnswerAccuracy,
				e.FactualConsistency,
				e.CoreInference,
				e.Total,
				e.EvalDate.UTC().Format("2006-01-02 15:04:05Z"),
			)
		}
		return tw.Flush()
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	default:
		return fmt.Errorf("leaderboard: unsupported format %q", opts.format)
	}
}
