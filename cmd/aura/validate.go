package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/auralab/aura-bench/internal/dataset"
	"github.com/auralab/aura-bench/internal/qa"
)

func newValidateCmd() *cobra.Command {
	var input string
	var dataDir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a QA-pair file against the release schema, or a dataset for complete triples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(dataDir) != "" {
				return runValidateDataset(cmd, dataDir)
			}
			return runValidate(cmd, input)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "QA-pair JSONL file to validate")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "dataset root to check for complete triples")
	return cmd
}

func runValidateDataset(cmd *cobra.Command, dataDir string) error {
	report, err := dataset.Load(dataDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, skip := range report.Skipped {
		fmt.Fprintf(out, "skip %s: %s\n", skip.VideoID, skip.Reason)
	}
	fmt.Fprintf(out, "Eligible clips: %d, skipped: %d\n", len(report.Items), len(report.Skipped))
	return nil
}

func runValidate(cmd *cobra.Command, input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("validate: missing --input or --data-dir")
	}

	pairs, err := qa.ReadJSONL[qa.Pair](input)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return fmt.Errorf("validate: no pairs in %q", input)
	}

	out := cmd.OutOrStdout()
	bad := 0
	byCategory := make(map[string]int)
	for i := range pairs {
		p := &pairs[i]
		if err := qa.Validate(p); err != nil {
			bad++
			fmt.Fprintf(out, "line %d (%s): %v\n", i+1, p.VideoID, err)
			continue
		}
		if strings.TrimSpace(p.VideoID) == "" {
			bad++
			fmt.Fprintf(out, "line %d: missing video_id\n", i+1)
			continue
		}
		byCategory[p.Category]++
	}

	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		fmt.Fprintf(out, "%s: %d pairs\n", cat, byCategory[cat])
	}
	fmt.Fprintf(out, "Validated %d pairs, %d invalid\n", len(pairs), bad)

	if bad > 0 {
		return fmt.Errorf("validate: %d invalid pairs", bad)
	}
	return nil
}
