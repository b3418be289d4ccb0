package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/econlabs/nber-paper-crawler/internal/analysis"
	"github.com/econlabs/nber-paper-crawler/internal/checkpoint"
)

func newReportCmd() *cobra.Command {
	var topN int
	cmd := &cobra.Command{
		Use:   "report [checkpoint file]",
		Short: "Summarize a collected paper set.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			path := cfg.Checkpoint.Path
			if len(args) > 0 {
				path = args[0]
			}
			papers, err := checkpoint.Load(path)
			if err != nil {
				return fmt.Errorf("load papers: %w", err)
			}
			summary := analysis.Summarize(papers, topN)
			return analysis.WriteReport(os.Stdout, summary)
		},
	}
	cmd.Flags().IntVar(&topN, "top", 10, "number of entries in the top-authors and top-keywords lists")
	return cmd
}
