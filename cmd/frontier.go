package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	collyfetcher "github.com/econlabs/nber-paper-crawler/internal/fetcher/colly"
	"github.com/econlabs/nber-paper-crawler/internal/scraper"
)

func newFrontierCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "frontier",
		Short: "Locate the newest working-paper number and print it.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			pacer := scraper.NewPacer(cfg.HTTP.Delay())
			transport := collyfetcher.New(collyfetcher.Config{
				UserAgent: cfg.HTTP.UserAgent,
				Timeout:   cfg.HTTP.Timeout(),
			})
			fetcher := scraper.NewRetryingFetcher(transport, pacer, cfg.HTTP.MaxRetries, logger)

			locator := scraper.NewFrontierLocator(fetcher, cfg.Scrape.BaseURL, scraper.FrontierConfig{
				ProbeStart: cfg.Frontier.ProbeStart,
				ProbeEnd:   cfg.Frontier.ProbeEnd,
				ProbeStep:  cfg.Frontier.ProbeStep,
				Buffer:     cfg.Frontier.Buffer,
				Fallback:   cfg.Frontier.Fallback,
			}, logger)

			start, err := locator.Locate(cmd.Context())
			if err != nil {
				return fmt.Errorf("locate frontier: %w", err)
			}
			fmt.Printf("Suggested start number: %d\n", start)
			return nil
		},
	}
}
