package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcpubsub "cloud.google.com/go/pubsub"
	gcstorage "cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/econlabs/nber-paper-crawler/internal/api"
	"github.com/econlabs/nber-paper-crawler/internal/archive"
	"github.com/econlabs/nber-paper-crawler/internal/checkpoint"
	"github.com/econlabs/nber-paper-crawler/internal/clock/system"
	"github.com/econlabs/nber-paper-crawler/internal/config"
	"github.com/econlabs/nber-paper-crawler/internal/extract"
	collyfetcher "github.com/econlabs/nber-paper-crawler/internal/fetcher/colly"
	"github.com/econlabs/nber-paper-crawler/internal/fetcher/headless"
	"github.com/econlabs/nber-paper-crawler/internal/filter"
	"github.com/econlabs/nber-paper-crawler/internal/headless/detector"
	uuidgen "github.com/econlabs/nber-paper-crawler/internal/id/uuid"
	"github.com/econlabs/nber-paper-crawler/internal/pdf"
	"github.com/econlabs/nber-paper-crawler/internal/progress"
	"github.com/econlabs/nber-paper-crawler/internal/progress/sinks"
	pubsubpub "github.com/econlabs/nber-paper-crawler/internal/publisher/pubsub"
	"github.com/econlabs/nber-paper-crawler/internal/scraper"
	"github.com/econlabs/nber-paper-crawler/internal/storage"
	"github.com/econlabs/nber-paper-crawler/internal/storage/gcs"
	"github.com/econlabs/nber-paper-crawler/internal/storage/local"
)

type scanFlags struct {
	query        string
	startDate    string
	endDate      string
	startNumber  int
	maxPapers    int
	maxChecked   int
	output       string
	downloadPDFs bool
}

func newScanCmd() *cobra.Command {
	var flags scanFlags
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a backward scan over the working-paper numbering space.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			applyScanFlags(cmd, &cfg, flags)
			return runScan(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "topic query (the reserved query \"ai\" expands to its synonym set)")
	cmd.Flags().StringVar(&flags.startDate, "start-date", "", "earliest publication date (YYYY-MM-DD or YYYY/MM/DD)")
	cmd.Flags().StringVar(&flags.endDate, "end-date", "", "latest publication date (YYYY-MM-DD or YYYY/MM/DD)")
	cmd.Flags().IntVar(&flags.startNumber, "start-number", 0, "first paper number to examine (0 locates the frontier automatically)")
	cmd.Flags().IntVarP(&flags.maxPapers, "max-papers", "n", 0, "stop after accepting this many papers (0 = unlimited)")
	cmd.Flags().IntVar(&flags.maxChecked, "max-checked", 0, "stop after examining this many paper numbers (0 = unlimited)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "checkpoint/output path")
	cmd.Flags().BoolVar(&flags.downloadPDFs, "download-pdfs", false, "download the PDF of each accepted paper")

	return cmd
}

// applyScanFlags lets explicit flags override the loaded config.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config, flags scanFlags) {
	if cmd.Flags().Changed("query") {
		cfg.Scrape.Query = flags.query
	}
	if cmd.Flags().Changed("start-date") {
		cfg.Scrape.StartDate = flags.startDate
	}
	if cmd.Flags().Changed("end-date") {
		cfg.Scrape.EndDate = flags.endDate
	}
	if cmd.Flags().Changed("start-number") {
		cfg.Scrape.StartNumber = flags.startNumber
	}
	if cmd.Flags().Changed("max-papers") {
		cfg.Scrape.MaxPapers = flags.maxPapers
	}
	if cmd.Flags().Changed("max-checked") {
		cfg.Scrape.MaxChecked = flags.maxChecked
	}
	if cmd.Flags().Changed("output") {
		cfg.Checkpoint.Path = flags.output
	}
	if cmd.Flags().Changed("download-pdfs") {
		cfg.Scrape.DownloadPDFs = flags.downloadPDFs
	}
}

func runScan(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	pacer := scraper.NewPacer(cfg.HTTP.Delay())
	transport := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout(),
	})
	fetcher := scraper.NewRetryingFetcher(transport, pacer, cfg.HTTP.MaxRetries, logger)
	clock := system.Clock{}

	extractorOpts, headlessClose, err := headlessOptions(cfg)
	if err != nil {
		return err
	}
	defer headlessClose()

	extractor := extract.New(fetcher, clock, extract.Config{BaseURL: cfg.Scrape.BaseURL}, logger, extractorOpts...)
	papersFilter := filter.New(filter.Criteria{
		Query:     cfg.Scrape.Query,
		StartDate: cfg.Scrape.StartDate,
		EndDate:   cfg.Scrape.EndDate,
	})
	checkpoints := checkpoint.NewStore(logger)

	blobStore, err := newBlobStore(ctx, cfg)
	if err != nil {
		return err
	}
	downloader := pdf.New(fetcher, blobStore, logger)

	archiveStore, err := newArchive(ctx, cfg)
	if err != nil {
		return err
	}
	if archiveStore != nil {
		defer archiveStore.Close()
	}

	publisher, topic, pubClose, err := newPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer pubClose()

	registry := prometheus.NewRegistry()
	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	statusSink := sinks.NewStatusSink()
	hub := progress.NewHub(progress.Config{Logger: logger},
		sinks.NewLogSink(logger), promSink, statusSink)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := hub.Close(closeCtx); err != nil {
			logger.Warn("progress hub close failed", zap.Error(err))
		}
	}()

	srvStop := startStatusServer(cfg, statusSink, registry, logger)
	defer srvStop()

	runID, err := uuidgen.NewGenerator().NewRawID()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}

	frontier := scraper.NewFrontierLocator(fetcher, cfg.Scrape.BaseURL, scraper.FrontierConfig{
		ProbeStart: cfg.Frontier.ProbeStart,
		ProbeEnd:   cfg.Frontier.ProbeEnd,
		ProbeStep:  cfg.Frontier.ProbeStep,
		Buffer:     cfg.Frontier.Buffer,
		Fallback:   cfg.Frontier.Fallback,
	}, logger)

	controller, err := scraper.NewController(scraper.ScanParams{
		Query:                  cfg.Scrape.Query,
		StartDate:              cfg.Scrape.StartDate,
		EndDate:                cfg.Scrape.EndDate,
		StartNumber:            cfg.Scrape.StartNumber,
		MaxPapers:              cfg.Scrape.MaxPapers,
		MaxChecked:             cfg.Scrape.MaxChecked,
		MaxConsecutiveFailures: cfg.Scrape.MaxConsecutiveFailures,
		CheckpointPath:         cfg.Checkpoint.Path,
		CheckpointEvery:        cfg.Checkpoint.Every,
		DownloadPDFs:           cfg.Scrape.DownloadPDFs,
	}, scraper.ControllerOptions{
		Extractor:   extractor,
		Filter:      papersFilter,
		Checkpoints: checkpoints,
		Frontier:    frontier,
		PDFs:        downloader,
		Archive:     nilIfUnsetArchive(archiveStore),
		Publisher:   publisher,
		Topic:       topic,
		Clock:       clock,
		Emitter:     hub,
		Logger:      logger,
		RunID:       progress.UUIDToBytes(runID),
	})
	if err != nil {
		return fmt.Errorf("build controller: %w", err)
	}

	result, err := controller.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scan failed: %w", err)
	}

	if cfg.Checkpoint.Path != "" && result.Reason != scraper.StopCanceled {
		saveCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := checkpoints.Save(saveCtx, result.Papers, cfg.Checkpoint.Path); err != nil {
			return fmt.Errorf("write final output: %w", err)
		}
	}

	fmt.Printf("Scan finished: %s\n", result.Reason)
	fmt.Printf("  checked:  %d\n", result.State.Checked)
	fmt.Printf("  accepted: %d\n", result.State.Accepted)
	if cfg.Checkpoint.Path != "" {
		fmt.Printf("  output:   %s\n", cfg.Checkpoint.Path)
	}
	return err
}

// headlessOptions builds the optional rendered re-fetch path.
func headlessOptions(cfg config.Config) ([]extract.Option, func(), error) {
	if !cfg.Headless.Enabled {
		return nil, func() {}, nil
	}
	browser, err := headless.NewChromedp(headless.Config{
		UserAgent:         cfg.HTTP.UserAgent,
		NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, func() {}, fmt.Errorf("init headless fetcher: %w", err)
	}
	opt := extract.WithHeadless(browser, detector.NewHeuristic(cfg.Headless.BodyThreshold))
	return []extract.Option{opt}, browser.Close, nil
}

func newBlobStore(ctx context.Context, cfg config.Config) (storage.Provider, error) {
	switch cfg.Storage.Backend {
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		return gcs.New(client, gcs.Config{Bucket: cfg.Storage.GCSBucket})
	case "none":
		return storage.NoOp{}, nil
	default:
		return local.New(local.Config{BaseDir: cfg.Storage.LocalDir})
	}
}

func newArchive(ctx context.Context, cfg config.Config) (*archive.Store, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	store, err := archive.NewStore(ctx, archive.Config{
		DSN:   cfg.Archive.DSN,
		Table: cfg.Archive.Table,
	})
	if err != nil {
		return nil, fmt.Errorf("init archive: %w", err)
	}
	return store, nil
}

// nilIfUnsetArchive keeps the controller's optional-collaborator check honest;
// a typed nil *archive.Store must not masquerade as a live ArchiveStore.
func nilIfUnsetArchive(store *archive.Store) scraper.ArchiveStore {
	if store == nil {
		return nil
	}
	return store
}

func newPublisher(ctx context.Context, cfg config.Config) (scraper.Publisher, string, func(), error) {
	if !cfg.PubSub.Enabled {
		return nil, "", func() {}, nil
	}
	client, err := gcpubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, "", func() {}, fmt.Errorf("init pubsub client: %w", err)
	}
	closeFn := func() { _ = client.Close() }
	return pubsubpub.New(client), cfg.PubSub.Topic, closeFn, nil
}

func startStatusServer(cfg config.Config, status *sinks.StatusSink, registry *prometheus.Registry, logger *zap.Logger) func() {
	if !cfg.Status.Enabled {
		return func() {}
	}
	server := api.NewServer(cfg.Status.Addr, status, registry, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("status server failed", zap.Error(err))
		}
	}()
	return func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutCtx); err != nil {
			logger.Warn("status server shutdown failed", zap.Error(err))
		}
	}
}
