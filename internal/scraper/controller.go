package scraper

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/econlabs/nber-paper-crawler/internal/progress"
)

// ControllerOptions wires the collaborators a Controller drives. Extractor,
// Filter, and Checkpoints are required; the rest are optional side channels.
type ControllerOptions struct {
	Extractor   Extractor
	Filter      Filter
	Checkpoints CheckpointStore
	Frontier    *FrontierLocator
	PDFs        PDFDownloader
	Archive     ArchiveStore
	Publisher   Publisher
	Topic       string
	Clock       Clock
	Emitter     progress.Emitter
	Logger      *zap.Logger
	RunID       [16]byte
}

// Controller drives one backward scan over the paper numbering space. It owns
// the run's state and result set exclusively; fetches are issued one at a
// time, so no locking discipline is needed.
type Controller struct {
	opts   ControllerOptions
	params ScanParams
	state  ScanState
	papers []Paper
}

// NewController validates the wiring and returns a Controller ready to run.
func NewController(params ScanParams, opts ControllerOptions) (*Controller, error) {
	if opts.Extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if opts.Filter == nil {
		return nil, fmt.Errorf("filter is required")
	}
	if opts.Checkpoints == nil {
		return nil, fmt.Errorf("checkpoint store is required")
	}
	if params.StartNumber <= 0 && opts.Frontier == nil {
		return nil, fmt.Errorf("frontier locator is required when no start number is supplied")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Emitter == nil {
		opts.Emitter = progress.Nop{}
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.RunID == ([16]byte{}) {
		opts.RunID = progress.UUIDToBytes(uuid.New())
	}
	if params.MaxConsecutiveFailures <= 0 {
		params.MaxConsecutiveFailures = DefaultMaxConsecutiveFailures
	}
	if params.CheckpointEvery <= 0 {
		params.CheckpointEvery = DefaultCheckpointEvery
	}
	if params.ProgressEvery <= 0 {
		params.ProgressEvery = DefaultProgressEvery
	}
	return &Controller{opts: opts, params: params, papers: []Paper{}}, nil
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Run executes the scan until a stop condition fires or the context is
// canceled. Cancellation is observed at loop-iteration granularity and
// triggers an emergency checkpoint before returning. The accumulated result
// set is returned even on the cancellation path.
func (c *Controller) Run(ctx context.Context) (ScanResult, error) {
	log := c.opts.Logger

	start := c.params.StartNumber
	if start <= 0 {
		located, err := c.opts.Frontier.Locate(ctx)
		if err != nil {
			return c.result(StopCanceled), err
		}
		start = located
	}
	c.state = ScanState{Cursor: start}

	log.Info("starting scan",
		zap.Int("start", start),
		zap.String("query", c.params.Query),
		zap.Int("max_papers", c.params.MaxPapers),
		zap.Int("max_checked", c.params.MaxChecked),
	)
	c.emit(progress.Event{Stage: progress.StageScanStart})

	reason := c.scan(ctx, log)

	if reason == StopCanceled {
		c.emergencyCheckpoint(log)
		c.emit(progress.Event{Stage: progress.StageScanError, Note: "canceled"})
		return c.result(reason), ctx.Err()
	}

	log.Info("scan completed",
		zap.String("reason", string(reason)),
		zap.Int("checked", c.state.Checked),
		zap.Int("accepted", c.state.Accepted),
	)
	c.emit(progress.Event{Stage: progress.StageScanDone, Note: string(reason)})
	return c.result(reason), nil
}

func (c *Controller) scan(ctx context.Context, log *zap.Logger) StopReason {
	for {
		if ctx.Err() != nil {
			return StopCanceled
		}
		if reason, stopped := c.stopCondition(log); stopped {
			return reason
		}

		c.state.Checked++
		began := c.opts.Clock.Now()
		ext := c.opts.Extractor.Extract(ctx, c.state.Cursor)
		dur := c.opts.Clock.Now().Sub(began)

		// A network failure caused by cancellation is not a miss.
		if ctx.Err() != nil {
			return StopCanceled
		}

		if !ext.Found() {
			c.state.ConsecutiveFailures++
			c.emit(progress.Event{
				Stage:   progress.StagePaperMiss,
				Paper:   c.state.Cursor,
				Outcome: ext.Outcome.String(),
				Dur:     dur,
			})
		} else {
			c.state.ConsecutiveFailures = 0
			c.consider(ctx, *ext.Paper, dur, log)
		}

		c.state.Cursor--

		if c.state.Checked%c.params.ProgressEvery == 0 {
			log.Info("scan progress",
				zap.Int("checked", c.state.Checked),
				zap.Int("accepted", c.state.Accepted),
				zap.Int("cursor", c.state.Cursor),
			)
			c.emit(progress.Event{Stage: progress.StageScanProgress})
		}
	}
}

func (c *Controller) stopCondition(log *zap.Logger) (StopReason, bool) {
	switch {
	case c.params.MaxPapers > 0 && c.state.Accepted >= c.params.MaxPapers:
		log.Info("reached accepted papers limit", zap.Int("limit", c.params.MaxPapers))
		return StopLimit, true
	case c.params.MaxChecked > 0 && c.state.Checked >= c.params.MaxChecked:
		log.Info("reached checked papers limit", zap.Int("limit", c.params.MaxChecked))
		return StopLimit, true
	case c.state.ConsecutiveFailures >= c.params.MaxConsecutiveFailures:
		log.Info("reached consecutive failure threshold",
			zap.Int("threshold", c.params.MaxConsecutiveFailures))
		return StopFailures, true
	case c.state.Cursor <= 0:
		log.Info("reached paper number 0")
		return StopExhausted, true
	}
	return "", false
}

func (c *Controller) consider(ctx context.Context, paper Paper, dur time.Duration, log *zap.Logger) {
	if !c.opts.Filter.Matches(paper) {
		return
	}
	c.papers = append(c.papers, paper)
	c.state.Accepted++

	log.Info("accepted paper",
		zap.String("paper", paper.Number()),
		zap.Int("accepted", c.state.Accepted),
		zap.String("title", truncate(paper.Title, 100)),
	)
	c.emit(progress.Event{
		Stage: progress.StagePaperAccepted,
		Paper: paper.ID,
		Title: paper.Title,
		Dur:   dur,
	})

	if c.opts.Archive != nil {
		if err := c.opts.Archive.SavePaper(ctx, paper); err != nil {
			log.Warn("archive save failed", zap.String("paper", paper.Number()), zap.Error(err))
		}
	}
	if c.opts.Publisher != nil && c.opts.Topic != "" {
		payload := map[string]any{
			"paper_id":     paper.Number(),
			"url":          paper.URL,
			"title":        paper.Title,
			"pdf_url":      paper.PDFURL,
			"extracted_at": paper.ExtractedAt.Format(time.RFC3339),
		}
		if _, err := c.opts.Publisher.Publish(ctx, c.opts.Topic, payload); err != nil {
			log.Warn("publish acceptance failed", zap.String("paper", paper.Number()), zap.Error(err))
		}
	}
	if c.params.DownloadPDFs && paper.PDFURL != "" && c.opts.PDFs != nil {
		if !c.opts.PDFs.Download(ctx, paper.PDFURL, paper.ID) {
			log.Warn("pdf download failed", zap.String("paper", paper.Number()))
		}
	}
	if c.state.Accepted%c.params.CheckpointEvery == 0 {
		c.checkpoint(ctx, c.params.CheckpointPath, log)
	}
}

// checkpoint writes a full snapshot; write failures are logged and do not
// abort the scan or poison later attempts.
func (c *Controller) checkpoint(ctx context.Context, path string, log *zap.Logger) {
	if path == "" {
		return
	}
	if err := c.opts.Checkpoints.Save(ctx, c.papers, path); err != nil {
		log.Error("checkpoint write failed", zap.String("path", path), zap.Error(err))
		return
	}
	log.Info("checkpoint written", zap.String("path", path), zap.Int("papers", len(c.papers)))
}

func (c *Controller) emergencyCheckpoint(log *zap.Logger) {
	if c.params.CheckpointPath == "" || len(c.papers) == 0 {
		return
	}
	path := EmergencyPath(c.params.CheckpointPath)
	// The run context is gone; give the write its own short deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.checkpoint(ctx, path, log)
}

func (c *Controller) result(reason StopReason) ScanResult {
	return ScanResult{
		Papers: append([]Paper(nil), c.papers...),
		State:  c.state,
		Reason: reason,
	}
}

func (c *Controller) emit(evt progress.Event) {
	evt.RunID = c.opts.RunID
	evt.TS = c.opts.Clock.Now()
	evt.Checked = int64(c.state.Checked)
	evt.Accepted = int64(c.state.Accepted)
	c.opts.Emitter.Emit(evt)
}

// EmergencyPath derives the abnormal-termination checkpoint name from the
// normal output path, e.g. data/papers.json -> data/papers_emergency.json.
func EmergencyPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_emergency" + ext
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
