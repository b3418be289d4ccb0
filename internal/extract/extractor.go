// Package extract parses fetched paper pages into structured records.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/econlabs/nber-paper-crawler/internal/scraper"
)

// Config controls the Extractor.
type Config struct {
	BaseURL string
}

// Extractor implements scraper.Extractor over an HTTP fetcher and goquery.
// Structured citation meta tags are authoritative; the abstract falls back
// through CSS selectors and finally a raw-text pattern search. An optional
// headless fetcher is consulted once when the static page yields no abstract
// and the detector flags a script-built shell.
type Extractor struct {
	fetcher  scraper.Fetcher
	headless scraper.Fetcher
	detector scraper.RenderDetector
	clock    scraper.Clock
	cfg      Config
	logger   *zap.Logger
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithHeadless enables the headless re-fetch path.
func WithHeadless(fetcher scraper.Fetcher, detector scraper.RenderDetector) Option {
	return func(e *Extractor) {
		e.headless = fetcher
		e.detector = detector
	}
}

// New builds an Extractor.
func New(fetcher scraper.Fetcher, clock scraper.Clock, cfg Config, logger *zap.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Extractor{
		fetcher: fetcher,
		clock:   clock,
		cfg:     cfg,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches the page for one paper number and builds the record. It
// never panics or propagates parse errors past this boundary; one bad page
// must not abort the scan.
func (e *Extractor) Extract(ctx context.Context, id int) (ext scraper.Extraction) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("parse paper w%d: panic: %v", id, r)
			e.logger.Error("extraction panicked", zap.Int("paper", id), zap.Any("panic", r))
			ext = scraper.Extraction{Outcome: scraper.ExtractParseFailed, Err: err}
		}
	}()

	url := scraper.PaperURL(e.cfg.BaseURL, id)
	resp, err := e.fetcher.Fetch(ctx, scraper.FetchRequest{URL: url})
	if err != nil {
		e.logger.Warn("fetch paper failed", zap.Int("paper", id), zap.Error(err))
		return scraper.Extraction{Outcome: scraper.ExtractNetworkFailed, Err: err}
	}
	if resp.NotFound() {
		return scraper.Extraction{Outcome: scraper.ExtractNotFound}
	}
	if !resp.OK() {
		err := fmt.Errorf("fetch paper w%d: unexpected status %d", id, resp.StatusCode)
		e.logger.Warn("unexpected paper status",
			zap.Int("paper", id), zap.Int("status", resp.StatusCode))
		return scraper.Extraction{Outcome: scraper.ExtractNetworkFailed, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		e.logger.Warn("parse paper failed", zap.Int("paper", id), zap.Error(err))
		return scraper.Extraction{Outcome: scraper.ExtractParseFailed, Err: err}
	}

	paper := e.buildPaper(doc, id, url)

	if paper.Abstract == "" {
		paper.Abstract = e.renderedAbstract(ctx, id, url, resp)
	}

	paper.ExtractedAt = e.clock.Now()
	e.logger.Debug("extracted paper",
		zap.String("paper", paper.Number()),
		zap.String("title", paper.Title),
	)
	return scraper.Extraction{Paper: paper, Outcome: scraper.ExtractOK}
}

func (e *Extractor) buildPaper(doc *goquery.Document, id int, url string) *scraper.Paper {
	paper := &scraper.Paper{
		ID:      id,
		URL:     url,
		Authors: metaContents(doc, "citation_author"),
	}
	paper.Title = metaContent(doc, "citation_title")
	paper.DOI = metaContent(doc, "citation_doi")
	paper.PublicationDate = metaContent(doc, "citation_publication_date")
	paper.PDFURL = metaContent(doc, "citation_pdf_url")

	paper.Abstract = abstractFromSelectors(doc)
	if paper.Abstract == "" {
		paper.Abstract = abstractFromText(doc)
	}
	return paper
}

// renderedAbstract re-fetches the page through the headless browser when the
// static HTML looks like a script-built shell, then reruns the abstract
// cascade. Any failure here leaves the abstract unset; it is never an error.
func (e *Extractor) renderedAbstract(ctx context.Context, id int, url string, static scraper.FetchResponse) string {
	if e.headless == nil || e.detector == nil || !e.detector.ShouldRender(static) {
		return ""
	}
	resp, err := e.headless.Fetch(ctx, scraper.FetchRequest{URL: url, Method: http.MethodGet})
	if err != nil {
		e.logger.Warn("headless re-fetch failed", zap.Int("paper", id), zap.Error(err))
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		e.logger.Warn("headless parse failed", zap.Int("paper", id), zap.Error(err))
		return ""
	}
	if abstract := abstractFromSelectors(doc); abstract != "" {
		return abstract
	}
	return abstractFromText(doc)
}
