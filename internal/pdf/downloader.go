// Package pdf downloads paper PDFs as a side effect of acceptance.
package pdf

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/econlabs/nber-paper-crawler/internal/hash/sha256"
	"github.com/econlabs/nber-paper-crawler/internal/scraper"
	"github.com/econlabs/nber-paper-crawler/internal/storage"
)

// Downloader implements scraper.PDFDownloader. It reuses the run's retrying
// fetcher, so PDF requests share the same pacing and retry budget as page
// fetches, and writes bytes through the blob Provider. Downloads carry no
// discovery logic; a failure here is logged and reported false, nothing more.
type Downloader struct {
	fetcher scraper.Fetcher
	store   storage.Provider
	hasher  *sha256.Hasher
	logger  *zap.Logger
}

// New builds a Downloader.
func New(fetcher scraper.Fetcher, store storage.Provider, logger *zap.Logger) *Downloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{
		fetcher: fetcher,
		store:   store,
		hasher:  sha256.New(),
		logger:  logger,
	}
}

// Download fetches pdfURL and stores it as w<id>.pdf. An object already in
// the store is left untouched and counts as success.
func (d *Downloader) Download(ctx context.Context, pdfURL string, id int) bool {
	if pdfURL == "" {
		return false
	}
	name := fmt.Sprintf("w%d.pdf", id)

	if exists, err := d.store.Exists(ctx, name); err == nil && exists {
		d.logger.Debug("pdf already stored, skipping", zap.String("object", name))
		return true
	}

	resp, err := d.fetcher.Fetch(ctx, scraper.FetchRequest{URL: pdfURL})
	if err != nil {
		d.logger.Warn("pdf fetch failed", zap.String("url", pdfURL), zap.Error(err))
		return false
	}
	if resp.StatusCode != http.StatusOK {
		d.logger.Warn("pdf fetch returned unexpected status",
			zap.String("url", pdfURL), zap.Int("status", resp.StatusCode))
		return false
	}

	uri, err := d.store.Put(ctx, name, "application/pdf", resp.Body)
	if err != nil {
		d.logger.Warn("pdf store failed", zap.String("object", name), zap.Error(err))
		return false
	}
	d.logger.Info("pdf downloaded",
		zap.String("object", name),
		zap.String("uri", uri),
		zap.Int("bytes", len(resp.Body)),
		zap.String("sha256", d.hasher.Hash(resp.Body)),
	)
	return true
}
