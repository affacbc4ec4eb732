// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches the PDFs of corpus records. Records are
// processed one at a time and the store is saved after every stored PDF,
// so an interrupted run resumes with the first record not yet marked as
// downloaded.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/litcorpus/internal/httputil"
	"github.com/pdiddy/litcorpus/internal/mapper"
	"github.com/pdiddy/litcorpus/internal/metrics"
	"github.com/pdiddy/litcorpus/internal/store"
	"github.com/pdiddy/litcorpus/internal/verify"
	"github.com/pdiddy/litcorpus/pkg/types"
)

var (
	// ErrAccessDenied is returned when a PDF URL answers with something
	// other than PDF data, typically a login or paywall page.
	ErrAccessDenied = errors.New("response did not contain PDF data")

	// ErrTooManyFailures is returned when the mapper failed for more than
	// maxConsecutiveFailures records in a row.
	ErrTooManyFailures = errors.New("too many consecutive failures to find PDF URLs")
)

const (
	// maxConsecutiveFailures is the number of PDF URL lookups in a row that
	// may fail before the run is aborted.
	maxConsecutiveFailures = 2

	// minMaxWait is the floor of the courtesy wait bound.
	minMaxWait = 4 * time.Second

	// DefaultRequestDelay is the minimum interval between PDF requests.
	DefaultRequestDelay = 1 * time.Second

	// DefaultPollInterval is how often a browser download is checked.
	DefaultPollInterval = 2 * time.Second
)

// RecordStore loads and saves the corpus records.
type RecordStore interface {
	LoadRecords() ([]types.Record, error)
	SaveRecords(records []types.Record) error
}

// Downloader is the pipeline step that stores the PDF of every record.
type Downloader struct {
	Client   *http.Client
	Mapper   mapper.Mapper
	Store    RecordStore
	Layout   store.Layout
	Config   types.DownloadConfig
	Throttle *httputil.Throttle
	Browser  Browser
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Name implements pipeline.Step.
func (d *Downloader) Name() string { return "download" }

func (d *Downloader) init() {
	if d.Client == nil {
		d.Client = httputil.NewClient(d.Config.Timeout)
	}
	if d.Config.UserAgent == "" {
		d.Config.UserAgent = httputil.DefaultUserAgent
	}
	if d.Throttle == nil {
		d.Throttle = httputil.NewThrottle(d.Config.RequestDelay)
	}
	if d.Browser == nil {
		d.Browser = SystemBrowser{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Sleep == nil {
		d.Sleep = sleep
	}
	if d.Config.PollInterval <= 0 {
		d.Config.PollInterval = DefaultPollInterval
	}
}

// Run implements pipeline.Step.
func (d *Downloader) Run(ctx context.Context) error {
	d.init()

	records, err := d.Store.LoadRecords()
	if err != nil {
		return err
	}
	d.Metrics.RecordsFetched.Set(float64(len(records)))

	order := sample(len(records), d.Config.Sample)
	d.Logger.Info("starting PDF download, this may take a while for each PDF", "records", len(order), "of", len(records))

	failures := 0
	for n, i := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := &records[i]

		if r.PDF {
			d.Logger.Debug("PDF already downloaded, skipping", "identifier", r.Identifier)
			d.Metrics.SkippedRecords.WithLabelValues(metrics.ReasonDownloaded).Inc()
			continue
		}
		if r.DOI == "" {
			d.Logger.Warn("no DOI in record, skipping", "title", r.Title)
			d.Metrics.SkippedRecords.WithLabelValues(metrics.ReasonNoDOI).Inc()
			continue
		}
		if r.Identifier == "" {
			d.Logger.Warn("no identifier in record, skipping", "doi", r.DOI)
			d.Metrics.SkippedRecords.WithLabelValues(metrics.ReasonNoIdentifier).Inc()
			continue
		}

		desc, err := d.Mapper.PDFURL(ctx, r.DOI)
		if errors.Is(err, mapper.ErrPDFURLNotFound) {
			failures++
			d.Metrics.PDFURLNotFound.Inc()
			d.Logger.Warn("no PDF URL found, skipping; if this reoccurs, check that you have access to this publication",
				"doi", r.DOI, "error", err, "consecutive", failures)
			if failures > maxConsecutiveFailures {
				return fmt.Errorf("%w: %d in a row, last for DOI %s", ErrTooManyFailures, failures, r.DOI)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("finding PDF for DOI %s: %w", r.DOI, err)
		}
		failures = 0
		if desc.Resolved != "" {
			r.ResolvedDOI = desc.Resolved
		}

		dest := d.Layout.PDFPath(r.Identifier)
		if desc.ViaBrowser() {
			err = d.fetchViaBrowser(ctx, desc, dest)
		} else {
			err = d.fetch(ctx, desc.URL, dest)
		}
		if err != nil {
			return fmt.Errorf("downloading PDF of %s: %w", r.Identifier, err)
		}
		d.logPages(dest)

		if err := store.AppendManifest(d.Layout.ListFile(), d.Layout.ManifestEntry(r.Identifier)); err != nil {
			return err
		}
		r.PDF = true
		if err := d.Store.SaveRecords(records); err != nil {
			return err
		}
		d.Metrics.PDFsDownloaded.Inc()
		d.Logger.Info("stored PDF", "identifier", r.Identifier, "progress", fmt.Sprintf("%d/%d", n+1, len(order)))

		if err := d.courtesyWait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// fetch downloads url to dest. Anything but a 2xx response carrying PDF
// data is an error.
func (d *Downloader) fetch(ctx context.Context, url, dest string) error {
	if err := d.Throttle.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", d.Config.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	d.Logger.Debug("GET request", "url", url)
	resp, err := httputil.DoWithRetry(ctx, d.Client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return err
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/pdf") {
		return fmt.Errorf("%w: %s answered with content type %q; your IP may lack access, open the URL manually to check",
			ErrAccessDenied, url, ct)
	}

	body := &countingReader{r: resp.Body}
	if err := store.WriteFileAtomic(dest, body); err != nil {
		return err
	}
	d.Metrics.BytesDownloaded.Add(float64(body.n))
	d.Logger.Debug("wrote PDF", "file", dest, "bytes", body.n)
	return nil
}

// logPages logs the page count of a stored PDF. Unreadable files are
// reported but kept.
func (d *Downloader) logPages(path string) {
	pages, err := verify.PageCount(path)
	if err != nil {
		d.Logger.Warn("stored file is not a readable PDF", "file", path, "error", err)
		return
	}
	d.Logger.Debug("PDF pages", "file", path, "pages", pages)
}

// courtesyWait pauses for a random duration in [maxWait/4, maxWait].
func (d *Downloader) courtesyWait(ctx context.Context) error {
	maxWait := max(d.Config.MaxWait, minMaxWait)
	lo := maxWait / 4
	wait := lo + rand.N(maxWait-lo+1)
	d.Logger.Debug("waiting before next download", "wait", wait)
	return d.Sleep(ctx, wait)
}

// sample returns the indices to process: all of them in order when size
// is negative, otherwise a random selection of at most size.
func sample(n, size int) []int {
	if size < 0 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	return rand.Perm(n)[:min(size, n)]
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
