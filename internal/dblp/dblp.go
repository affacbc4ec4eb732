// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dblp retrieves publication metadata for a venue from the dblp
// publication search API and normalizes it into corpus records.
package dblp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/litcorpus/internal/httputil"
	"github.com/pdiddy/litcorpus/pkg/types"
)

// apiBase is the dblp publication search endpoint. Declared as a var so
// tests can substitute an httptest server.
var apiBase = "https://dblp.org/search/publ/api"

// ErrNoEntriesReceived is returned when the index yields no usable records
// for the requested target.
var ErrNoEntriesReceived = errors.New("no entries received")

const (
	// DefaultPageSize is the largest page dblp serves.
	DefaultPageSize = 1000

	// DefaultPageDelay is the courtesy delay between page requests.
	DefaultPageDelay = 1 * time.Second
)

// dblp search API JSON structures. Counts arrive as strings.
type searchResponse struct {
	Result struct {
		Hits hitList `json:"hits"`
	} `json:"result"`
}

type hitList struct {
	Total string `json:"@total"`
	Sent  string `json:"@sent"`
	Hit   []hit  `json:"hit"`
}

type hit struct {
	Info hitInfo `json:"info"`
}

type hitInfo struct {
	Authors *authorList `json:"authors"`
	Title   string      `json:"title"`
	Volume  string      `json:"volume"`
	Number  string      `json:"number"`
	Pages   string      `json:"pages"`
	Year    string      `json:"year"`
	Type    string      `json:"type"`
	DOI     string      `json:"doi"`
}

// authorList holds the "author" field, which is a single object for
// one-author papers and an array otherwise.
type authorList struct {
	Author json.RawMessage `json:"author"`
}

type authorEntry struct {
	Text string `json:"text"`
}

// Fetcher downloads and normalizes dblp metadata.
type Fetcher struct {
	client *http.Client
	cfg    types.FetchConfig
	logger *slog.Logger
}

// NewFetcher returns a Fetcher. A nil client is replaced by one with
// cfg.Timeout. A zero PageSize falls back to DefaultPageSize; a zero
// PageDelay sends pages back to back.
func NewFetcher(client *http.Client, cfg types.FetchConfig, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = httputil.NewClient(cfg.Timeout)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, cfg: cfg, logger: logger}
}

// Fetch retrieves all records of venue for the given year or volume number.
// The venue descriptor is validated before any request is sent.
func (f *Fetcher) Fetch(ctx context.Context, venue types.Venue, number string, grouping types.Grouping) ([]types.Record, error) {
	src, err := venue.DBLP()
	if err != nil {
		return nil, err
	}

	// dblp's stream API cannot tell the ICSE technical track apart from
	// co-located events, so the year is treated as a volume number.
	if src.Acronym == "icse" && grouping == types.GroupByYear {
		f.logger.Warn("using volume grouping instead to download the ICSE technical track")
		grouping = types.GroupByVolume
	}

	f.logger.Debug("downloading metadata", "venue", venue.Name, "number", number, "grouping", grouping)

	var hits []hit
	switch grouping {
	case types.GroupByYear:
		hits, err = f.fetchYear(ctx, src, number)
	case types.GroupByVolume:
		hits, err = f.fetchVolume(ctx, src, number)
	default:
		return nil, fmt.Errorf("unknown grouping %q (want year or volume)", grouping)
	}
	if err != nil {
		return nil, err
	}

	records := normalize(hits, venue, f.logger)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: none of the %d entries for %s %s has a DOI and authors", ErrNoEntriesReceived, len(hits), grouping, number)
	}
	f.logger.Info("metadata received", "records", len(records), "dropped", len(hits)-len(records))
	return records, nil
}

// fetchVolume downloads the table of contents of one volume in a single query.
func (f *Fetcher) fetchVolume(ctx context.Context, src types.DBLPSource, volume string) ([]hit, error) {
	q := fmt.Sprintf("toc:db/%s/%s/%s%s.bht:", src.Type, src.Acronym, src.Acronym, volume)
	hits, err := f.getPage(ctx, q, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching volume %s: %w", volume, err)
	}
	total, _ := strconv.Atoi(hits.Total)
	if len(hits.Hit) == 0 {
		return nil, fmt.Errorf("%w: volume %s of %s/%s returned 0 of %d entries; check the venue 'acronym' and that the volume exists",
			ErrNoEntriesReceived, volume, src.Type, src.Acronym, total)
	}
	f.logger.Debug("received entries for volume", "volume", volume, "entries", len(hits.Hit))
	return hits.Hit, nil
}

// fetchYear pages through the whole venue stream and keeps the entries of
// year. Pages are assumed to arrive newest first, which allows stopping as
// soon as a page reaches back past the target year.
func (f *Fetcher) fetchYear(ctx context.Context, src types.DBLPSource, year string) ([]hit, error) {
	target, err := strconv.Atoi(year)
	if err != nil {
		return nil, fmt.Errorf("year %q is not a number: %w", year, err)
	}

	q := fmt.Sprintf("stream:streams/%s/%s:", src.Type, src.Acronym)
	var entries []hit
	received := 0
	order := orderCheck{logger: f.logger}

	for offset := 0; ; offset += f.cfg.PageSize {
		if offset > 0 {
			if err := sleep(ctx, f.cfg.PageDelay); err != nil {
				return nil, err
			}
		}

		page, err := f.getPage(ctx, q, offset)
		if err != nil {
			return nil, fmt.Errorf("fetching %s/%s at offset %d: %w", src.Type, src.Acronym, offset, err)
		}
		sent, _ := strconv.Atoi(page.Sent)
		total, _ := strconv.Atoi(page.Total)
		received += sent
		f.logger.Debug("received entries", "received", received, "total", total)

		if sent == 0 {
			f.logger.Warn("no entries received; dblp computes at most 10000 entries per query, download a specific volume for older years")
			break
		}
		entries = append(entries, page.Hit...)
		order.observe(page.Hit)

		if received >= total {
			f.logger.Debug("received all entries")
			break
		}
		if oldest, ok := oldestYear(page.Hit); ok && oldest < target {
			f.logger.Debug("page reaches past target year, stopping", "oldest", oldest, "target", target)
			break
		}
		f.logger.Debug("getting next batch", "left", total-received)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: the stream %s/%s returned no records at all; check the venue 'type' and 'acronym'",
			ErrNoEntriesReceived, src.Type, src.Acronym)
	}

	var yearEntries []hit
	for _, e := range entries {
		if e.Info.Year == year {
			yearEntries = append(yearEntries, e)
		}
	}
	f.logger.Debug("filtered entries by year", "year", year, "entries", len(yearEntries), "received", len(entries))
	if len(yearEntries) == 0 {
		return nil, fmt.Errorf("%w: no entries found for year %s in %s/%s; the year may not be published yet, or use volume grouping",
			ErrNoEntriesReceived, year, src.Type, src.Acronym)
	}
	return yearEntries, nil
}

// getPage sends one search query and decodes the hit list.
func (f *Fetcher) getPage(ctx context.Context, q string, offset int) (hitList, error) {
	params := url.Values{
		"q":      {q},
		"h":      {strconv.Itoa(f.cfg.PageSize)},
		"f":      {strconv.Itoa(offset)},
		"format": {"json"},
	}
	reqURL := apiBase + "?" + params.Encode()
	f.logger.Debug("GET request", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return hitList{}, fmt.Errorf("creating request: %w", err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, f.client, req, 0)
	if err != nil {
		return hitList{}, fmt.Errorf("dblp API request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return hitList{}, err
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return hitList{}, fmt.Errorf("parsing dblp response: %w", err)
	}
	return sr.Result.Hits, nil
}

// oldestYear returns the smallest parseable year on a page.
func oldestYear(hits []hit) (int, bool) {
	oldest, found := 0, false
	for _, h := range hits {
		y, err := strconv.Atoi(h.Info.Year)
		if err != nil {
			continue
		}
		if !found || y < oldest {
			oldest, found = y, true
		}
	}
	return oldest, found
}

// orderCheck warns once when the stream is not ordered newest first, since
// the early exit in fetchYear depends on that ordering.
type orderCheck struct {
	logger *slog.Logger
	last   int
	warned bool
}

func (o *orderCheck) observe(hits []hit) {
	for _, h := range hits {
		y, err := strconv.Atoi(h.Info.Year)
		if err != nil {
			continue
		}
		if o.last != 0 && y > o.last && !o.warned {
			o.logger.Warn("dblp stream is not ordered newest first; year filtering may miss entries", "year", y, "after", o.last)
			o.warned = true
		}
		o.last = y
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// normalize maps raw hits into records. Entries without authors or without
// a DOI are dropped with a warning. DOIs are lower-cased and the numeric
// disambiguation suffix dblp appends to author names ("Max Mueller 0001")
// is stripped.
func normalize(hits []hit, venue types.Venue, logger *slog.Logger) []types.Record {
	records := make([]types.Record, 0, len(hits))
	for _, h := range hits {
		info := h.Info
		if info.DOI == "" {
			logger.Warn("dropped entry without DOI", "title", info.Title)
			continue
		}
		authors, err := parseAuthors(info.Authors)
		if err != nil || len(authors) == 0 {
			logger.Warn("dropped entry without author", "doi", info.DOI, "title", info.Title)
			continue
		}
		r := types.Record{
			Authors:   authors,
			DOI:       strings.ToLower(info.DOI),
			Number:    info.Number,
			Pages:     info.Pages,
			Title:     info.Title,
			Type:      info.Type,
			Venue:     venue.Name,
			VenueType: string(venue.Type),
			Volume:    info.Volume,
			Year:      info.Year,
		}
		logger.Debug("created entry", "doi", r.DOI)
		records = append(records, r)
	}
	return records
}

func parseAuthors(list *authorList) ([]string, error) {
	if list == nil || len(list.Author) == 0 {
		return nil, nil
	}
	var many []authorEntry
	if err := json.Unmarshal(list.Author, &many); err != nil {
		var one authorEntry
		if err := json.Unmarshal(list.Author, &one); err != nil {
			return nil, fmt.Errorf("parsing author field: %w", err)
		}
		many = []authorEntry{one}
	}
	names := make([]string, 0, len(many))
	for _, a := range many {
		name := strings.Trim(a.Text, "0123456789 ")
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
