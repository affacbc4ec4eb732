// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibtex renders corpus records as a BibTeX database keyed by the
// record identifiers.
package bibtex

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/pdiddy/litcorpus/internal/store"
	"github.com/pdiddy/litcorpus/pkg/types"
)

// field is one BibTeX field. Fields are written in alphabetical order.
type field struct {
	name  string
	value string
}

// Entry renders one record. Empty optional fields are omitted; volume and
// number are empty for conference papers.
func Entry(r types.Record) string {
	entryType := "article"
	if r.VenueType == string(types.VenueConference) {
		entryType = "inproceedings"
	}

	fields := []field{
		{"author", strings.Join(r.Authors, " and ")},
		{"doi", r.DOI},
		{"number", r.Number},
		{"pages", r.Pages},
		{"title", escapeLatex(r.Title)},
		{"type", r.Type},
		{"venue", escapeLatex(r.Venue)},
		{"volume", r.Volume},
		{"year", r.Year},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", entryType, r.Identifier)
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", f.name, f.value)
	}
	b.WriteString("}\n")
	return b.String()
}

// Render renders all named records sorted by identifier. Records without
// an identifier cannot be cited and are left out.
func Render(records []types.Record) string {
	named := make([]types.Record, 0, len(records))
	for _, r := range records {
		if r.Identifier != "" {
			named = append(named, r)
		}
	}
	sort.SliceStable(named, func(i, j int) bool { return named[i].Identifier < named[j].Identifier })

	entries := make([]string, 0, len(named))
	for _, r := range named {
		entries = append(entries, Entry(r))
	}
	return strings.Join(entries, "\n")
}

func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}

// RecordLoader loads the corpus records.
type RecordLoader interface {
	LoadRecords() ([]types.Record, error)
}

// Step is the pipeline step writing the BibTeX file.
type Step struct {
	Store  RecordLoader
	Path   string
	Logger *slog.Logger
}

// Name implements pipeline.Step.
func (s *Step) Name() string { return "bibtex" }

// Run implements pipeline.Step.
func (s *Step) Run(_ context.Context) error {
	records, err := s.Store.LoadRecords()
	if err != nil {
		return err
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, r := range records {
		if r.Identifier == "" {
			logger.Warn("record has no identifier, leaving it out of the BibTeX file", "doi", r.DOI)
		}
	}
	if err := store.WriteFileAtomic(s.Path, strings.NewReader(Render(records))); err != nil {
		return fmt.Errorf("writing BibTeX file: %w", err)
	}
	logger.Debug("wrote BibTeX file", "path", s.Path, "records", len(records))
	return nil
}
