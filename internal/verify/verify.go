// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify checks a finished corpus: every record flagged as
// downloaded has a readable PDF on disk that is listed in the manifest, and
// where the PDF text shows a DOI, it is the record's DOI.
package verify

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pdiddy/litcorpus/internal/store"
	"github.com/pdiddy/litcorpus/pkg/types"
)

// Problem kinds.
const (
	KindMissing       = "missing"
	KindUnreadable    = "unreadable"
	KindDOIMismatch   = "doi_mismatch"
	KindNotInManifest = "not_in_manifest"
	KindNotFlagged    = "not_flagged"
)

// doiTextPattern finds a DOI in running text.
var doiTextPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// doiPages is the number of leading pages searched for a DOI.
const doiPages = 3

// Problem is one inconsistency found in a corpus.
type Problem struct {
	Identifier string
	Kind       string
	Detail     string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s (%s)", p.Identifier, p.Kind, p.Detail)
}

// Report summarizes a verification run.
type Report struct {
	Checked  int
	Pages    int
	Problems []Problem
}

// OK reports whether no problem was found.
func (r Report) OK() bool { return len(r.Problems) == 0 }

// Corpus verifies the corpus described by layout against records.
func Corpus(layout store.Layout, records []types.Record, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var rep Report

	listed := make(map[string]bool)
	entries, err := store.ReadManifest(layout.ListFile())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return rep, err
	}
	for _, e := range entries {
		listed[store.IdentifierFromEntry(e)] = true
	}

	flagged := make(map[string]bool)
	for _, r := range records {
		if !r.PDF || r.Identifier == "" {
			continue
		}
		flagged[r.Identifier] = true
		rep.Checked++
		pages, problems := checkRecord(layout, r, listed, logger)
		rep.Pages += pages
		rep.Problems = append(rep.Problems, problems...)
	}

	for _, e := range entries {
		id := store.IdentifierFromEntry(e)
		if !flagged[id] {
			rep.Problems = append(rep.Problems, Problem{Identifier: id, Kind: KindNotFlagged, Detail: "listed in the manifest but not marked as downloaded"})
		}
	}
	return rep, nil
}

// checkRecord returns the page count of the record's PDF and the problems
// found with it.
func checkRecord(layout store.Layout, r types.Record, listed map[string]bool, logger *slog.Logger) (int, []Problem) {
	var problems []Problem
	path := layout.PDFPath(r.Identifier)

	if !listed[r.Identifier] {
		problems = append(problems, Problem{Identifier: r.Identifier, Kind: KindNotInManifest, Detail: layout.ListFile()})
	}
	if _, err := os.Stat(path); err != nil {
		return 0, append(problems, Problem{Identifier: r.Identifier, Kind: KindMissing, Detail: path})
	}

	pages, err := PageCount(path)
	if err != nil {
		return 0, append(problems, Problem{Identifier: r.Identifier, Kind: KindUnreadable, Detail: err.Error()})
	}

	found, err := FindDOI(path)
	if err != nil {
		logger.Debug("cannot extract text", "file", path, "error", err)
		return pages, problems
	}
	if found != "" && !strings.EqualFold(found, r.DOI) {
		problems = append(problems, Problem{Identifier: r.Identifier, Kind: KindDOIMismatch, Detail: fmt.Sprintf("PDF shows %s, record has %s", found, r.DOI)})
	}
	logger.Debug("verified", "file", path, "pages", pages, "doi", found)
	return pages, problems
}

// PageCount returns the number of pages of the PDF at path.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading PDF %s: %w", path, err)
	}
	return n, nil
}

// FindDOI returns the first DOI printed on the leading pages of the PDF at
// path, or "" if there is none.
func FindDOI(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	n := min(r.NumPage(), doiPages)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if doi := doiTextPattern.FindString(text); doi != "" {
			return strings.TrimRight(doi, ".,;)"), nil
		}
	}
	return "", nil
}
