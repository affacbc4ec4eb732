// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package names derives short, human-readable identifiers for corpus
// records from their authors and year, for example "Doe21" or
// "DoeRoeFox20a-mining". Identifiers never collide with names already used
// by earlier corpora or by earlier records of the same batch.
package names

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/pdiddy/litcorpus/pkg/types"
)

var (
	// ErrNoFreeName is returned when the bare candidate and all 26 letter
	// suffixes are taken.
	ErrNoFreeName = errors.New("no free name available")

	// ErrIncompleteRecord is returned for records lacking authors or a year.
	ErrIncompleteRecord = errors.New("record lacks authors or year")
)

//go:embed stopwords.txt
var stopwordsText string

// maxAuthors is the number of leading authors contributing to a name.
const maxAuthors = 3

// Set is a set of identifiers.
type Set map[string]struct{}

// Add inserts name.
func (s Set) Add(name string) { s[name] = struct{}{} }

// Contains reports whether name is in the set.
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Generator assigns identifiers. It owns its name set: every generated
// name is added so that later calls never return it again.
type Generator struct {
	taken     Set
	keyword   bool
	stopwords map[string]bool
	logger    *slog.Logger
}

// NewGenerator returns a Generator seeded with existing names. When
// appendKeyword is set, identifiers end in "-<first non-stopword title word>".
func NewGenerator(existing Set, appendKeyword bool, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	taken := make(Set, len(existing))
	for n := range existing {
		taken.Add(n)
	}
	return &Generator{
		taken:     taken,
		keyword:   appendKeyword,
		stopwords: loadStopwords(),
		logger:    logger,
	}
}

func loadStopwords() map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Split(stopwordsText, "\n") {
		if w = strings.TrimSpace(w); w != "" {
			words[w] = true
		}
	}
	return words
}

// Generate returns a fresh identifier for r and records it as taken.
func (g *Generator) Generate(r types.Record) (string, error) {
	if len(r.Authors) == 0 || len(r.Year) < 2 {
		return "", fmt.Errorf("%w: doi %q", ErrIncompleteRecord, r.DOI)
	}

	base := authorPart(r.Authors) + r.Year[len(r.Year)-2:]
	title := ""
	if g.keyword {
		if kw := g.titleKeyword(r.Title); kw != "" {
			title = "-" + kw
		} else {
			g.logger.Warn("title has no keyword, omitting it from the name", "doi", r.DOI, "title", r.Title)
		}
	}

	for _, suffix := range suffixes() {
		name := base + suffix + title
		if !g.taken.Contains(name) {
			g.taken.Add(name)
			return name, nil
		}
		g.logger.Debug("name not unique, trying next suffix", "name", name)
	}
	return "", fmt.Errorf("%w: %s%s with suffixes a-z", ErrNoFreeName, base, title)
}

// Assign sets the Identifier of every record in place. Incomplete records
// are skipped with a warning and keep an empty identifier.
func (g *Generator) Assign(records []types.Record) error {
	for i := range records {
		name, err := g.Generate(records[i])
		if errors.Is(err, ErrIncompleteRecord) {
			g.logger.Warn("cannot name record, skipping", "doi", records[i].DOI, "error", err)
			records[i].Identifier = ""
			continue
		}
		if err != nil {
			return err
		}
		records[i].Identifier = name
	}
	return nil
}

// suffixes returns "", "a", ..., "z".
func suffixes() []string {
	s := make([]string, 0, 27)
	s = append(s, "")
	for c := 'a'; c <= 'z'; c++ {
		s = append(s, string(c))
	}
	return s
}

// authorPart builds the author prefix: the whole surname for a single
// author, else the first three letters of each of up to three surnames.
// The surname is the last whitespace-separated token, so "van Klaassen"
// gives "Klaassen" and "Mueller-Birn" gives "MuellerBirn".
func authorPart(authors []string) string {
	if len(authors) > maxAuthors {
		authors = authors[:maxAuthors]
	}
	surnames := make([]string, 0, len(authors))
	for _, a := range authors {
		fields := strings.Fields(a)
		if len(fields) == 0 {
			surnames = append(surnames, "")
			continue
		}
		surnames = append(surnames, keepRunes(fields[len(fields)-1], false))
	}
	if len(surnames) == 1 {
		return surnames[0]
	}
	var b strings.Builder
	for _, s := range surnames {
		r := []rune(s)
		if len(r) > 3 {
			r = r[:3]
		}
		b.WriteString(string(r))
	}
	return b.String()
}

// titleKeyword returns the first lower-cased title word that is not a
// stopword, stripped of punctuation except dashes.
func (g *Generator) titleKeyword(title string) string {
	for _, w := range strings.Fields(strings.ToLower(title)) {
		if g.stopwords[w] {
			continue
		}
		if kw := keepRunes(w, true); kw != "" {
			return kw
		}
	}
	return ""
}

// keepRunes drops everything but letters and digits, and dashes when
// dashes is set.
func keepRunes(s string, dashes bool) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || (dashes && r == '-') {
			return r
		}
		return -1
	}, s)
}
