// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mapper turns a DOI into the location of the publication's PDF.
// Each publisher needs its own strategy; strategies are looked up by name
// at startup so that a misspelled name fails before any work is done.
package mapper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/litcorpus/internal/httputil"
)

var (
	// ErrPDFURLNotFound is returned when a mapper cannot locate the PDF of
	// a DOI. It is a per-record failure; callers count it.
	ErrPDFURLNotFound = errors.New("PDF URL not found")

	// ErrUnknownMapper is returned by New for an unregistered name.
	ErrUnknownMapper = errors.New("unknown mapper")
)

// nameSuffix is appended to a short mapper name to form its registered name.
const nameSuffix = "Mapper"

// doiPattern matches DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/[^\s]+$`)

// Descriptor tells the downloader where to fetch a PDF. A non-empty
// Filename means the publisher only serves the file to a real browser:
// the URL is opened in the system browser and Filename is the name the
// browser saves it under. Resolved is the landing page the DOI redirected
// to, empty for mappers that build the URL from the DOI alone.
type Descriptor struct {
	URL      string
	Filename string
	Resolved string
}

// ViaBrowser reports whether the download must go through the browser.
func (d Descriptor) ViaBrowser() bool { return d.Filename != "" }

// Mapper maps a DOI to a PDF download descriptor.
type Mapper interface {
	PDFURL(ctx context.Context, doi string) (Descriptor, error)
}

// Deps are the collaborators handed to every mapper.
type Deps struct {
	// DOIBase is the DOI resolver prefix. Empty means https://doi.org/.
	DOIBase   string
	Client    *http.Client
	UserAgent string
	Throttle  *httputil.Throttle
	Logger    *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.DOIBase == "" {
		d.DOIBase = doiBase
	}
	if d.Client == nil {
		d.Client = http.DefaultClient
	}
	if d.UserAgent == "" {
		d.UserAgent = httputil.DefaultUserAgent
	}
	if d.Throttle == nil {
		d.Throttle = httputil.NewThrottle(0)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// registry maps registered names to constructors.
var registry = map[string]func(Deps) Mapper{
	"AcmMapper":                func(d Deps) Mapper { return &AcmMapper{logger: d.Logger} },
	"SpringerMapper":           func(d Deps) Mapper { return &SpringerMapper{logger: d.Logger} },
	"ElsevierMapper":           func(d Deps) Mapper { return &ElsevierMapper{resolver: newResolver(d)} },
	"HtmlParserMapper":         func(d Deps) Mapper { return &HtmlParserMapper{resolver: newResolver(d)} },
	"ComputerOrgConfMapper":    func(d Deps) Mapper { return &ComputerOrgConfMapper{resolver: newResolver(d)} },
	"ComputerOrgJournalMapper": func(d Deps) Mapper { return &ComputerOrgJournalMapper{resolver: newResolver(d)} },
}

// New returns the mapper registered as name+"Mapper". Both the short name
// ("Acm") and the registered name ("AcmMapper") are accepted.
func New(name string, deps Deps) (Mapper, error) {
	full := strings.TrimSuffix(name, nameSuffix) + nameSuffix
	ctor, ok := registry[full]
	if !ok {
		return nil, fmt.Errorf("%w: no mapper %s for name %q (known: %s)",
			ErrUnknownMapper, full, name, strings.Join(Names(), ", "))
	}
	deps = deps.withDefaults()
	deps.Logger.Debug("selected mapper", "mapper", full)
	return ctor(deps), nil
}

// Names returns the short names of all registered mappers, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for full := range registry {
		names = append(names, strings.TrimSuffix(full, nameSuffix))
	}
	sort.Strings(names)
	return names
}

func checkDOI(doi string) error {
	if !doiPattern.MatchString(doi) {
		return fmt.Errorf("%w: %q is not a DOI", ErrPDFURLNotFound, doi)
	}
	return nil
}
