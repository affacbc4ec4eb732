// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Endpoints derived from resolved landing pages.
var (
	sciencedirectPDFBase   = "https://www.sciencedirect.com/science/article/pii/"
	computerOrgConfBase    = "https://www.computer.org/csdl/pds/api/csdl/proceedings/download-article/"
	computerOrgJournalBase = "https://www.computer.org/csdl/api/v1/periodical/trans/"
)

// pdfLinkPattern matches hrefs containing a ".pdf" token.
var pdfLinkPattern = regexp.MustCompile(`\b\.pdf\b`)

// ElsevierMapper serves DOIs resolving to ScienceDirect. ScienceDirect
// refuses scripted downloads, so the PDF is fetched through the browser.
type ElsevierMapper struct {
	resolver *resolver
}

// PDFURL implements Mapper.
func (m *ElsevierMapper) PDFURL(ctx context.Context, doi string) (Descriptor, error) {
	if err := checkDOI(doi); err != nil {
		return Descriptor{}, err
	}
	u, err := m.resolver.resolveDOI(ctx, doi)
	if err != nil {
		return Descriptor{}, err
	}
	pii := segmentAfter(u.Path, "/pii/")
	if pii == "" {
		return Descriptor{}, fmt.Errorf("%w: %s is not a ScienceDirect article URL", ErrPDFURLNotFound, u)
	}
	d := Descriptor{
		URL:      sciencedirectPDFBase + pii + "/pdfft?isDTMRedir=true&download=true",
		Filename: "1-s2.0-" + pii + "-main.pdf",
		Resolved: u.String(),
	}
	m.resolver.logger.Debug("built PDF URL", "url", d.URL, "filename", d.Filename)
	return d, nil
}

// HtmlParserMapper serves publishers whose landing page links the PDF
// directly: the first anchor with ".pdf" in its href wins.
type HtmlParserMapper struct {
	resolver *resolver
}

// PDFURL implements Mapper.
func (m *HtmlParserMapper) PDFURL(ctx context.Context, doi string) (Descriptor, error) {
	if err := checkDOI(doi); err != nil {
		return Descriptor{}, err
	}
	resp, err := m.resolver.getDOI(ctx, doi)
	if err != nil {
		return Descriptor{}, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Descriptor{}, fmt.Errorf("parsing landing page of %s: %w", doi, err)
	}

	base := resp.Request.URL
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if !pdfLinkPattern.MatchString(href) {
			return true
		}
		ref, err := base.Parse(href)
		if err != nil {
			return true
		}
		found = ref.String()
		return false
	})
	if found == "" {
		return Descriptor{}, fmt.Errorf("%w: no PDF link on %s", ErrPDFURLNotFound, base)
	}
	m.resolver.logger.Debug("found PDF URL", "url", found)
	return Descriptor{URL: found, Resolved: base.String()}, nil
}

// ComputerOrgConfMapper serves IEEE Computer Society conference papers.
type ComputerOrgConfMapper struct {
	resolver *resolver
}

// PDFURL implements Mapper.
func (m *ComputerOrgConfMapper) PDFURL(ctx context.Context, doi string) (Descriptor, error) {
	if err := checkDOI(doi); err != nil {
		return Descriptor{}, err
	}
	u, err := m.resolver.resolve(ctx, ieeeCSBase+doi)
	if err != nil {
		return Descriptor{}, err
	}
	id := lastSegment(u.Path)
	if !strings.Contains(u.Path, "/proceedings-article/") || id == "" {
		return Descriptor{}, fmt.Errorf("%w: URL %s does not match the proceedings article pattern", ErrPDFURLNotFound, u)
	}
	return Descriptor{URL: computerOrgConfBase + id + "/pdf", Resolved: u.String()}, nil
}

// ComputerOrgJournalMapper serves IEEE Computer Society journal papers.
type ComputerOrgJournalMapper struct {
	resolver *resolver
}

// PDFURL implements Mapper.
func (m *ComputerOrgJournalMapper) PDFURL(ctx context.Context, doi string) (Descriptor, error) {
	if err := checkDOI(doi); err != nil {
		return Descriptor{}, err
	}
	u, err := m.resolver.resolve(ctx, ieeeCSBase+doi)
	if err != nil {
		return Descriptor{}, err
	}
	_, ids, ok := strings.Cut(u.Path, "/journal/")
	ids = strings.Trim(ids, "/")
	if !ok || ids == "" {
		return Descriptor{}, fmt.Errorf("%w: URL %s does not match the journal article pattern", ErrPDFURLNotFound, u)
	}
	return Descriptor{URL: computerOrgJournalBase + ids + "/download-article/pdf", Resolved: u.String()}, nil
}
