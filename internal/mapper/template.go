// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapper

import (
	"context"
	"log/slog"
)

// Publisher PDF endpoints addressed directly by DOI.
var (
	acmPDFBase      = "https://dl.acm.org/doi/pdf/"
	springerPDFBase = "https://link.springer.com/content/pdf/"
)

// AcmMapper serves DOIs published in the ACM Digital Library.
type AcmMapper struct {
	logger *slog.Logger
}

// PDFURL implements Mapper.
func (m *AcmMapper) PDFURL(_ context.Context, doi string) (Descriptor, error) {
	if err := checkDOI(doi); err != nil {
		return Descriptor{}, err
	}
	u := acmPDFBase + doi
	m.logger.Debug("built PDF URL", "url", u)
	return Descriptor{URL: u}, nil
}

// SpringerMapper serves DOIs published on Springer Link.
type SpringerMapper struct {
	logger *slog.Logger
}

// PDFURL implements Mapper.
func (m *SpringerMapper) PDFURL(_ context.Context, doi string) (Descriptor, error) {
	if err := checkDOI(doi); err != nil {
		return Descriptor{}, err
	}
	u := springerPDFBase + doi + ".pdf"
	m.logger.Debug("built PDF URL", "url", u)
	return Descriptor{URL: u}, nil
}
