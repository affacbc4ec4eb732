// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

const (
	metadataDirName = "metadata"
	metadataSource  = "dblp"
)

// Layout locates the files of one corpus target. A target "ICSE-2024" lives
// in the directory ICSE-2024/ with its bookkeeping under ICSE-2024/metadata/.
type Layout struct {
	Root   string
	Target string
}

// NewLayout returns the layout of target relative to root.
func NewLayout(root, target string) Layout {
	return Layout{Root: root, Target: target}
}

// TargetDir is the directory downloaded PDFs are stored in.
func (l Layout) TargetDir() string {
	return filepath.Join(l.Root, l.Target)
}

// MetadataDir holds the store, manifest, BibTeX and metrics files.
func (l Layout) MetadataDir() string {
	return filepath.Join(l.TargetDir(), metadataDirName)
}

// MetadataFile is the JSON metadata store.
func (l Layout) MetadataFile() string {
	return filepath.Join(l.MetadataDir(), fmt.Sprintf("%s-%s.json", l.Target, metadataSource))
}

// BibFile is the generated BibTeX file.
func (l Layout) BibFile() string {
	return filepath.Join(l.MetadataDir(), fmt.Sprintf("%s-%s.bib", l.Target, metadataSource))
}

// ListFile is the manifest of downloaded PDFs.
func (l Layout) ListFile() string {
	return filepath.Join(l.MetadataDir(), l.Target+".list")
}

// MetricsFile is the Prometheus textfile written at the end of a run.
func (l Layout) MetricsFile() string {
	return filepath.Join(l.MetadataDir(), l.Target+".prom")
}

// PDFPath is the local path of the PDF stored for identifier.
func (l Layout) PDFPath(identifier string) string {
	return filepath.Join(l.TargetDir(), identifier+".pdf")
}

// ManifestEntry is the path written to the manifest for identifier. It is
// relative to the corpus root and always uses forward slashes.
func (l Layout) ManifestEntry(identifier string) string {
	return path.Join(l.Target, identifier+".pdf")
}

// Prepare creates the target and metadata directories if they do not exist.
func (l Layout) Prepare() error {
	if err := os.MkdirAll(l.MetadataDir(), 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", l.MetadataDir(), err)
	}
	return nil
}
