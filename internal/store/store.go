// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the corpus metadata document and the manifest of
// downloaded PDFs. The metadata document is rewritten wholesale on every
// mutation through a temporary file and a rename, so the file on disk is
// always a complete document.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdiddy/litcorpus/pkg/types"
)

var (
	// ErrNoState is returned when the metadata document has no state map.
	ErrNoState = errors.New("metadata file does not contain state")

	// ErrNoCorpusMetadata is returned when the metadata document has no record list.
	ErrNoCorpusMetadata = errors.New("metadata file does not contain corpus metadata")
)

// Document is the on-disk layout of the metadata store. Fields are declared
// in alphabetical JSON order to keep the serialized keys sorted.
type Document struct {
	CorpusMetadata   []types.Record   `json:"corpus_metadata"`
	RunConfiguration *types.RunConfig `json:"run_configuration"`
	State            map[string]bool  `json:"state"`
}

// Store reads and writes the metadata document at a fixed path. It assumes
// a single writer.
type Store struct {
	path   string
	logger *slog.Logger
}

// New returns a Store for the metadata document at path.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the location of the metadata document.
func (s *Store) Path() string { return s.path }

// Init creates the metadata document with the given run configuration, an
// empty state and an empty record list. An existing document is left
// untouched so that a rerun resumes it; created reports which case applied.
func (s *Store) Init(cfg types.RunConfig) (created bool, err error) {
	if _, err := os.Stat(s.path); err == nil {
		s.logger.Info("state file already exists", "path", s.path)
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("checking metadata file: %w", err)
	}

	doc := &Document{
		CorpusMetadata:   []types.Record{},
		RunConfiguration: &cfg,
		State:            map[string]bool{},
	}
	if err := s.write(doc); err != nil {
		return false, err
	}
	s.logger.Info("created new state file", "path", s.path)
	return true, nil
}

// Load reads the whole metadata document.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("loading metadata file: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing metadata file %s: %w", s.path, err)
	}
	return &doc, nil
}

// LoadRecords returns the corpus records in stored order.
func (s *Store) LoadRecords() ([]types.Record, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	if doc.CorpusMetadata == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCorpusMetadata, s.path)
	}
	return doc.CorpusMetadata, nil
}

// SaveRecords replaces the record list and rewrites the document.
func (s *Store) SaveRecords(records []types.Record) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	if records == nil {
		records = []types.Record{}
	}
	doc.CorpusMetadata = records
	if err := s.write(doc); err != nil {
		return fmt.Errorf("saving corpus metadata: %w", err)
	}
	s.logger.Debug("saved corpus metadata", "path", s.path, "records", len(records))
	return nil
}

// LoadState returns the pipeline state map.
func (s *Store) LoadState() (map[string]bool, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	if doc.State == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoState, s.path)
	}
	return doc.State, nil
}

// SaveState replaces the pipeline state map and rewrites the document.
func (s *Store) SaveState(state map[string]bool) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	doc.State = state
	if err := s.write(doc); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	s.logger.Debug("saved state", "path", s.path)
	return nil
}

// write encodes doc as indented UTF-8 JSON and replaces the file through a
// temporary sibling and a rename.
func (s *Store) write(doc *Document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	return WriteFileAtomic(s.path, &buf)
}

// WriteFileAtomic copies r into a temporary sibling of destPath and renames
// it into place, so readers never observe a partial file.
func WriteFileAtomic(destPath string, r io.Reader) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".litcorpus-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, r)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
