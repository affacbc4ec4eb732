// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package names

import (
	"context"
	"log/slog"

	"github.com/pdiddy/litcorpus/pkg/types"
)

// RecordStore loads and saves the corpus records.
type RecordStore interface {
	LoadRecords() ([]types.Record, error)
	SaveRecords(records []types.Record) error
}

// Step is the pipeline step that names every record. All names are
// regenerated on each run of the step; only the prior corpora in
// ExistingFolders constrain the namespace. Relative folders are looked up
// under Root first.
type Step struct {
	Store           RecordStore
	Root            string
	ExistingFolders []string
	LongName        bool
	Logger          *slog.Logger
}

// Name implements pipeline.Step.
func (s *Step) Name() string { return "names" }

// Run implements pipeline.Step.
func (s *Step) Run(_ context.Context) error {
	existing, err := LoadExisting(s.Root, s.ExistingFolders, s.Logger)
	if err != nil {
		return err
	}
	records, err := s.Store.LoadRecords()
	if err != nil {
		return err
	}
	if err := NewGenerator(existing, s.LongName, s.Logger).Assign(records); err != nil {
		return err
	}
	return s.Store.SaveRecords(records)
}
