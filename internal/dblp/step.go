// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dblp

import (
	"context"
	"fmt"

	"github.com/pdiddy/litcorpus/pkg/types"
)

// RecordSaver persists the fetched records.
type RecordSaver interface {
	SaveRecords(records []types.Record) error
}

// Step is the pipeline step that downloads the metadata of one venue
// target and replaces the stored record list with it.
type Step struct {
	Fetcher  *Fetcher
	Store    RecordSaver
	Venue    types.Venue
	Number   string
	Grouping types.Grouping
}

// Name implements pipeline.Step.
func (s *Step) Name() string { return "fetch" }

// Run implements pipeline.Step.
func (s *Step) Run(ctx context.Context) error {
	records, err := s.Fetcher.Fetch(ctx, s.Venue, s.Number, s.Grouping)
	if err != nil {
		return err
	}
	if err := s.Store.SaveRecords(records); err != nil {
		return fmt.Errorf("storing dblp metadata: %w", err)
	}
	return nil
}
