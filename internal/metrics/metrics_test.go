// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStep struct{ err error }

func (s stubStep) Name() string              { return "stub" }
func (s stubStep) Run(context.Context) error { return s.err }

func TestTimedStep(t *testing.T) {
	m := New()

	ok := m.Timed(stubStep{})
	assert.Equal(t, "stub", ok.Name())
	require.NoError(t, ok.Run(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepsCompleted))

	boom := errors.New("boom")
	err := m.Timed(stubStep{err: boom}).Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepsCompleted))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StepDuration))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.PDFsDownloaded.Add(3)
	m.SkippedRecords.WithLabelValues(ReasonNoDOI).Inc()
	m.RecordsFetched.Set(42)

	path := filepath.Join(t.TempDir(), "ICSE-2024.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "litcorpus_pdfs_downloaded_total 3")
	assert.Contains(t, text, `litcorpus_records_skipped_total{reason="no_doi"} 1`)
	assert.Contains(t, text, "litcorpus_records 42")
}

func TestWriteTextfileBadDir(t *testing.T) {
	err := New().WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
