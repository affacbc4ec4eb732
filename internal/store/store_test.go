// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litcorpus/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "ICSE-2024-dblp.json"), nil)
	created, err := s.Init(types.RunConfig{Target: "ICSE-2024", Grouping: types.GroupByYear, Mapper: "Acm"})
	require.NoError(t, err)
	require.True(t, created)
	return s
}

func TestInitCreatesEmptyDocument(t *testing.T) {
	s := newTestStore(t)

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.CorpusMetadata)
	assert.NotNil(t, doc.CorpusMetadata)
	assert.Empty(t, doc.State)
	require.NotNil(t, doc.RunConfiguration)
	assert.Equal(t, "ICSE-2024", doc.RunConfiguration.Target)
}

func TestInitKeepsExistingDocument(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveState(map[string]bool{"fetch": true}))

	created, err := s.Init(types.RunConfig{Target: "other"})
	require.NoError(t, err)
	assert.False(t, created)

	state, err := s.LoadState()
	require.NoError(t, err)
	assert.True(t, state["fetch"])
}

func TestRecordsRoundTripKeepsOrder(t *testing.T) {
	s := newTestStore(t)
	records := []types.Record{
		{DOI: "10.1/b", Title: "B", Authors: []string{"Jane Doe"}, Year: "2024"},
		{DOI: "10.1/a", Title: "A", Authors: []string{"John Roe"}, Year: "2024", PDF: true},
	}
	require.NoError(t, s.SaveRecords(records))

	got, err := s.LoadRecords()
	require.NoError(t, err)
	assert.Equal(t, records, got)

	// Saving records must not clobber state.
	require.NoError(t, s.SaveState(map[string]bool{"names": true}))
	require.NoError(t, s.SaveRecords(got))
	state, err := s.LoadState()
	require.NoError(t, err)
	assert.True(t, state["names"])
}

func TestDocumentKeysAreSortedAndUnescaped(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveRecords([]types.Record{{DOI: "10.1/x", Title: "Less <than> & more", Authors: []string{"Zoë Ünal"}, Year: "2024"}}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "Less <than> & more")
	assert.Contains(t, text, "Zoë Ünal")
	corpus := strings.Index(text, `"corpus_metadata"`)
	runCfg := strings.Index(text, `"run_configuration"`)
	state := strings.Index(text, `"state"`)
	assert.True(t, corpus < runCfg && runCfg < state, "top-level keys must be sorted")
	assert.True(t, strings.Index(text, `"authors"`) < strings.Index(text, `"doi"`))
}

func TestLoadStateMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"corpus_metadata": []}`), 0o644))

	_, err := New(path, nil).LoadState()
	assert.ErrorIs(t, err, ErrNoState)
}

func TestLoadRecordsMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"state": {}}`), 0o644))

	_, err := New(path, nil).LoadRecords()
	assert.ErrorIs(t, err, ErrNoCorpusMetadata)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.json"), nil).Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestManifestAppendAndDedup(t *testing.T) {
	list := filepath.Join(t.TempDir(), "ICSE-2024.list")
	for _, e := range []string{"ICSE-2024/Doe24.pdf", "ICSE-2024/Roe24a.pdf", "ICSE-2024/Doe24.pdf"} {
		require.NoError(t, AppendManifest(list, e))
	}

	entries, err := ReadManifest(list)
	require.NoError(t, err)
	assert.Equal(t, []string{"ICSE-2024/Doe24.pdf", "ICSE-2024/Roe24a.pdf"}, entries)
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "none.list"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIdentifierFromEntry(t *testing.T) {
	tests := []struct {
		entry string
		want  string
	}{
		{"ICSE-2023/Doe23.pdf", "Doe23"},
		{"TSE-48/DoeRoeFox22a-mining.pdf", "DoeRoeFox22a-mining"},
		{"Doe21.pdf", "Doe21"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IdentifierFromEntry(tt.entry), tt.entry)
	}
}

func TestLayout(t *testing.T) {
	l := NewLayout("corpora", "ICSE-2024")
	assert.Equal(t, filepath.Join("corpora", "ICSE-2024"), l.TargetDir())
	assert.Equal(t, filepath.Join("corpora", "ICSE-2024", "metadata", "ICSE-2024-dblp.json"), l.MetadataFile())
	assert.Equal(t, filepath.Join("corpora", "ICSE-2024", "metadata", "ICSE-2024-dblp.bib"), l.BibFile())
	assert.Equal(t, filepath.Join("corpora", "ICSE-2024", "metadata", "ICSE-2024.list"), l.ListFile())
	assert.Equal(t, filepath.Join("corpora", "ICSE-2024", "Doe24.pdf"), l.PDFPath("Doe24"))
	assert.Equal(t, "ICSE-2024/Doe24.pdf", l.ManifestEntry("Doe24"))
}
