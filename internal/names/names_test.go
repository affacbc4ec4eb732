// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package names

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litcorpus/internal/store"
	"github.com/pdiddy/litcorpus/pkg/types"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		year    string
		title   string
		keyword bool
		want    string
	}{
		{"single author", []string{"Jane Doe"}, "2021", "", false, "Doe21"},
		{"three authors", []string{"Jane Doe", "John Roe", "Max Fox"}, "2020", "", false, "DoeRoeFox20"},
		{"four authors uses first three", []string{"Jane Doe", "John Roe", "Max Fox", "Eve Ray"}, "2020", "", false, "DoeRoeFox20"},
		{"two authors short surname", []string{"Li Wu", "Ann Mueller-Birn"}, "2019", "", false, "WuMue19"},
		{"particle surname", []string{"Jan van Klaassen"}, "2018", "", false, "Klaassen18"},
		{"non-latin letters kept", []string{"Zoë Ünal", "Jürgen Größer"}, "2022", "", false, "ÜnaGrö22"},
		{"punctuation stripped", []string{"P. O'Brien"}, "2023", "", false, "OBrien23"},
		{"keyword skips stopwords", []string{"Jane Doe"}, "2021", "On the Mining of Repos", true, "Doe21-mining"},
		{"keyword strips colon keeps dash", []string{"Jane Doe"}, "2021", "FACER: An API", true, "Doe21-facer"},
		{"keyword keeps dash", []string{"Jane Doe"}, "2021", "Cross-project defect prediction", true, "Doe21-cross-project"},
		{"keyword all stopwords", []string{"Jane Doe"}, "2021", "The Of", true, "Doe21"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(nil, tt.keyword, nil)
			got, err := g.Generate(types.Record{Authors: tt.authors, Year: tt.year, Title: tt.title})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateCollisionSuffix(t *testing.T) {
	existing := Set{}
	existing.Add("Doe21")
	g := NewGenerator(existing, false, nil)

	r := types.Record{Authors: []string{"Jane Doe"}, Year: "2021"}
	first, err := g.Generate(r)
	require.NoError(t, err)
	assert.Equal(t, "Doe21a", first)

	second, err := g.Generate(r)
	require.NoError(t, err)
	assert.Equal(t, "Doe21b", second)
}

func TestGenerateSuffixBeforeKeyword(t *testing.T) {
	g := NewGenerator(Set{"Doe21-mining": {}}, true, nil)
	got, err := g.Generate(types.Record{Authors: []string{"Jane Doe"}, Year: "2021", Title: "Mining"})
	require.NoError(t, err)
	assert.Equal(t, "Doe21a-mining", got)
}

func TestGenerateExhaustion(t *testing.T) {
	existing := Set{"Doe21": {}}
	for c := 'a'; c <= 'z'; c++ {
		existing.Add(fmt.Sprintf("Doe21%c", c))
	}
	g := NewGenerator(existing, false, nil)
	_, err := g.Generate(types.Record{Authors: []string{"Jane Doe"}, Year: "2021"})
	assert.ErrorIs(t, err, ErrNoFreeName)
}

func TestGeneratorDoesNotMutateExisting(t *testing.T) {
	existing := Set{}
	g := NewGenerator(existing, false, nil)
	_, err := g.Generate(types.Record{Authors: []string{"Jane Doe"}, Year: "2021"})
	require.NoError(t, err)
	assert.Empty(t, existing)
}

func TestAssignUniqueAcrossBatchAndExisting(t *testing.T) {
	existing := Set{"Doe21": {}, "Doe21a": {}, "RoeFox20": {}}
	records := make([]types.Record, 0, 40)
	for i := 0; i < 20; i++ {
		records = append(records,
			types.Record{Authors: []string{"Jane Doe"}, Year: "2021"},
			types.Record{Authors: []string{"John Roe", "Max Fox"}, Year: "2020"},
		)
	}

	require.NoError(t, NewGenerator(existing, false, nil).Assign(records))

	seen := make(map[string]bool)
	for _, r := range records {
		assert.NotEmpty(t, r.Identifier)
		assert.False(t, existing.Contains(r.Identifier), r.Identifier)
		assert.False(t, seen[r.Identifier], "duplicate %s", r.Identifier)
		seen[r.Identifier] = true
	}
	assert.Equal(t, "Doe21b", records[0].Identifier)
	assert.Equal(t, "RoeFox20a", records[1].Identifier)
}

func TestAssignSkipsIncompleteRecords(t *testing.T) {
	records := []types.Record{
		{DOI: "10.1/a", Year: "2021"},
		{DOI: "10.1/b", Authors: []string{"Jane Doe"}, Year: ""},
		{DOI: "10.1/c", Authors: []string{"Jane Doe"}, Year: "2021", Identifier: "stale"},
	}
	require.NoError(t, NewGenerator(nil, false, nil).Assign(records))
	assert.Empty(t, records[0].Identifier)
	assert.Empty(t, records[1].Identifier)
	assert.Equal(t, "Doe21", records[2].Identifier)
}

func TestAssignPropagatesExhaustion(t *testing.T) {
	records := make([]types.Record, 28)
	for i := range records {
		records[i] = types.Record{Authors: []string{"Jane Doe"}, Year: "2021"}
	}
	err := NewGenerator(nil, false, nil).Assign(records)
	assert.ErrorIs(t, err, ErrNoFreeName)
}

func writeManifest(t *testing.T, root, folder string, lines ...string) {
	t.Helper()
	l := store.NewLayout(root, folder)
	require.NoError(t, l.Prepare())
	for _, line := range lines {
		require.NoError(t, store.AppendManifest(l.ListFile(), line))
	}
}

func TestLoadExisting(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "ICSE-2023", "ICSE-2023/Doe23.pdf", "ICSE-2023/DoeRoe23a.pdf", "ICSE-2023/Doe23.pdf")
	writeManifest(t, root, "TSE-48", "TSE-48/Fox22-mining.pdf")

	got, err := LoadExisting("", []string{
		filepath.Join(root, "ICSE-2023"),
		filepath.Join(root, "missing"),
		filepath.Join(root, "TSE-48"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, Set{"Doe23": {}, "DoeRoe23a": {}, "Fox22-mining": {}}, got)
}

func TestLoadExistingResolvesAgainstRoot(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)
	writeManifest(t, "corpora", "ICSE-2023", "ICSE-2023/Doe23.pdf")
	writeManifest(t, ".", "TSE-48", "TSE-48/Fox22.pdf")

	got, err := LoadExisting("corpora", []string{"ICSE-2023", "TSE-48", "ICSE-2022"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Set{"Doe23": {}, "Fox22": {}}, got)

	abs, err := LoadExisting("corpora", []string{filepath.Join(work, "corpora", "ICSE-2023")}, nil)
	require.NoError(t, err)
	assert.Equal(t, Set{"Doe23": {}}, abs)
}

type memStore struct{ records []types.Record }

func (m *memStore) LoadRecords() ([]types.Record, error) { return m.records, nil }

func (m *memStore) SaveRecords(records []types.Record) error {
	m.records = records
	return nil
}

func TestStep(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "ESE-2021", "ESE-2021/Doe21.pdf")
	ms := &memStore{records: []types.Record{{Authors: []string{"Jane Doe"}, Year: "2021", Title: "Defects"}}}

	step := &Step{Store: ms, Root: root, ExistingFolders: []string{"ESE-2021"}, LongName: false}
	assert.Equal(t, "names", step.Name())
	require.NoError(t, step.Run(context.Background()))
	assert.Equal(t, "Doe21a", ms.records[0].Identifier)

	// The step is idempotent: a rerun regenerates the same names.
	require.NoError(t, step.Run(context.Background()))
	assert.Equal(t, "Doe21a", ms.records[0].Identifier)
}

func TestStopwordsEmbedded(t *testing.T) {
	words := loadStopwords()
	assert.True(t, words["the"])
	assert.True(t, words["of"])
	assert.False(t, words[""])
	_, err := os.Stat("stopwords.txt")
	assert.NoError(t, err)
}
