// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venues

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litcorpus/pkg/types"
)

func TestBuiltinCatalogIsValid(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)
	assert.Contains(t, c.Names(), "ICSE")
	assert.Contains(t, c.Names(), "TSE")

	for name, v := range c {
		_, err := v.DBLP()
		assert.NoError(t, err, name)
	}
}

func TestParseTarget(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	tests := []struct {
		name       string
		target     string
		wantVenue  string
		wantNumber string
		wantErr    error
	}{
		{"year", "ICSE-2024", "International Conference on Software Engineering", "2024", nil},
		{"volume", "TSE-48", "IEEE Transactions on Software Engineering", "48", nil},
		{"no number", "ICSE", "", "", ErrMalformedTarget},
		{"non numeric", "ICSE-abc", "", "", ErrMalformedTarget},
		{"unknown venue", "FOO-2020", "", "", ErrUnknownVenue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, n, err := c.ParseTarget(tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVenue, v.Name)
			assert.Equal(t, tt.wantNumber, n)
		})
	}
}

func TestLoadAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
MSR:
  name: Mining Software Repositories
  type: conference
  metadata_sources:
    dblp:
      type: conf
      acronym: msr
`), 0o644))

	extra, err := Load(path)
	require.NoError(t, err)
	builtin, err := Builtin()
	require.NoError(t, err)

	merged := builtin.Merge(extra)
	v, n, err := merged.ParseTarget("MSR-2023")
	require.NoError(t, err)
	assert.Equal(t, "2023", n)
	assert.Equal(t, types.VenueConference, v.Type)
	src, err := v.DBLP()
	require.NoError(t, err)
	assert.Equal(t, "msr", src.Acronym)
}

func TestVenueValidation(t *testing.T) {
	tests := []struct {
		name  string
		venue types.Venue
	}{
		{"no dblp source", types.Venue{Name: "x"}},
		{"missing type", types.Venue{Name: "x", MetadataSources: types.MetadataSources{DBLP: &types.DBLPSource{Acronym: "x"}}}},
		{"missing acronym", types.Venue{Name: "x", MetadataSources: types.MetadataSources{DBLP: &types.DBLPSource{Type: "conf"}}}},
		{"disallowed type", types.Venue{Name: "x", MetadataSources: types.MetadataSources{DBLP: &types.DBLPSource{Type: "books", Acronym: "x"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.venue.DBLP()
			assert.ErrorIs(t, err, types.ErrInvalidVenue)
		})
	}
}
