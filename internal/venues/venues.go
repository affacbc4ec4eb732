// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package venues holds the catalog of known publication venues and parses
// corpus targets of the form <venue>-<number>.
package venues

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litcorpus/pkg/types"
)

var (
	// ErrMalformedTarget is returned for targets not matching <venue>-<number>.
	ErrMalformedTarget = errors.New("malformed target specification")

	// ErrUnknownVenue is returned for targets naming a venue missing from the catalog.
	ErrUnknownVenue = errors.New("unknown venue")
)

//go:embed venues.yaml
var builtinCatalog []byte

// targetPattern splits "ICSE-2024" into venue and number. The venue part is
// greedy so names containing dashes still parse.
var targetPattern = regexp.MustCompile(`^(.+)-(\d+)$`)

// Catalog maps venue keys to descriptors.
type Catalog map[string]types.Venue

// Builtin returns the catalog shipped with the binary.
func Builtin() (Catalog, error) {
	return Parse(builtinCatalog)
}

// Load reads a catalog from a YAML file.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading venue catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML venue catalog.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing venue catalog: %w", err)
	}
	return c, nil
}

// Merge returns a catalog holding the entries of c overlaid with other.
func (c Catalog) Merge(other Catalog) Catalog {
	merged := make(Catalog, len(c)+len(other))
	for k, v := range c {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Names returns the venue keys in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ParseTarget splits target into its venue descriptor and number.
func (c Catalog) ParseTarget(target string) (types.Venue, string, error) {
	m := targetPattern.FindStringSubmatch(target)
	if m == nil {
		return types.Venue{}, "", fmt.Errorf("%w: %q (use format <venuename>-<number>, e.g. ICSE-2024)", ErrMalformedTarget, target)
	}
	name, number := m[1], m[2]
	venue, ok := c[name]
	if !ok {
		return types.Venue{}, "", fmt.Errorf("%w %q (known venues: %s)", ErrUnknownVenue, name, strings.Join(c.Names(), ", "))
	}
	return venue, number, nil
}
