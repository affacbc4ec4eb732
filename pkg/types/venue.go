// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrInvalidVenue is returned when a venue descriptor lacks fields a
// metadata source needs.
var ErrInvalidVenue = errors.New("invalid venue configuration")

// VenueType distinguishes journals from conference proceedings.
type VenueType string

const (
	VenueJournal    VenueType = "journal"
	VenueConference VenueType = "conference"
)

// Venue describes a publication venue and how each metadata source
// addresses it.
type Venue struct {
	Name            string          `json:"name" yaml:"name"`
	Type            VenueType       `json:"type" yaml:"type"`
	MetadataSources MetadataSources `json:"metadata_sources" yaml:"metadata_sources"`
}

// MetadataSources holds the per-source venue identifiers.
type MetadataSources struct {
	DBLP *DBLPSource `json:"dblp,omitempty" yaml:"dblp,omitempty"`
}

// DBLPSource addresses a venue stream on dblp: the stream type
// ("journals" or "conf") and the venue acronym (e.g. "icse").
type DBLPSource struct {
	Type    string `json:"type" yaml:"type"`
	Acronym string `json:"acronym" yaml:"acronym"`
}

// allowedDBLPTypes lists the stream types dblp serves publication lists for.
var allowedDBLPTypes = map[string]bool{
	"journals": true,
	"conf":     true,
}

// DBLP returns the validated dblp descriptor of the venue. A missing source,
// an empty field or a stream type other than "journals" or "conf" yields
// ErrInvalidVenue.
func (v Venue) DBLP() (DBLPSource, error) {
	src := v.MetadataSources.DBLP
	if src == nil {
		return DBLPSource{}, fmt.Errorf("%w: %q has no dblp metadata source", ErrInvalidVenue, v.Name)
	}
	if src.Type == "" {
		return DBLPSource{}, fmt.Errorf("%w: %q is missing 'type'", ErrInvalidVenue, v.Name)
	}
	if src.Acronym == "" {
		return DBLPSource{}, fmt.Errorf("%w: %q is missing 'acronym'", ErrInvalidVenue, v.Name)
	}
	if !allowedDBLPTypes[src.Type] {
		return DBLPSource{}, fmt.Errorf("%w: %q has dblp type %q (want journals or conf)", ErrInvalidVenue, v.Name, src.Type)
	}
	return *src, nil
}
