// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures of the litcorpus pipeline:
// the corpus Record, the Venue descriptor and the run configuration.
package types

// Record holds the metadata of one publication in a corpus. The fetch stage
// creates it; later stages enrich it in place.
//
// Fields are declared in alphabetical JSON order so the metadata store
// serializes with stable, sorted keys.
type Record struct {
	// Authors lists display names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// DOI is the lower-cased Digital Object Identifier.
	DOI string `json:"doi" yaml:"doi"`

	// Identifier is the short corpus-unique key, assigned by the naming step.
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"`

	// Number is the issue number. Empty for conference proceedings.
	Number string `json:"number,omitempty" yaml:"number,omitempty"`

	Pages string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// PDF is true once the PDF bytes are stored in the target directory.
	PDF bool `json:"pdf" yaml:"pdf"`

	// ResolvedDOI is the URL reached after following the DOI redirect chain.
	ResolvedDOI string `json:"resolved_doi,omitempty" yaml:"resolved_doi,omitempty"`

	Title string `json:"title" yaml:"title"`

	// Type is the publication type reported by the index (e.g. "Journal Articles").
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	Venue     string `json:"venue" yaml:"venue"`
	VenueType string `json:"venue_type" yaml:"venue_type"`

	// Volume is the journal volume. Empty for conference proceedings.
	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`

	Year string `json:"year" yaml:"year"`
}
