// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Grouping selects whether the target number is a year or a volume.
type Grouping string

const (
	GroupByYear   Grouping = "year"
	GroupByVolume Grouping = "volume"
)

// RunConfig records the options a corpus was created with. It is stored
// verbatim as run_configuration in the metadata store.
type RunConfig struct {
	// DownloadDir is the browser download directory watched in browser mode.
	DownloadDir string `json:"download_dir" yaml:"download_dir"`

	// ExistingFolders are prior corpora whose identifiers must not be reused.
	ExistingFolders []string `json:"existing_folders" yaml:"existing_folders"`

	Grouping Grouping `json:"grouping" yaml:"grouping"`

	// LongName appends the first non-stopword title word to identifiers.
	LongName bool `json:"longname" yaml:"longname"`

	// Mapper is the short name of the DOI-to-PDF mapper (e.g. "Acm").
	Mapper string `json:"mapper" yaml:"mapper"`

	// MaxWait is the upper bound in seconds of the courtesy wait after each download.
	MaxWait int `json:"maxwait" yaml:"maxwait"`

	// Metadata names the metadata source (only "dblp").
	Metadata string `json:"metadata" yaml:"metadata"`

	// Sample limits the PDF download to a random sample of this size. Nil means all.
	Sample *int `json:"sample" yaml:"sample"`

	// Target is the venue-number combination, e.g. "ICSE-2024".
	Target string `json:"target" yaml:"target"`
}

// FetchConfig holds settings for the metadata fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageSize is the number of hits requested per page (dblp caps at 1000).
	PageSize int `json:"page_size" yaml:"page_size"`

	// PageDelay is the delay between consecutive page requests (default 1s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`
}

// DownloadConfig holds settings for the PDF download stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDir is the browser download directory watched in browser mode.
	DownloadDir string `json:"download_dir" yaml:"download_dir"`

	// RequestDelay is the minimum interval between external requests (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// MaxWait is the upper bound of the random courtesy wait after each
	// download. The lower bound is a quarter of it.
	MaxWait time.Duration `json:"max_wait" yaml:"max_wait"`

	// PollInterval is the sampling interval used to detect a finished
	// browser download (default 2s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// Sample limits the download to a random sample. Negative means all.
	Sample int `json:"sample" yaml:"sample"`
}
