// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"
)

// AppendManifest appends one path to the manifest file, creating it if
// needed. The manifest may end up with duplicate lines when a run is
// interrupted between appending and flagging the record; readers use
// ReadManifest, which deduplicates.
func AppendManifest(listFile, entry string) error {
	f, err := os.OpenFile(listFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening manifest: %w", err)
	}
	if _, err := fmt.Fprintln(f, entry); err != nil {
		f.Close()
		return fmt.Errorf("appending to manifest: %w", err)
	}
	return f.Close()
}

// ReadManifest returns the distinct non-empty lines of the manifest in
// first-seen order. A missing file is returned as an error wrapping
// os.ErrNotExist.
func ReadManifest(listFile string) ([]string, error) {
	f, err := os.Open(listFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := make(map[string]bool)
	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", listFile, err)
	}
	return entries, nil
}

// IdentifierFromEntry extracts the identifier from a manifest line such as
// "ICSE-2023/Doe23.pdf".
func IdentifierFromEntry(entry string) string {
	base := path.Base(entry)
	return strings.TrimSuffix(base, path.Ext(base))
}
