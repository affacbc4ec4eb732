// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package names

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdiddy/litcorpus/internal/store"
)

// LoadExisting collects the identifiers recorded in the manifests of prior
// corpora. Each folder contributes <folder>/metadata/<base>.list, where base
// is the last element of the folder path. A relative folder is looked up
// under root first and then as given; a folder without a manifest is
// skipped with a warning.
func LoadExisting(root string, folders []string, logger *slog.Logger) (Set, error) {
	if logger == nil {
		logger = slog.Default()
	}
	existing := make(Set)
	for _, folder := range folders {
		listFile := manifestOf(root, folder)
		logger.Debug("reading names", "file", listFile)

		entries, err := store.ReadManifest(listFile)
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("manifest not found, skipping", "folder", folder, "file", listFile)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading names from %s: %w", listFile, err)
		}
		for _, e := range entries {
			existing.Add(store.IdentifierFromEntry(e))
		}
		logger.Debug("loaded names", "file", listFile, "names", len(entries))
	}
	return existing, nil
}

// manifestOf returns the manifest path of folder, preferring the copy under
// root for relative folders.
func manifestOf(root, folder string) string {
	asGiven := listFileOf(folder)
	if root == "" || filepath.IsAbs(folder) {
		return asGiven
	}
	underRoot := listFileOf(filepath.Join(root, folder))
	if _, err := os.Stat(underRoot); err == nil {
		return underRoot
	}
	if _, err := os.Stat(asGiven); err == nil {
		return asGiven
	}
	return underRoot
}

func listFileOf(folder string) string {
	folder = filepath.Clean(folder)
	return store.NewLayout(filepath.Dir(folder), filepath.Base(folder)).ListFile()
}
