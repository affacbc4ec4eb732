// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads optional private settings from a directory of
// plain-text files. Each file is one secret: the filename is the key and
// the trimmed contents are the value.
//
// Known keys: contact-email (added to the User-Agent so that dblp and
// publishers can reach the operator) and user-agent (replaces the default
// User-Agent entirely).
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Key names.
const (
	ContactEmail = "contact-email"
	UserAgent    = "user-agent"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// ResolveUserAgent returns the User-Agent to send: the user-agent secret
// if present, else base, with the contact e-mail appended when known.
func ResolveUserAgent(secrets map[string]string, base string) string {
	ua := base
	if v := secrets[UserAgent]; v != "" {
		ua = v
	}
	if email := secrets[ContactEmail]; email != "" {
		ua = fmt.Sprintf("%s (mailto:%s)", ua, email)
	}
	return ua
}
