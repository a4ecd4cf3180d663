// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text files.
// Each file is one secret: the filename is the key name and the trimmed file
// contents are the value. Values found here take precedence over config-file
// entries so keys stay out of committed config.
//
// Key files the engine looks for: kb-api-key (upstream knowledge base),
// model-api-key (keyword extraction model).
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key names recognized by the engine.
const (
	KeyKB    = "kb-api-key"
	KeyModel = "model-api-key"
)

// Store holds loaded secrets keyed by filename.
type Store map[string]string

// Get returns the value for key, or fallback when the key is absent or
// empty.
func (s Store) Get(key, fallback string) string {
	if v := s[key]; v != "" {
		return v
	}
	return fallback
}

// Load reads all files in dir into a Store. A missing directory is not an
// error; Load returns an empty Store. Unreadable files produce a warning
// on stderr but do not abort.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Store)
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
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
