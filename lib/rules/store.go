// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// loadRetries is the number of additional read attempts after an
// unparsable rules file. Atomic writes make a torn read impossible from
// this package's own writers; the retries guard against an external
// editor saving the file mid-read.
const loadRetries = 5

// retryDelay is the pause between read attempts.
const retryDelay = 100 * time.Millisecond

// Store is the durable keyword→response mapping shared by the chat bot
// and the rules API. It is safe for concurrent use by multiple
// goroutines, and multiple processes may point a Store at the same
// file: writes are serialized in-process by a mutex and made atomic
// across processes by a temp-file-plus-rename rewrite.
type Store struct {
	path   string
	logger *slog.Logger

	// mu serializes writers within this process. Readers do not take
	// it — a read sees either the previous or the new file, never a
	// partial one, because replacement is atomic.
	mu sync.Mutex
}

// NewStore creates a Store backed by the JSON file at path. The file
// does not need to exist yet — it is created on the first upsert. If
// logger is nil, slog.Default() is used.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("rules: store path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}, nil
}

// Path returns the rules file path.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns the current rule mapping. It never fails: a missing
// file yields an empty mapping, and a file that stays unparsable
// through the bounded retries degrades to an empty mapping with a
// warning log. Each call re-reads the file, so rules written by another
// process are visible on the next read.
func (s *Store) Snapshot() map[string]string {
	mapping, err := s.load()
	if err != nil {
		s.logger.Warn("rules file unreadable, serving empty mapping",
			"path", s.path,
			"attempts", loadRetries+1,
			"error", err,
		)
		return map[string]string{}
	}
	return mapping
}

// Canonicalize returns the canonical form of a keyword: trimmed and
// lowercased. This is the form used as the mapping key and matched
// against lowercased messages.
func Canonicalize(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// Upsert canonicalizes the keyword and writes the rule into the durable
// mapping, overwriting any prior response for an equal canonical
// keyword. The full mapping is rewritten atomically before Upsert
// returns. The response is stored verbatim.
//
// Returns a *ValidationError if either argument is empty after
// trimming; nothing is written in that case. If the rules file exists
// but stays unparsable through the bounded retries, Upsert fails
// without touching the file — degrading to an empty mapping is a read
// policy, a write based on it would discard whatever is on disk.
func (s *Store) Upsert(keyword, response string) error {
	canonical := Canonicalize(keyword)
	if canonical == "" {
		return &ValidationError{Field: "keyword", Reason: "empty after trimming"}
	}
	if strings.TrimSpace(response) == "" {
		return &ValidationError{Field: "response", Reason: "empty after trimming"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Merge into the current durable state rather than an in-memory
	// copy. Under the full-mapping-rewrite model this is what keeps a
	// rule written by the other process from being clobbered by the
	// next upsert here. An existing file that stays unparsable through
	// the retries fails the upsert instead of being rewritten with only
	// the new rule: the data on disk may still be recoverable by hand.
	mapping, err := s.load()
	if err != nil {
		return fmt.Errorf("rules: loading current mapping from %s: %w", s.path, err)
	}
	mapping[canonical] = response

	if err := s.writeFile(mapping); err != nil {
		return err
	}

	s.logger.Info("rule saved",
		"keyword", canonical,
		"rules_total", len(mapping),
	)
	return nil
}

// load reads and parses the rules file. A missing file means no rules
// yet and is not an error. A file that exists but cannot be read or
// parsed is retried with a short backoff; after the bound the last
// error is returned, and the caller decides whether to degrade (reads)
// or refuse (writes).
func (s *Store) load() (map[string]string, error) {
	var lastErr error
	for attempt := 0; attempt <= loadRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		data, err := os.ReadFile(s.path)
		if err != nil {
			if os.IsNotExist(err) {
				return map[string]string{}, nil
			}
			lastErr = err
			continue
		}

		mapping := map[string]string{}
		if err := json.Unmarshal(data, &mapping); err != nil {
			lastErr = err
			continue
		}
		return mapping, nil
	}

	return nil, lastErr
}

// writeFile atomically replaces the rules file with the given mapping:
// write to a temp file in the same directory, close, rename into place.
// A reader never observes a partial write.
func (s *Store) writeFile(mapping map[string]string) error {
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("rules: encoding mapping: %w", err)
	}

	directory := filepath.Dir(s.path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("rules: creating directory %s: %w", directory, err)
	}

	tmpFile, err := os.CreateTemp(directory, "rules-*.json")
	if err != nil {
		return fmt.Errorf("rules: creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("rules: writing mapping: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("rules: closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rules: renaming into %s: %w", s.path, err)
	}

	success = true
	return nil
}
