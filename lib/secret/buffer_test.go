// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuffer(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		buffer, err := NewFromString("syt_faqbot_token")
		if err != nil {
			t.Fatalf("NewFromString failed: %v", err)
		}
		defer buffer.Close()

		if buffer.String() != "syt_faqbot_token" {
			t.Errorf("unexpected contents: %s", buffer.String())
		}
		if buffer.Len() != len("syt_faqbot_token") {
			t.Errorf("unexpected length: %d", buffer.Len())
		}
	})

	t.Run("source is zeroed", func(t *testing.T) {
		source := []byte("hunter2")
		buffer, err := NewFromBytes(source)
		if err != nil {
			t.Fatalf("NewFromBytes failed: %v", err)
		}
		defer buffer.Close()

		for i, b := range source {
			if b != 0 {
				t.Fatalf("source byte %d not zeroed", i)
			}
		}
	})

	t.Run("empty source rejected", func(t *testing.T) {
		if _, err := NewFromBytes(nil); err == nil {
			t.Fatal("expected error for empty source")
		}
		if _, err := NewFromString(""); err == nil {
			t.Fatal("expected error for empty string")
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		buffer, err := NewFromString("secret")
		if err != nil {
			t.Fatalf("NewFromString failed: %v", err)
		}
		if err := buffer.Close(); err != nil {
			t.Fatalf("first Close failed: %v", err)
		}
		if err := buffer.Close(); err != nil {
			t.Fatalf("second Close failed: %v", err)
		}
	})

	t.Run("read after close panics", func(t *testing.T) {
		buffer, err := NewFromString("secret")
		if err != nil {
			t.Fatalf("NewFromString failed: %v", err)
		}
		buffer.Close()

		accessors := map[string]func(){
			"Bytes":  func() { _ = buffer.Bytes() },
			"String": func() { _ = buffer.String() },
			"Len":    func() { _ = buffer.Len() },
		}
		for name, access := range accessors {
			func() {
				defer func() {
					if recover() == nil {
						t.Errorf("%s: expected panic on closed buffer", name)
					}
				}()
				access()
			}()
		}
	})
}

func TestReadFromPath(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		if err := os.WriteFile(path, []byte("  syt_token\n"), 0o600); err != nil {
			t.Fatalf("writing token file: %v", err)
		}

		buffer, err := ReadFromPath(path)
		if err != nil {
			t.Fatalf("ReadFromPath failed: %v", err)
		}
		defer buffer.Close()

		if buffer.String() != "syt_token" {
			t.Errorf("unexpected contents: %q", buffer.String())
		}
	})

	t.Run("empty file rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
			t.Fatalf("writing token file: %v", err)
		}
		if _, err := ReadFromPath(path); err == nil {
			t.Fatal("expected error for empty secret")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadFromPath(filepath.Join(t.TempDir(), "absent")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
