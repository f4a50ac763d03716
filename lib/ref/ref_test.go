// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"encoding/json"
	"testing"
)

func TestParseUserID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		u, err := ParseUserID("@admin:example.org")
		if err != nil {
			t.Fatalf("ParseUserID failed: %v", err)
		}
		if u.String() != "@admin:example.org" {
			t.Errorf("unexpected string form: %s", u)
		}
		if u.Localpart() != "admin" {
			t.Errorf("unexpected localpart: %s", u.Localpart())
		}
		if u.IsZero() {
			t.Error("parsed user ID should not be zero")
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, raw := range []string{"", "admin", "@admin", "@:example.org", "@admin:"} {
			if _, err := ParseUserID(raw); err == nil {
				t.Errorf("expected error for %q", raw)
			}
		}
	})

	t.Run("json round trip", func(t *testing.T) {
		u := MustParseUserID("@bot:example.org")
		data, err := json.Marshal(u)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		var decoded UserID
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if decoded != u {
			t.Errorf("round trip mismatch: %s != %s", decoded, u)
		}
	})
}

func TestParseRoomID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r, err := ParseRoomID("!abc123:example.org")
		if err != nil {
			t.Fatalf("ParseRoomID failed: %v", err)
		}
		if r.String() != "!abc123:example.org" {
			t.Errorf("unexpected string form: %s", r)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "!abc", "!:example.org", "!abc:"} {
			if _, err := ParseRoomID(raw); err == nil {
				t.Errorf("expected error for %q", raw)
			}
		}
	})
}

func TestParseEventID(t *testing.T) {
	if _, err := ParseEventID("$abc123"); err != nil {
		t.Fatalf("ParseEventID failed: %v", err)
	}
	for _, raw := range []string{"", "abc", "$"} {
		if _, err := ParseEventID(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}
