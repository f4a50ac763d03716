// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"strings"
	"testing"
)

func TestMatch(t *testing.T) {
	mapping := map[string]string{
		"hours":    "We open at 9am",
		"price":    "Ten dollars",
		"delivery": "Within two days",
	}

	t.Run("substring containment", func(t *testing.T) {
		message := strings.ToLower("What are your Hours?")
		response, ok := Match(message, mapping)
		if !ok {
			t.Fatal("expected a match")
		}
		if response != "We open at 9am" {
			t.Errorf("unexpected response: %q", response)
		}
	})

	t.Run("case-insensitive via caller lowercasing", func(t *testing.T) {
		response, ok := Match(strings.ToLower("what's the Price today"), mapping)
		if !ok || response != "Ten dollars" {
			t.Errorf("expected price response, got %q (ok=%v)", response, ok)
		}
	})

	t.Run("no match", func(t *testing.T) {
		if _, ok := Match("what's the weather", mapping); ok {
			t.Error("expected no match")
		}
	})

	t.Run("empty mapping", func(t *testing.T) {
		if _, ok := Match("anything", map[string]string{}); ok {
			t.Error("expected no match on empty mapping")
		}
	})

	t.Run("deterministic tie break", func(t *testing.T) {
		tied := map[string]string{
			"open":  "first by sort order",
			"hours": "also matches",
		}
		// Both keywords occur in the message; sorted order makes
		// "hours" win every time.
		for i := 0; i < 10; i++ {
			response, ok := Match("are you open during normal hours", tied)
			if !ok || response != "also matches" {
				t.Fatalf("iteration %d: expected sorted-order winner, got %q", i, response)
			}
		}
	})

	t.Run("keyword inside a longer word still matches", func(t *testing.T) {
		// Pure substring containment, no tokenization.
		response, ok := Match("the priceless artifact", mapping)
		if !ok || response != "Ten dollars" {
			t.Errorf("expected substring match, got %q (ok=%v)", response, ok)
		}
	})
}
