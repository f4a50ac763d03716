// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"sort"
	"strings"
)

// Match returns the response for the first rule whose keyword occurs as
// a contiguous substring of message. The caller must lowercase the
// message first; keywords are already canonical (lowercased) in the
// mapping. No tokenization or punctuation stripping is performed.
//
// Keywords are scanned in sorted order, so when several keywords match
// the same message the winner is deterministic. Returns ("", false)
// when no keyword matches — the caller substitutes its fallback reply.
func Match(message string, mapping map[string]string) (string, bool) {
	keywords := make([]string, 0, len(mapping))
	for keyword := range mapping {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)

	for _, keyword := range keywords {
		if strings.Contains(message, keyword) {
			return mapping[keyword], true
		}
	}
	return "", false
}
