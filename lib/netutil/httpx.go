// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP I/O utilities for faqbot.
//
// The body helpers (ReadBody, DecodeBody) bound all reads at MaxBodySize
// to prevent unbounded memory allocation from a misbehaving peer. They
// serve both directions: response bodies from the Matrix homeserver and
// request bodies arriving at the rules API.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// MaxBodySize is the bound on JSON body reads: 16 MB. This exists solely
// to prevent a pathological payload from exhausting memory. Legitimate
// bodies — sync responses, rule upserts — are orders of magnitude
// smaller; the limit is generous so it never interferes with normal
// operation.
const MaxBodySize int64 = 16 << 20

// ReadBody reads a JSON body up to MaxBodySize bytes. Use instead of
// io.ReadAll when reading HTTP request or response bodies.
func ReadBody(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxBodySize))
}

// DecodeBody reads a JSON body (up to MaxBodySize bytes) and decodes it
// into v. Replaces the common io.ReadAll + json.Unmarshal pattern.
func DecodeBody(body io.Reader, v any) error {
	data, err := io.ReadAll(io.LimitReader(body, MaxBodySize))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	return json.Unmarshal(data, v)
}
