// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable Matrix identifier
// values: user IDs, room IDs, event IDs, and event types.
//
// All constructors validate their inputs and return errors for invalid
// identifiers. Once constructed, a ref is immutable. Identifiers parsed
// from the wire (configuration, /sync responses, API requests) are
// converted into these types at the boundary, so the rest of the code
// never handles raw identifier strings.
//
// JSON marshaling uses the canonical Matrix form (e.g.,
// "@admin:example.org") via encoding.TextMarshaler.
package ref
