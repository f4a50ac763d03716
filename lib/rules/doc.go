// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package rules owns the shared keyword→response rule mapping that both
// the chat bot and the rules API operate on.
//
// [Store] persists the mapping as a single flat JSON object of string
// keys to string values, rewritten in full on every mutation. Writes go
// to a temporary file in the same directory followed by an atomic
// rename, so a concurrent reader — in this process or another — never
// observes a half-written file. A process-local mutex serializes
// writers sharing a process; cross-process writers rely on the atomic
// rename alone. Reads re-read the file on every call, which is what
// makes a rule added through the API visible to a bot running as a
// separate process. Unparsable reads are retried a bounded number of
// times as defense in depth. After the bound, reads degrade to an empty
// mapping with a warning so the bot keeps answering; writes refuse with
// an error instead, since rewriting the file from an empty mapping
// would discard whatever is still on disk.
//
// Store.Upsert is the single place keyword canonicalization (trim,
// lowercase) happens. Both adapters go through it, so their stored
// forms cannot diverge. Responses are stored verbatim.
//
// [Match] finds the response for a message by substring containment of
// each canonical keyword in the caller-lowercased message. Keywords are
// scanned in sorted order, so the winning rule for a message with
// several matching keywords is deterministic across calls and runs.
package rules
