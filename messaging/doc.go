// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging wraps the subset of the Matrix client-server API
// that faqbot needs: password login, message sending, room membership,
// profile lookup, and incremental /sync.
//
// [Client] is an unauthenticated Matrix client holding the homeserver
// URL and HTTP transport. [Client.Login] and [Client.SessionFromToken]
// return authenticated [DirectSession] values; the access token lives
// in an mmap-backed secret.Buffer (locked against swap, excluded from
// core dumps), so callers must Close sessions when done.
//
// [Stream] turns /sync long-polling into a sequential feed of
// m.room.message timeline events — the bot's event loop reads from it
// one event at a time. Transient sync errors are retried a bounded
// number of times with a short server-side timeout providing backoff.
//
// All API errors are returned as [*MatrixError] with the standard
// Matrix error code and HTTP status; [IsMatrixError] tests for a
// specific code. Request URLs are built by string concatenation rather
// than url.URL to avoid double-encoding of path segments.
package messaging
