// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"crypto/subtle"
	"errors"
	"strings"
)

// VerifyBearerToken checks an Authorization header against the expected
// shared token using a constant-time compare. The header must be of the
// form "Bearer <token>".
//
// Returns nil if the token matches, or an error describing the
// verification failure. The error message is safe to log — it never
// includes the expected token.
func VerifyBearerToken(expected []byte, authorization string) error {
	if len(expected) == 0 {
		return errors.New("bearer auth: expected token is empty")
	}
	if authorization == "" {
		return errors.New("bearer auth: missing Authorization header")
	}

	presented, found := strings.CutPrefix(authorization, "Bearer ")
	if !found {
		return errors.New("bearer auth: Authorization header is not a Bearer token")
	}

	if subtle.ConstantTimeCompare(expected, []byte(presented)) != 1 {
		return errors.New("bearer auth: token mismatch")
	}
	return nil
}
