// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package authorization guards the privileged rule mutation path.
//
// Faqbot has exactly one privileged identity: the administrator
// configured at startup. The gate is an explicit precondition the chat
// adapter calls before any mutating Store call — authorization is not
// woven into transport handlers, so the same check serves any future
// entry point unchanged.
package authorization

import (
	"fmt"

	"github.com/faqbot-project/faqbot/lib/ref"
)

// Gate answers whether a caller is the configured administrator.
// The administrator identity is static for the process lifetime.
type Gate struct {
	admin ref.UserID
}

// NewGate creates a Gate for the given administrator. Returns an error
// if admin is the zero value — a bot without an administrator cannot
// accept rule mutations from chat, and that is a configuration mistake
// to surface at startup, not at first use.
func NewGate(admin ref.UserID) (*Gate, error) {
	if admin.IsZero() {
		return nil, fmt.Errorf("authorization: administrator user ID is required")
	}
	return &Gate{admin: admin}, nil
}

// Allow reports whether caller is the administrator. A zero caller is
// never allowed.
func (g *Gate) Allow(caller ref.UserID) bool {
	return !caller.IsZero() && caller == g.admin
}

// Admin returns the configured administrator identity.
func (g *Gate) Admin() ref.UserID {
	return g.admin
}
