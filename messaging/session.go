// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"

	"github.com/faqbot-project/faqbot/lib/ref"
)

// Session is the interface for the Matrix operations the bot performs.
// *DirectSession is the production implementation; tests substitute
// fakes that record sent messages.
//
// Operator-only methods (AccessToken, DeviceID) are not part of this
// interface. Code that needs them should type-assert to *DirectSession.
type Session interface {
	// UserID returns the fully-qualified Matrix user ID
	// (e.g., "@faqbot:example.org").
	UserID() ref.UserID

	// Close releases any resources held by the session. Idempotent.
	Close() error

	// WhoAmI validates the session and returns the user ID.
	WhoAmI(ctx context.Context) (ref.UserID, error)

	// SendMessage sends a message to a room. Returns the event ID.
	SendMessage(ctx context.Context, roomID ref.RoomID, content MessageContent) (ref.EventID, error)

	// JoinRoom joins a room by room ID. Returns the room ID.
	JoinRoom(ctx context.Context, roomID ref.RoomID) (ref.RoomID, error)

	// JoinedRooms returns the list of room IDs the user has joined.
	JoinedRooms(ctx context.Context) ([]ref.RoomID, error)

	// GetDisplayName fetches a user's display name. Returns an empty
	// string (not an error) if the user has no display name set.
	GetDisplayName(ctx context.Context, userID ref.UserID) (string, error)

	// Sync performs an incremental sync with the homeserver.
	Sync(ctx context.Context, options SyncOptions) (*SyncResponse, error)
}

// Compile-time check: *DirectSession implements Session.
var _ Session = (*DirectSession)(nil)
