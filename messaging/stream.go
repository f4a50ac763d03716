// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// streamFilter is the inline /sync filter for message streaming:
// timeline restricted to m.room.message, state suppressed, presence
// and account data excluded. The bot only reacts to chat messages, so
// everything else is filtered server-side.
func streamFilter() string {
	top := map[string]any{
		"room": map[string]any{
			"timeline": map[string]any{"types": []string{"m.room.message"}},
			"state":    map[string]any{"types": []string{}},
		},
		"presence":     map[string]any{"types": []string{}},
		"account_data": map[string]any{"types": []string{}},
	}
	data, _ := json.Marshal(top)
	return string(data)
}

// Stream is a sequential feed of m.room.message events from every room
// the session has joined. Create one with OpenStream, then call Next in
// a loop; each call returns the next message event, long-polling the
// homeserver when none are buffered.
//
// Events are delivered in server order within a room. When one /sync
// response carries several messages, they are buffered and returned one
// per Next call — none are dropped. Each delivered event has RoomID
// filled in from the sync response, so handlers know where to reply.
//
// Stream is not safe for concurrent use by multiple goroutines. The
// bot's event loop is single-threaded, matching Matrix's per-connection
// sync model: the since token travels as a query parameter, not
// server-side session state.
type Stream struct {
	session   Session
	logger    *slog.Logger
	filter    string  // inline /sync filter (JSON)
	nextBatch string  // sync token at the current position
	pending   []Event // events received but not yet consumed
}

// OpenStream captures the current position in the Matrix /sync stream.
// The returned Stream only sees messages arriving after this call, so
// the bot never replays history it already answered before a restart.
//
// This performs an immediate /sync (timeout=0) to obtain the current
// next_batch token without blocking. The token anchors all subsequent
// long-poll calls. Invitations already pending at this point are
// accepted before OpenStream returns.
func OpenStream(ctx context.Context, session Session, logger *slog.Logger) (*Stream, error) {
	if session == nil {
		return nil, fmt.Errorf("messaging: OpenStream requires a session")
	}
	if logger == nil {
		logger = slog.Default()
	}
	filter := streamFilter()
	response, err := session.Sync(ctx, SyncOptions{
		SetTimeout: true,
		Timeout:    0,
		Filter:     filter,
	})
	if err != nil {
		return nil, fmt.Errorf("messaging: initial sync for message stream: %w", err)
	}
	stream := &Stream{
		session:   session,
		logger:    logger,
		filter:    filter,
		nextBatch: response.NextBatch,
	}
	stream.acceptInvites(ctx, response)
	return stream, nil
}

// maxSyncRetries is the number of consecutive /sync failures allowed
// before Next returns an error. Each retry uses a 1-second server-side
// timeout so the HTTP round-trip itself provides backoff.
const maxSyncRetries = 5

// longPollTimeout is the server-side long-poll hold time in
// milliseconds for normal /sync calls. The server holds the connection
// for up to this duration, returning immediately when new events
// arrive. 30 seconds matches the Matrix client-server spec
// recommendation.
const longPollTimeout = 30000

// retryTimeout is the server-side timeout in milliseconds used after
// a /sync error. Short so the retry completes quickly and the next
// attempt can proceed.
const retryTimeout = 1000

// Next blocks until the next m.room.message event arrives in any
// joined room. Bounded by ctx. On transient /sync errors, retries up
// to 5 times with a 1-second server timeout (the HTTP round-trip
// provides backoff). Resets idle connections on error if the Session
// supports it.
func (s *Stream) Next(ctx context.Context) (Event, error) {
	if len(s.pending) > 0 {
		event := s.pending[0]
		s.pending = s.pending[1:]
		return event, nil
	}

	var syncRetries int
	for {
		// On retry after a sync error, use a short server-side
		// timeout (1s) so the HTTP round-trip itself provides
		// backoff. On first attempt or after success, use the
		// normal 30s long-poll hold.
		syncTimeout := longPollTimeout
		if syncRetries > 0 {
			syncTimeout = retryTimeout
		}
		response, err := s.session.Sync(ctx, SyncOptions{
			Since:      s.nextBatch,
			SetTimeout: true,
			Timeout:    syncTimeout,
			Filter:     s.filter,
		})
		if err != nil {
			if ctx.Err() != nil {
				return Event{}, fmt.Errorf("context cancelled waiting for message: %w", ctx.Err())
			}
			syncRetries++
			// TCP-level errors (connection reset, EOF) often indicate
			// a poisoned connection in Go's HTTP pool. Drop idle
			// connections so the next attempt opens a fresh socket.
			if closer, ok := s.session.(interface{ CloseIdleConnections() }); ok {
				closer.CloseIdleConnections()
			}
			if syncRetries > maxSyncRetries {
				return Event{}, fmt.Errorf("sync failed %d consecutive times waiting for message: %w",
					syncRetries, err)
			}
			s.logger.Debug("message stream sync error, retrying",
				"attempt", syncRetries,
				"max_attempts", maxSyncRetries,
				"error", err,
			)
			continue
		}
		syncRetries = 0
		s.nextBatch = response.NextBatch

		s.acceptInvites(ctx, response)

		// Collect timeline messages from every joined room in the
		// response, stamping each with its room ID (the map key).
		for roomID, joined := range response.Rooms.Join {
			for _, event := range joined.Timeline.Events {
				if event.Type != "m.room.message" {
					continue
				}
				event.RoomID = roomID
				s.pending = append(s.pending, event)
			}
		}

		if len(s.pending) == 0 {
			// The long poll returned without messages (timeout hit,
			// or only filtered activity). Poll again.
			continue
		}

		event := s.pending[0]
		s.pending = s.pending[1:]
		return event, nil
	}
}

// acceptInvites joins every room the sync response reports an
// invitation for. This is how the bot enters rooms at all: an operator
// invites the bot account, and the next sync pass accepts. Join is
// idempotent on the homeserver side, so an invite that lingers in the
// response across sync batches is harmless. A failed join is logged
// and retried naturally when the invite reappears.
func (s *Stream) acceptInvites(ctx context.Context, response *SyncResponse) {
	for roomID := range response.Rooms.Invite {
		if _, err := s.session.JoinRoom(ctx, roomID); err != nil {
			s.logger.Warn("joining invited room failed",
				"room_id", roomID,
				"error", err,
			)
			continue
		}
		s.logger.Info("joined room on invite", "room_id", roomID)
	}
}

// SyncPosition returns the current sync stream position token.
func (s *Stream) SyncPosition() string {
	return s.nextBatch
}
