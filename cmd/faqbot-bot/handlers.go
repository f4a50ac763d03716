// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/faqbot-project/faqbot/lib/authorization"
	"github.com/faqbot-project/faqbot/lib/rules"
	"github.com/faqbot-project/faqbot/messaging"
)

// commandPrefix marks a message as a bot command. Matrix clients
// intercept the IRC-style "/" prefix for their own commands, so the
// bot uses "!" the way most Matrix bots do.
const commandPrefix = "!"

// Canned replies. Kept as constants so handler tests can assert on
// them without duplicating strings.
const (
	replyNotAuthorized    = "You are not authorized to use this command."
	replyAddUsage         = "Use format: !add keyword | response"
	replyAddEmpty         = "Keyword and response cannot be empty."
	replyCapsUsage        = "Usage: !caps <text>"
	replyUnknownCommand   = "Sorry, I didn't understand that command."
	replyNoMatch          = "Sorry, I don't understand."
	replyInternalError    = "An error occurred. Please try again later."
	greetingTopicsListing = "Ask me about price, location, or delivery."
)

// Bot routes incoming room messages to handlers and sends the replies.
type Bot struct {
	session messaging.Session
	store   *rules.Store
	gate    *authorization.Gate
	logger  *slog.Logger
}

// HandleEvent processes one m.room.message event. Each event is its own
// failure domain: a panic or send error in one handler is logged and
// answered with a generic apology, and the event loop moves on to the
// next message.
func (b *Bot) HandleEvent(ctx context.Context, event messaging.Event) {
	// The bot's own replies come back through /sync. Without this
	// check a rule whose keyword appears in its own response would
	// make the bot talk to itself forever.
	if event.Sender == b.session.UserID() {
		return
	}

	body, ok := event.MessageBody()
	if !ok {
		return
	}

	defer func() {
		if panicked := recover(); panicked != nil {
			b.logger.Error("handler panic",
				"room_id", event.RoomID,
				"sender", event.Sender,
				"panic", panicked,
			)
			b.reply(ctx, event, replyInternalError)
		}
	}()

	reply, handled := b.dispatch(ctx, event, body)
	if !handled {
		return
	}
	b.reply(ctx, event, reply)
}

// dispatch computes the reply for a message body. The second return is
// false when the bot should stay silent (blank messages).
func (b *Bot) dispatch(ctx context.Context, event messaging.Event, body string) (string, bool) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "", false
	}

	if strings.HasPrefix(trimmed, commandPrefix) {
		command, args, _ := strings.Cut(trimmed[len(commandPrefix):], " ")
		b.logger.Info("command received",
			"command", strings.ToLower(command),
			"sender", event.Sender,
			"room_id", event.RoomID,
		)
		switch strings.ToLower(command) {
		case "start":
			return b.handleStart(ctx, event), true
		case "caps":
			return handleCaps(args), true
		case "add":
			return b.handleAdd(event, args), true
		default:
			return replyUnknownCommand, true
		}
	}

	return b.handleFreeText(trimmed), true
}

// handleStart greets the sender by display name, falling back to the
// localpart of their user ID when no display name is set or the profile
// lookup fails.
func (b *Bot) handleStart(ctx context.Context, event messaging.Event) string {
	name, err := b.session.GetDisplayName(ctx, event.Sender)
	if err != nil {
		b.logger.Warn("display name lookup failed",
			"user_id", event.Sender,
			"error", err,
		)
	}
	if name == "" {
		name = event.Sender.Localpart()
	}
	return fmt.Sprintf("Hi %s! %s", name, greetingTopicsListing)
}

// handleCaps echoes the argument text in uppercase.
func handleCaps(args string) string {
	text := strings.TrimSpace(args)
	if text == "" {
		return replyCapsUsage
	}
	return strings.ToUpper(text)
}

// handleAdd saves a keyword rule. Admin-only: the gate compares the
// sender against the configured admin identity. The argument format is
// "keyword | response", split on the first pipe so responses may
// contain pipes.
func (b *Bot) handleAdd(event messaging.Event, args string) string {
	if !b.gate.Allow(event.Sender) {
		b.logger.Warn("unauthorized add attempt",
			"sender", event.Sender,
			"room_id", event.RoomID,
		)
		return replyNotAuthorized
	}

	keyword, response, found := strings.Cut(args, "|")
	if !found {
		return replyAddUsage
	}

	if err := b.store.Upsert(keyword, strings.TrimSpace(response)); err != nil {
		if rules.IsValidationError(err) {
			return replyAddEmpty
		}
		b.logger.Error("rule save failed",
			"sender", event.Sender,
			"error", err,
		)
		return replyInternalError
	}

	return fmt.Sprintf("Saved: %q will now answer %q.", rules.Canonicalize(keyword), strings.TrimSpace(response))
}

// handleFreeText answers a non-command message from the keyword rules.
// Matching is case-insensitive substring containment over the current
// durable mapping, so rules added by the API service moments ago apply
// here without a restart.
func (b *Bot) handleFreeText(body string) string {
	response, ok := rules.Match(strings.ToLower(body), b.store.Snapshot())
	if !ok {
		return replyNoMatch
	}
	return response
}

func (b *Bot) reply(ctx context.Context, event messaging.Event, text string) {
	if _, err := b.session.SendMessage(ctx, event.RoomID, messaging.NewTextMessage(text)); err != nil {
		b.logger.Error("reply failed",
			"room_id", event.RoomID,
			"error", err,
		)
	}
}
