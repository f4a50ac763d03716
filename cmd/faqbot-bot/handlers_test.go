// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/faqbot-project/faqbot/lib/authorization"
	"github.com/faqbot-project/faqbot/lib/ref"
	"github.com/faqbot-project/faqbot/lib/rules"
	"github.com/faqbot-project/faqbot/messaging"
)

var (
	botUser   = ref.MustParseUserID("@faqbot:test.local")
	adminUser = ref.MustParseUserID("@admin:test.local")
	guestUser = ref.MustParseUserID("@guest:test.local")
	testRoom  = ref.MustParseRoomID("!room:test.local")
)

// fakeSession records messages the bot sends and serves canned display
// names. Sync is unused by the handlers under test.
type fakeSession struct {
	displayNames   map[ref.UserID]string
	displayNameErr error
	sent           []string
	sendErr        error
}

func (f *fakeSession) UserID() ref.UserID { return botUser }
func (f *fakeSession) Close() error       { return nil }

func (f *fakeSession) WhoAmI(context.Context) (ref.UserID, error) {
	return botUser, nil
}

func (f *fakeSession) SendMessage(_ context.Context, _ ref.RoomID, content messaging.MessageContent) (ref.EventID, error) {
	if f.sendErr != nil {
		return ref.EventID{}, f.sendErr
	}
	f.sent = append(f.sent, content.Body)
	return ref.EventID{}, nil
}

func (f *fakeSession) JoinRoom(_ context.Context, roomID ref.RoomID) (ref.RoomID, error) {
	return roomID, nil
}

func (f *fakeSession) JoinedRooms(context.Context) ([]ref.RoomID, error) {
	return []ref.RoomID{testRoom}, nil
}

func (f *fakeSession) GetDisplayName(_ context.Context, userID ref.UserID) (string, error) {
	if f.displayNameErr != nil {
		return "", f.displayNameErr
	}
	return f.displayNames[userID], nil
}

func (f *fakeSession) Sync(context.Context, messaging.SyncOptions) (*messaging.SyncResponse, error) {
	return nil, errors.New("not implemented")
}

func testBot(t *testing.T) (*Bot, *fakeSession) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	store, err := rules.NewStore(filepath.Join(t.TempDir(), "qa.json"), logger)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	gate, err := authorization.NewGate(adminUser)
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}
	session := &fakeSession{displayNames: map[ref.UserID]string{}}
	return &Bot{session: session, store: store, gate: gate, logger: logger}, session
}

func message(sender ref.UserID, body string) messaging.Event {
	return messaging.Event{
		Type:    "m.room.message",
		Sender:  sender,
		RoomID:  testRoom,
		Content: map[string]any{"msgtype": "m.text", "body": body},
	}
}

// lastReply returns the most recent message the bot sent, failing the
// test if it sent nothing.
func lastReply(t *testing.T, session *fakeSession) string {
	t.Helper()
	if len(session.sent) == 0 {
		t.Fatal("expected the bot to reply")
	}
	return session.sent[len(session.sent)-1]
}

func TestStartCommand(t *testing.T) {
	t.Run("greets by display name", func(t *testing.T) {
		bot, session := testBot(t)
		session.displayNames[guestUser] = "Guest Person"

		bot.HandleEvent(context.Background(), message(guestUser, "!start"))

		reply := lastReply(t, session)
		if !strings.Contains(reply, "Guest Person") {
			t.Errorf("greeting should use display name, got %q", reply)
		}
		if !strings.Contains(reply, "price, location, or delivery") {
			t.Errorf("greeting should list example topics, got %q", reply)
		}
	})

	t.Run("falls back to localpart", func(t *testing.T) {
		bot, session := testBot(t)
		session.displayNameErr = errors.New("profile lookup failed")

		bot.HandleEvent(context.Background(), message(guestUser, "!start"))

		if reply := lastReply(t, session); !strings.Contains(reply, "guest") {
			t.Errorf("greeting should fall back to localpart, got %q", reply)
		}
	})
}

func TestCapsCommand(t *testing.T) {
	t.Run("uppercases arguments", func(t *testing.T) {
		bot, session := testBot(t)
		bot.HandleEvent(context.Background(), message(guestUser, "!caps hello world"))
		if reply := lastReply(t, session); reply != "HELLO WORLD" {
			t.Errorf("expected HELLO WORLD, got %q", reply)
		}
	})

	t.Run("usage hint without arguments", func(t *testing.T) {
		bot, session := testBot(t)
		bot.HandleEvent(context.Background(), message(guestUser, "!caps"))
		if reply := lastReply(t, session); reply != replyCapsUsage {
			t.Errorf("expected usage hint, got %q", reply)
		}
	})
}

func TestAddCommand(t *testing.T) {
	t.Run("admin adds a rule", func(t *testing.T) {
		bot, session := testBot(t)
		bot.HandleEvent(context.Background(), message(adminUser, "!add Hours | We open at 9am"))

		if reply := lastReply(t, session); !strings.Contains(reply, "hours") {
			t.Errorf("confirmation should name the canonical keyword, got %q", reply)
		}
		if got := bot.store.Snapshot()["hours"]; got != "We open at 9am" {
			t.Errorf("rule not persisted, snapshot has %q", got)
		}
	})

	t.Run("non-admin is refused", func(t *testing.T) {
		bot, session := testBot(t)
		bot.HandleEvent(context.Background(), message(guestUser, "!add hours | closed"))

		if reply := lastReply(t, session); reply != replyNotAuthorized {
			t.Errorf("expected authorization refusal, got %q", reply)
		}
		if len(bot.store.Snapshot()) != 0 {
			t.Error("refused command must not write a rule")
		}
	})

	t.Run("missing pipe separator", func(t *testing.T) {
		bot, session := testBot(t)
		bot.HandleEvent(context.Background(), message(adminUser, "!add hours We open at 9am"))
		if reply := lastReply(t, session); reply != replyAddUsage {
			t.Errorf("expected format hint, got %q", reply)
		}
	})

	t.Run("empty keyword or response", func(t *testing.T) {
		bot, session := testBot(t)
		for _, body := range []string{"!add | response", "!add keyword |", "!add  |  "} {
			bot.HandleEvent(context.Background(), message(adminUser, body))
			if reply := lastReply(t, session); reply != replyAddEmpty {
				t.Errorf("%q: expected empty-rule refusal, got %q", body, reply)
			}
		}
		if len(bot.store.Snapshot()) != 0 {
			t.Error("invalid rules must not be written")
		}
	})

	t.Run("response may contain pipes", func(t *testing.T) {
		bot, _ := testBot(t)
		bot.HandleEvent(context.Background(), message(adminUser, "!add shell | use a | b | c"))
		if got := bot.store.Snapshot()["shell"]; got != "use a | b | c" {
			t.Errorf("pipes after the first should survive, got %q", got)
		}
	})
}

func TestCommandLogging(t *testing.T) {
	var logBuffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuffer, nil))
	store, err := rules.NewStore(filepath.Join(t.TempDir(), "qa.json"), logger)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	gate, err := authorization.NewGate(adminUser)
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}
	session := &fakeSession{displayNames: map[ref.UserID]string{}}
	bot := &Bot{session: session, store: store, gate: gate, logger: logger}

	bot.HandleEvent(context.Background(), message(guestUser, "!caps hello"))

	logged := logBuffer.String()
	if !strings.Contains(logged, "command received") {
		t.Errorf("expected a command log entry, got %q", logged)
	}
	if !strings.Contains(logged, "command=caps") {
		t.Errorf("log entry should name the command, got %q", logged)
	}
	if !strings.Contains(logged, guestUser.String()) {
		t.Errorf("log entry should name the sender, got %q", logged)
	}
}

func TestUnknownCommand(t *testing.T) {
	bot, session := testBot(t)
	bot.HandleEvent(context.Background(), message(guestUser, "!frobnicate"))
	if reply := lastReply(t, session); reply != replyUnknownCommand {
		t.Errorf("expected unknown-command reply, got %q", reply)
	}
}

func TestFreeText(t *testing.T) {
	t.Run("matches a keyword rule", func(t *testing.T) {
		bot, session := testBot(t)
		if err := bot.store.Upsert("hours", "We open at 9am"); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		bot.HandleEvent(context.Background(), message(guestUser, "What are your HOURS today?"))
		if reply := lastReply(t, session); reply != "We open at 9am" {
			t.Errorf("expected rule response, got %q", reply)
		}
	})

	t.Run("no matching rule", func(t *testing.T) {
		bot, session := testBot(t)
		bot.HandleEvent(context.Background(), message(guestUser, "completely unrelated"))
		if reply := lastReply(t, session); reply != replyNoMatch {
			t.Errorf("expected fallback reply, got %q", reply)
		}
	})

	t.Run("blank message is ignored", func(t *testing.T) {
		bot, session := testBot(t)
		bot.HandleEvent(context.Background(), message(guestUser, "   "))
		if len(session.sent) != 0 {
			t.Errorf("expected silence, got %q", session.sent)
		}
	})
}

func TestOwnMessagesIgnored(t *testing.T) {
	bot, session := testBot(t)
	if err := bot.store.Upsert("sorry", "sorry again"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// A reply loop would trigger here: the rule's keyword appears in
	// the bot's own fallback reply.
	bot.HandleEvent(context.Background(), message(botUser, "Sorry, I don't understand."))
	if len(session.sent) != 0 {
		t.Errorf("bot must not answer its own messages, sent %q", session.sent)
	}
}

func TestNonTextEventsIgnored(t *testing.T) {
	bot, session := testBot(t)
	event := messaging.Event{
		Type:    "m.room.message",
		Sender:  guestUser,
		RoomID:  testRoom,
		Content: map[string]any{"msgtype": "m.image", "url": "mxc://test/abc"},
	}
	bot.HandleEvent(context.Background(), event)
	if len(session.sent) != 0 {
		t.Errorf("expected silence for bodyless event, got %q", session.sent)
	}
}
