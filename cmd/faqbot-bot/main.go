// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

// Faqbot-bot is the Matrix chat bot. It long-polls /sync for room
// messages and answers them from the shared rules file: command
// messages (!start, !caps, !add) get command replies, free text is
// matched against the keyword rules, and everything the bot sends goes
// back to the room the message came from.
//
// The rules file is shared with faqbot-api. Rules added through either
// surface are visible to the other without a restart, because the store
// re-reads the file on every lookup and rewrites it atomically.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/faqbot-project/faqbot/lib/authorization"
	"github.com/faqbot-project/faqbot/lib/config"
	"github.com/faqbot-project/faqbot/lib/process"
	"github.com/faqbot-project/faqbot/lib/ref"
	"github.com/faqbot-project/faqbot/lib/rules"
	"github.com/faqbot-project/faqbot/lib/secret"
	"github.com/faqbot-project/faqbot/messaging"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	configFlag := pflag.String("config", "", "path to the config file (overrides "+config.EnvConfigPath+")")
	pflag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	configPath, err := config.Locate(*configFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}
	admin, err := cfg.Admin()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	token, err := secret.ReadFromPath(cfg.TokenPath)
	if err != nil {
		return fmt.Errorf("reading access token from %s: %w", cfg.TokenPath, err)
	}
	defer token.Close()

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: cfg.HomeserverURL,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	// The token file carries no user ID; WhoAmI resolves the bot's own
	// identity and doubles as a startup validity check for the token.
	bootstrap, err := client.SessionFromToken(ref.UserID{}, token.String())
	if err != nil {
		return err
	}
	selfID, err := bootstrap.WhoAmI(ctx)
	if err != nil {
		bootstrap.Close()
		return fmt.Errorf("validating access token: %w", err)
	}
	bootstrap.Close()

	session, err := client.SessionFromToken(selfID, token.String())
	if err != nil {
		return err
	}
	defer session.Close()

	gate, err := authorization.NewGate(admin)
	if err != nil {
		return err
	}

	store, err := rules.NewStore(cfg.RulesPath, logger)
	if err != nil {
		return err
	}

	bot := &Bot{
		session: session,
		store:   store,
		gate:    gate,
		logger:  logger,
	}

	// OpenStream accepts any invitations pending at startup, so the
	// joined-rooms count reported here includes rooms the bot was
	// invited to while offline.
	stream, err := messaging.OpenStream(ctx, session, logger)
	if err != nil {
		return err
	}
	rooms, err := session.JoinedRooms(ctx)
	if err != nil {
		return fmt.Errorf("listing joined rooms: %w", err)
	}

	logger.Info("faqbot running",
		"user_id", selfID,
		"homeserver", cfg.HomeserverURL,
		"rules_path", store.Path(),
		"admin", admin,
		"rooms", len(rooms),
	)

	for {
		event, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("shutting down")
				return nil
			}
			return err
		}
		bot.HandleEvent(ctx, event)
	}
}
