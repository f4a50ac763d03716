// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

// Faqbot-login obtains a Matrix access token for the bot account and
// writes it to the token file named by the config. Run it once when
// setting up a deployment; faqbot-bot then reads the token at startup
// instead of holding the account password.
//
// The password is prompted without echo and held in mmap-backed memory
// for the duration of the login call. The token file is written with
// mode 0600.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/faqbot-project/faqbot/lib/config"
	"github.com/faqbot-project/faqbot/lib/process"
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
	userFlag := pflag.String("user", "", "Matrix username to log in as (localpart or full user ID)")
	pflag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *userFlag == "" {
		return fmt.Errorf("--user is required")
	}

	configPath, err := config.Locate(*configFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.HomeserverURL == "" {
		return fmt.Errorf("config: homeserver_url is required")
	}
	if cfg.TokenPath == "" {
		return fmt.Errorf("config: token_path is required")
	}

	password, err := promptPassword(*userFlag)
	if err != nil {
		return err
	}
	defer password.Close()

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: cfg.HomeserverURL,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	session, err := client.Login(context.Background(), *userFlag, password)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := os.WriteFile(cfg.TokenPath, []byte(session.AccessToken()+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token file %s: %w", cfg.TokenPath, err)
	}

	fmt.Printf("Logged in as %s; token written to %s\n", session.UserID(), cfg.TokenPath)
	return nil
}

// promptPassword reads the account password from the terminal without
// echo, moving it into protected memory immediately. Falls back to a
// line read when stdin is not a terminal (piped input in scripts).
func promptPassword(user string) (*secret.Buffer, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return secret.ReadFromPath("-")
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", user)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("password is empty")
	}

	// NewFromBytes zeros raw after copying it into the mmap buffer.
	return secret.NewFromBytes(raw)
}
