// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

// Faqbot-api is the HTTP surface of the shared rules store. It exposes
// the full mapping at GET /qa, accepts new rules at POST /qa, and
// uppercases suggestion queries at GET /suggest.
//
// The rules file is shared with faqbot-bot: a rule saved here answers
// chat messages immediately, and rules added with the !add chat command
// show up in GET /qa. POST /qa can be guarded with a shared bearer
// token (api.token_path in the config); without one, the service must
// only be reachable on a trusted network.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/faqbot-project/faqbot/lib/config"
	"github.com/faqbot-project/faqbot/lib/process"
	"github.com/faqbot-project/faqbot/lib/rules"
	"github.com/faqbot-project/faqbot/lib/secret"
	"github.com/faqbot-project/faqbot/lib/service"
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
	if err := cfg.ValidateAPI(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := rules.NewStore(cfg.RulesPath, logger)
	if err != nil {
		return err
	}

	var apiToken []byte
	if cfg.API.TokenPath != "" {
		tokenBuffer, err := secret.ReadFromPath(cfg.API.TokenPath)
		if err != nil {
			return fmt.Errorf("reading api token from %s: %w", cfg.API.TokenPath, err)
		}
		defer tokenBuffer.Close()
		apiToken = tokenBuffer.Bytes()
	} else {
		logger.Warn("api token not configured, POST /qa is unauthenticated")
	}

	server := service.NewHTTPServer(service.HTTPServerConfig{
		Address: cfg.API.Listen,
		Handler: newAPIHandler(store, apiToken, logger),
		Logger:  logger,
	})

	logger.Info("faqbot api starting",
		"listen", cfg.API.Listen,
		"rules_path", store.Path(),
		"auth", apiToken != nil,
	)

	return server.Serve(ctx)
}
