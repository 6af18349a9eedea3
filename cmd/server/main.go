// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

// Command server runs the Chargewatch monitor: a background poller that
// refreshes EV charging station status from the EVC gateway, and a
// read-only JSON API over the cached snapshots.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/chargewatch/chargewatch/internal/api"
	"github.com/chargewatch/chargewatch/internal/cache"
	"github.com/chargewatch/chargewatch/internal/config"
	"github.com/chargewatch/chargewatch/internal/evc"
	"github.com/chargewatch/chargewatch/internal/logging"
	"github.com/chargewatch/chargewatch/internal/poller"
	"github.com/chargewatch/chargewatch/internal/supervisor"
	"github.com/chargewatch/chargewatch/internal/supervisor/services"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (overrides CONFIG_PATH)")
	flag.Parse()

	if *configPath != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, *configPath); err != nil {
			logging.Fatal().Err(err).Msg("Cannot set config path")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Cannot load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Int("stations", len(cfg.Stations)).
		Int("refresh_interval_seconds", cfg.Refresh.IntervalSeconds).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting Chargewatch")

	client := evc.NewClient(evc.Config{
		BaseURL: cfg.EVC.BaseURL,
		APIKey:  cfg.EVC.APIKey,
		Timeout: cfg.EVC.Timeout,
	})

	snapshots := cache.New()
	stationPoller := poller.New(client, snapshots, cfg.Stations, cfg.Refresh.Interval())

	handler := api.NewHandler(snapshots, stationPoller, cfg)
	mw := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, mw)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), treeConfig)
	if err != nil {
		logging.Fatal().Err(err).Msg("Cannot build supervisor tree")
	}

	tree.AddPollService(services.NewPollerService(stationPoller))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := tree.ServeBackground(ctx)
	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Chargewatch is up")

	err = <-errCh
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree exited with error")
		os.Exit(1)
	}

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	logging.Info().Msg("Shutdown complete")
}
