// Package main provides the main entry point for the feedback board admin CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"feedbackboard/cmd/adm/commands"
	"feedbackboard/internal/config"
	"feedbackboard/internal/database"
	"feedbackboard/internal/di"
	"feedbackboard/internal/observability"
	contextutils "feedbackboard/internal/utils"
)

const serviceName = "feedback-admin"

func main() {
	ctx := context.Background()

	// Set default config file if not already set
	if os.Getenv(config.ConfigFileEnv) == "" {
		defaultPaths := []string{
			"../../" + config.DefaultConfigFile, // From cmd/adm/
			config.DefaultConfigFile,            // Current directory
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := os.Setenv(config.ConfigFileEnv, path); err != nil {
					fmt.Fprintf(os.Stderr, "Failed to set %s environment variable: %v\n", config.ConfigFileEnv, err)
					os.Exit(1)
				}
				break
			}
		}
	}

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override log level for admin tool
	cfg.Server.LogLevel = "error"

	// Disable all OpenTelemetry features for admin CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	tp, mp, logger, err := observability.SetupObservabilityWithLevel(&cfg.OpenTelemetry, serviceName, cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := observability.ShutdownProviders(context.TODO(), tp, mp); err != nil {
			logger.Warn(ctx, "Error shutting down telemetry providers", map[string]interface{}{"error": err.Error()})
		}
	}()

	container := di.NewServiceContainer(cfg, logger)
	if err := container.Initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := container.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "Error shutting down services", map[string]interface{}{"error": err.Error()})
		}
	}()

	registry, err := container.GetBoardRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get board registry: %v\n", err)
		os.Exit(1)
	}

	opts := commands.NewOptions(contextutils.ParseLocale(cfg.Board.Locale))
	rootCmd := commands.NewRootCommand(commands.Dependencies{
		Config:      cfg,
		Registry:    registry,
		DB:          container.GetDatabase(),
		Migrator:    database.NewManager(logger),
		Logger:      logger,
		ServiceName: serviceName,
	}, opts)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
