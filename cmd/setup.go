package cmd

import (
	"fmt"

	"lair-scanner/core/api"
	"lair-scanner/core/config"
	"lair-scanner/core/logger"

	"go.uber.org/zap"
)

// app holds what every command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *api.Client
}

func setup() (*app, error) {
	cfg, err := config.LoadConfig(envDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := api.NewClient(cfg.API)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return &app{cfg: cfg, logger: l, client: client}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
