package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Evzheva/chatbot-for-dating/internal/config"
	"github.com/Evzheva/chatbot-for-dating/internal/infra/logger"
	pgrepo "github.com/Evzheva/chatbot-for-dating/internal/repo/postgres"
)

const app = "matchctl"

type options struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           app,
		Short:         "matchctl is the operator tool for the school matchmaking bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultPath := os.Getenv("APP_CONFIG")
	if defaultPath == "" {
		defaultPath = "configs/config.yaml"
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultPath, "path to the yaml config")

	root.AddCommand(
		newMigrateCmd(opts),
		newStatsCmd(opts),
		newActionsCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

func (o *options) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Env, app)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func (o *options) connect(ctx context.Context) (*pgxpool.Pool, *zap.Logger, error) {
	cfg, log, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, log, nil
}
