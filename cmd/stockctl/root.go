package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/config"
	"github.com/light-bringer/inventory-service/internal/pkg/actor"
	"github.com/light-bringer/inventory-service/internal/pkg/logger"
	"github.com/light-bringer/inventory-service/internal/services"
)

var actorID string

var rootCmd = &cobra.Command{
	Use:           "stockctl",
	Short:         "Operator commands for the inventory service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "", "Actor id recorded on changes (empty means system)")
}

// withService loads configuration, wires the application and runs fn with it.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *services.ServiceOptions, out io.Writer) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := actor.WithActor(cmd.Context(), actorID)
	svc, err := services.NewServiceOptions(ctx, cfg, log.With(zap.String("component", "stockctl")))
	if err != nil {
		return err
	}
	defer svc.Close()

	return fn(ctx, svc, cmd.OutOrStdout())
}
