package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"

	"github.com/allisson/sealkeeper/cmd/app/commands"
	"github.com/allisson/sealkeeper/internal/app"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "serve",
			Usage: "Run the outbox processor and the metrics/health server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					cfg := container.Config()
					gin.SetMode(cfg.GetGinMode())

					logger := container.Logger()
					logger.Info("starting sealkeeper", slog.String("version", version))

					server, err := container.MetricsServer()
					if err != nil {
						return fmt.Errorf("failed to initialize metrics server: %w", err)
					}
					outbox, err := container.OutboxUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize outbox processor: %w", err)
					}

					ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
					defer cancel()

					return commands.RunServe(ctx, logger, server, outbox, cfg.DBConnMaxLifetime)
				})
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "steps",
					Value: 0,
					Usage: "Migrate by this many steps; negative rolls back, 0 applies all",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					cfg := container.Config()
					return commands.RunMigrations(
						container.Logger(),
						cfg.DBDriver,
						cfg.DBConnectionString,
						int(cmd.Int("steps")),
					)
				})
			},
		},
	}
}
