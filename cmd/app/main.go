// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealkeeper/internal/app"
	"github.com/allisson/sealkeeper/internal/config"
	apperrors "github.com/allisson/sealkeeper/internal/errors"
)

// version is overridden at build time with -ldflags.
var version = "dev"

func main() {
	cmds := getSystemCommands(version)
	cmds = append(cmds, getKeyPairCommands()...)
	cmds = append(cmds, getConsentCommands()...)
	cmds = append(cmds, getValueCommands()...)

	cmd := &cli.Command{
		Name:     "sealkeeper",
		Usage:    "Per-owner key pairs, sealed values and recryption consent",
		Version:  version,
		Commands: cmds,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(apperrors.ExitCode(err))
	}
}

// withContainer runs fn against a fresh container and shuts it down afterwards.
func withContainer(ctx context.Context, fn func(container *app.Container) error) error {
	container := app.NewContainer(config.Load())
	defer func() {
		if err := container.Shutdown(ctx); err != nil {
			container.Logger().Error("failed to shutdown container", slog.Any("error", err))
		}
	}()
	return fn(container)
}

func ownerFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "owner",
		Aliases: []string{"o"},
		Usage:   "Owner ID (defaults to OWNER_ID)",
	}
}

func passphraseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "passphrase",
		Aliases: []string{"p"},
		Usage:   "Login passphrase (defaults to OWNER_PASSPHRASE)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

// ownerOrDefault returns the --owner flag, falling back to the configured owner.
func ownerOrDefault(cmd *cli.Command, cfg *config.Config) string {
	if owner := cmd.String("owner"); owner != "" {
		return owner
	}
	return cfg.OwnerID
}

func passphraseOrDefault(cmd *cli.Command, cfg *config.Config) string {
	if passphrase := cmd.String("passphrase"); passphrase != "" {
		return passphrase
	}
	return cfg.OwnerPassphrase
}
