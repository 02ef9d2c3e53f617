package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealkeeper/cmd/app/commands"
	"github.com/allisson/sealkeeper/internal/app"
)

func getKeyPairCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "init-key-pair",
			Usage: "Create the owner's key pair if it does not exist yet",
			Flags: []cli.Flag{ownerFlag(), passphraseFlag(), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					keyLifecycle, err := container.KeyLifecycleUseCase()
					if err != nil {
						return err
					}
					return commands.RunInitKeyPair(
						ctx,
						keyLifecycle,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("owner"),
						cmd.String("passphrase"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "rotate-key-pair",
			Usage: "Replace the owner's key pair and re-encrypt its shared values",
			Flags: []cli.Flag{
				ownerFlag(),
				passphraseFlag(),
				&cli.StringFlag{
					Name:  "old-passphrase",
					Usage: "Passphrase of the current key pair (defaults to --passphrase)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					keyLifecycle, err := container.KeyLifecycleUseCase()
					if err != nil {
						return err
					}
					return commands.RunRotateKeyPair(
						ctx,
						keyLifecycle,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("owner"),
						cmd.String("passphrase"),
						cmd.String("old-passphrase"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "change-passphrase",
			Usage: "Re-lock the owner's private key under a new passphrase",
			Flags: []cli.Flag{
				ownerFlag(),
				passphraseFlag(),
				&cli.StringFlag{
					Name:     "new-passphrase",
					Required: true,
					Usage:    "New login passphrase",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					keyLifecycle, err := container.KeyLifecycleUseCase()
					if err != nil {
						return err
					}
					cfg := container.Config()
					return commands.RunChangePassphrase(
						ctx,
						keyLifecycle,
						container.Logger(),
						ownerOrDefault(cmd, cfg),
						passphraseOrDefault(cmd, cfg),
						cmd.String("new-passphrase"),
					)
				})
			},
		},
		{
			Name:  "restore-key-pair",
			Usage: "Restore the owner's key pair from a backup",
			Flags: []cli.Flag{
				ownerFlag(),
				&cli.StringFlag{
					Name:    "tag",
					Aliases: []string{"t"},
					Usage:   "Backup tag (defaults to the rotation backup)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					keyLifecycle, err := container.KeyLifecycleUseCase()
					if err != nil {
						return err
					}
					return commands.RunRestoreKeyPair(
						ctx,
						keyLifecycle,
						container.Logger(),
						ownerOrDefault(cmd, container.Config()),
						cmd.String("tag"),
					)
				})
			},
		},
		{
			Name:  "wipe-key-pair",
			Usage: "Delete the owner's key pair, backups and shared values",
			Flags: []cli.Flag{
				ownerFlag(),
				&cli.BoolFlag{
					Name:  "yes",
					Usage: "Confirm the irreversible deletion",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					keyLifecycle, err := container.KeyLifecycleUseCase()
					if err != nil {
						return err
					}
					return commands.RunWipeKeyPair(
						ctx,
						keyLifecycle,
						container.Logger(),
						ownerOrDefault(cmd, container.Config()),
						cmd.Bool("yes"),
					)
				})
			},
		},
	}
}
