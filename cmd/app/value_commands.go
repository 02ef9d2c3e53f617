package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealkeeper/cmd/app/commands"
	"github.com/allisson/sealkeeper/internal/app"
)

func keyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "key",
		Aliases:  []string{"k"},
		Required: true,
		Usage:    "Shared value key",
	}
}

func getValueCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "seal",
			Usage: "Seal stdin for one or more owners",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "owners",
					Required: true,
					Usage:    "Comma-separated owner IDs",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					seal, err := container.SealUseCase()
					if err != nil {
						return err
					}
					return commands.RunSeal(ctx, seal, container.Logger(), commands.DefaultIO(), cmd.String("owners"))
				})
			},
		},
		{
			Name:  "unseal",
			Usage: "Unseal stdin with the owner's key pair",
			Flags: []cli.Flag{ownerFlag(), passphraseFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					seal, err := container.SealUseCase()
					if err != nil {
						return err
					}
					cfg := container.Config()
					return commands.RunUnseal(
						ctx,
						seal,
						commands.DefaultIO(),
						ownerOrDefault(cmd, cfg),
						passphraseOrDefault(cmd, cfg),
					)
				})
			},
		},
		{
			Name:  "shared-value",
			Usage: "Manage the owner's shared values",
			Commands: []*cli.Command{
				{
					Name:  "set",
					Usage: "Store stdin under key",
					Flags: []cli.Flag{ownerFlag(), keyFlag()},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withContainer(ctx, func(container *app.Container) error {
							sharedValues, err := container.SharedValueUseCase()
							if err != nil {
								return err
							}
							return commands.RunSetSharedValue(
								ctx,
								sharedValues,
								container.Logger(),
								commands.DefaultIO(),
								ownerOrDefault(cmd, container.Config()),
								cmd.String("key"),
							)
						})
					},
				},
				{
					Name:  "get",
					Usage: "Print the value stored under key",
					Flags: []cli.Flag{ownerFlag(), passphraseFlag(), keyFlag()},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withContainer(ctx, func(container *app.Container) error {
							sharedValues, err := container.SharedValueUseCase()
							if err != nil {
								return err
							}
							cfg := container.Config()
							return commands.RunGetSharedValue(
								ctx,
								sharedValues,
								commands.DefaultIO().Writer,
								ownerOrDefault(cmd, cfg),
								cmd.String("key"),
								passphraseOrDefault(cmd, cfg),
							)
						})
					},
				},
				{
					Name:  "delete",
					Usage: "Remove the value stored under key",
					Flags: []cli.Flag{ownerFlag(), keyFlag()},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withContainer(ctx, func(container *app.Container) error {
							sharedValues, err := container.SharedValueUseCase()
							if err != nil {
								return err
							}
							return commands.RunDeleteSharedValue(
								ctx,
								sharedValues,
								container.Logger(),
								ownerOrDefault(cmd, container.Config()),
								cmd.String("key"),
							)
						})
					},
				},
				{
					Name:  "list",
					Usage: "List the owner's shared value keys",
					Flags: []cli.Flag{ownerFlag(), formatFlag()},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withContainer(ctx, func(container *app.Container) error {
							sharedValues, err := container.SharedValueUseCase()
							if err != nil {
								return err
							}
							return commands.RunListSharedValues(
								ctx,
								sharedValues,
								commands.DefaultIO().Writer,
								ownerOrDefault(cmd, container.Config()),
								cmd.String("format"),
							)
						})
					},
				},
			},
		},
	}
}
