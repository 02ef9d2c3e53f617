package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sealkeeper/cmd/app/commands"
	"github.com/allisson/sealkeeper/internal/app"
)

func recryptionRequestAction(action string, flags ...cli.Flag) *cli.Command {
	return &cli.Command{
		Name:  action,
		Usage: "Apply '" + action + "' to the owner's recryption request",
		Flags: append([]cli.Flag{ownerFlag(), formatFlag()}, flags...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withContainer(ctx, func(container *app.Container) error {
				consent, err := container.RecryptionConsentUseCase()
				if err != nil {
					return err
				}
				return commands.RunRecryptionRequest(
					ctx,
					consent,
					container.Logger(),
					commands.DefaultIO().Writer,
					action,
					ownerOrDefault(cmd, container.Config()),
					cmd.Bool("allow-protest"),
					cmd.String("format"),
				)
			})
		},
	}
}

func getConsentCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "recryption-request",
			Usage: "Drive the recryption consent workflow",
			Commands: []*cli.Command{
				recryptionRequestAction(commands.RequestActionPush),
				recryptionRequestAction(commands.RequestActionAccept),
				recryptionRequestAction(commands.RequestActionDecline),
				recryptionRequestAction(commands.RequestActionDeny, &cli.BoolFlag{
					Name:  "allow-protest",
					Usage: "Let the owner protest the denial",
				}),
				recryptionRequestAction(commands.RequestActionProtest),
				recryptionRequestAction(commands.RequestActionHandled),
				recryptionRequestAction(commands.RequestActionStatus),
			},
		},
		{
			Name:  "notifications",
			Usage: "List unprocessed notifications of a recipient",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "recipient",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Recipient ID",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					consent, err := container.RecryptionConsentUseCase()
					if err != nil {
						return err
					}
					return commands.RunListNotifications(
						ctx,
						consent,
						commands.DefaultIO().Writer,
						cmd.String("recipient"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
