package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abrezinsky/stageplot/internal/app"
	"github.com/abrezinsky/stageplot/internal/auth"
)

func newShareCommand(ctx *commandContext) *cobra.Command {
	shareCmd := &cobra.Command{
		Use:   "share",
		Short: "Encode and decode share links",
	}

	shareCmd.AddCommand(newShareEncodeCommand(ctx))
	shareCmd.AddCommand(newShareDecodeCommand(ctx))
	shareCmd.AddCommand(newShareQRCommand(ctx))
	return shareCmd
}

func newShareEncodeCommand(ctx *commandContext) *cobra.Command {
	var payloadOnly bool

	cmd := &cobra.Command{
		Use:   "encode <plot-id>",
		Short: "Print the share link for a plot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, auth.New(""), func(a *app.App) error {
				link, err := a.Share().Encode(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if payloadOnly || link.URL == "" {
					fmt.Fprintln(cmd.OutOrStdout(), link.Payload)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), link.URL)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&payloadOnly, "payload", false, "Print only the encoded payload")
	return cmd
}

func newShareDecodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <payload|url>",
		Short: "Decode a share payload or link to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, auth.New(""), func(a *app.App) error {
				decoded, err := a.Share().Decode(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				return writeJSON(cmd, decoded)
			})
		},
	}
}

func newShareQRCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "qr <plot-id>",
		Short: "Write a QR code PNG of a plot's share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, auth.New(""), func(a *app.App) error {
				png, err := a.Share().QRCode(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				target := outPath
				if target == "" {
					target = args[0] + ".png"
				}
				if err := os.WriteFile(target, png, 0o644); err != nil {
					return fmt.Errorf("write QR code: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote QR code to %s\n", target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination PNG (default <plot-id>.png)")
	return cmd
}
