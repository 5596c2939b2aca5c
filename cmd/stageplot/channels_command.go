package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abrezinsky/stageplot/internal/app"
	"github.com/abrezinsky/stageplot/internal/auth"
	"github.com/abrezinsky/stageplot/internal/models"
)

func newChannelsCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "channels <plot-id>",
		Short: "Print a plot's input patch list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, auth.New(""), func(a *app.App) error {
				chs, err := a.Plots().Channels(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !all {
					chs = usedChannels(chs)
				}
				if asJSON {
					return writeJSON(cmd, chs)
				}
				if len(chs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No channels patched")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderChannels(chs))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include empty channels")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// usedChannels keeps channels with an item or a name
func usedChannels(chs []models.InputChannel) []models.InputChannel {
	out := make([]models.InputChannel, 0, len(chs))
	for _, ch := range chs {
		if ch.ItemID != nil || ch.Name != "" {
			out = append(out, ch)
		}
	}
	return out
}

func renderChannels(chs []models.InputChannel) string {
	rows := make([][]string, 0, len(chs))
	for _, ch := range chs {
		item := ""
		if ch.ItemID != nil {
			item = strconv.Itoa(*ch.ItemID)
		}
		rows = append(rows, []string{
			strconv.Itoa(ch.ChannelNum),
			ch.Name,
			ch.ShortName,
			ch.Color,
			yesNo(ch.Phantom),
			item,
		})
	}
	return renderTable(
		[]string{"Ch", "Name", "Short", "Color", "48V", "Item"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
