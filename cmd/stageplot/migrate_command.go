package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abrezinsky/stageplot/internal/app"
	"github.com/abrezinsky/stageplot/internal/auth"
	"github.com/abrezinsky/stageplot/internal/migrate"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [plot-id...]",
		Short: "Upgrade stored plots to the current format",
		Long:  "Upgrade the given plots, or every plot and template when none are named, and write back any that changed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, auth.New(""), func(a *app.App) error {
				ids := args
				if len(ids) == 0 {
					all, err := allPlotIDs(cmd, a)
					if err != nil {
						return err
					}
					ids = all
				}

				out := cmd.OutOrStdout()
				changed := 0
				for _, id := range ids {
					res, err := a.Plots().Upgrade(cmd.Context(), id)
					if err != nil {
						return fmt.Errorf("migrate %s: %w", id, err)
					}
					if res.Changed() {
						changed++
					}
					fmt.Fprintf(out, "%s: %s\n", id, describeMigration(res))
				}
				fmt.Fprintf(out, "%d of %d plots upgraded\n", changed, len(ids))
				return nil
			})
		},
	}
}

func allPlotIDs(cmd *cobra.Command, a *app.App) ([]string, error) {
	plots, err := a.Plots().List(cmd.Context(), "")
	if err != nil {
		return nil, err
	}
	templates, err := a.Plots().ListTemplates(cmd.Context(), "")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(plots)+len(templates))
	for _, p := range append(plots, templates...) {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func describeMigration(res migrate.Result) string {
	var steps []string
	if res.ChannelsMigrated {
		steps = append(steps, "channels migrated")
	}
	if res.ChannelsBackfilled {
		steps = append(steps, "channels backfilled")
	}
	if res.CoordsMigrated {
		steps = append(steps, "coordinates migrated")
	}
	if len(steps) == 0 {
		return "up to date"
	}
	return strings.Join(steps, ", ")
}
