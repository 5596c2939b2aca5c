package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abrezinsky/stageplot/internal/app"
	"github.com/abrezinsky/stageplot/internal/auth"
)

func newSceneCommand(ctx *commandContext) *cobra.Command {
	var outDir string
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "scene <plot-id>",
		Short: "Export a plot's input patch as an X32 scene file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, auth.New(""), func(a *app.App) error {
				file, err := a.Plots().ExportScene(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if toStdout {
					fmt.Fprint(cmd.OutOrStdout(), file.Content)
					return nil
				}
				target := filepath.Join(outDir, file.Filename)
				if err := os.WriteFile(target, []byte(file.Content), 0o644); err != nil {
					return fmt.Errorf("write scene: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote scene to %s\n", target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "dir", "d", ".", "Directory to write the scene file into")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the scene instead of writing a file")
	return cmd
}
