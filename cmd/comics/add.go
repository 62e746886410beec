package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [series-name] [path...]",
	Short: "Add comics to your library",
	Long: `Attach archives to a series. Directories contribute every supported archive
directly inside them, ordered by name. Adding to an existing series appends
the new chapters after the ones already attached.

Examples:
  comics add "Akira" ~/comics/akira
  comics add "Akira" ~/comics/akira-vol7.cbz`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openLibrary(false)
		if err != nil {
			return err
		}
		defer env.Close()

		series, err := env.controller.AddSeries(args[0], args[1:])
		if err != nil {
			return err
		}

		fmt.Printf("✅ %s now has %d chapter(s)\n", series.Name, len(series.Chapters))
		fmt.Printf("💡 Start reading with: comics read %q\n", series.Name)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove [series-name]",
	Aliases: []string{"rm"},
	Short:   "Remove a series from your library",
	Long:    "Forget a series and its reading progress. The archives on disk are left alone.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openLibrary(false)
		if err != nil {
			return err
		}
		defer env.Close()

		series, err := env.findSeries(args[0])
		if err != nil {
			return err
		}
		if err := env.controller.DeleteSeries(series.ID); err != nil {
			return err
		}

		fmt.Printf("🗑️  Removed %s\n", series.Name)
		return nil
	},
}
