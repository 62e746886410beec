package cmd

import (
	"github.com/kerbaras/comics/pkg/app"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read [series-name]",
	Short: "Open a series in the reader",
	Long: `Open a series straight in the reader. Without --chapter the series resumes at
the chapter read most recently, or at the first one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chapter, _ := cmd.Flags().GetInt("chapter")

		env, err := openLibrary(true)
		if err != nil {
			return err
		}
		defer env.Close()

		series, err := env.findSeries(args[0])
		if err != nil {
			return err
		}

		// --chapter is 1-based; 0 resumes
		return app.NewApp(env.controller, env.exporter(), env.logger).Read(cmd.Context(), series.ID, chapter-1)
	},
}

func init() {
	readCmd.Flags().IntP("chapter", "c", 0, "Chapter to open, counting from 1")
}
