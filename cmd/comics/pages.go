package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kerbaras/comics/pkg/archive"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/spf13/cobra"
)

var pagesCmd = &cobra.Command{
	Use:   "pages [archive]",
	Short: "List the pages of a comic archive",
	Long: `Decode an archive the way the reader does and print its pages in reading order.

Examples:
  comics pages ch1.cbz
  comics pages ch1.cbr --ordering natural`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		opts := cfg.ArchiveOptions()
		if name, _ := cmd.Flags().GetString("ordering"); name != "" {
			ordering, err := archive.ParseOrdering(name)
			if err != nil {
				return err
			}
			opts.ZipOrdering = ordering
			opts.RarOrdering = ordering
		}

		file := args[0]
		start := time.Now()
		chapter, err := archive.NewDispatcher(opts).Dispatch(cmd.Context(), file, &data.Chapter{
			Title:    filepath.Base(file),
			FilePath: file,
		})
		if err != nil {
			return err
		}

		if len(chapter.Pages) == 0 {
			fmt.Println("No pages found.")
			return nil
		}

		fmt.Println(pagesTable(chapter.Pages))
		fmt.Printf("%d page(s) decoded in %s\n", len(chapter.Pages), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	pagesCmd.Flags().String("ordering", "", "Page ordering: natural, lexicographic or enumeration")
}

func pagesTable(pages []*data.Page) *table.Table {
	var (
		purple = lipgloss.Color("99")

		headerStyle = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
		cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("#", "Entry", "Frame", "Size")

	for i, page := range pages {
		t.Row(
			fmt.Sprintf("%d", i+1),
			truncateString(page.Name, 58),
			fmt.Sprintf("%d", page.Frame),
			fmt.Sprintf("%dx%d", page.Width(), page.Height()),
		)
	}
	return t
}
