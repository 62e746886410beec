package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/comics/pkg/services"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all series in your library",
	Long:  "Display all series in your library in a formatted table",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openLibrary(false)
		if err != nil {
			return err
		}
		defer env.Close()

		items, err := env.controller.ListSeries()
		if err != nil {
			return err
		}

		if len(items) == 0 {
			fmt.Println("📚 No series in library. Use 'comics add' to import some.")
			return nil
		}

		t := table.New(
			table.WithColumns(seriesColumns()),
			table.WithRows(seriesRows(items)),
			table.WithFocused(false),
			table.WithHeight(len(items)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(s)

		fmt.Printf("\n📚 Library (%d series)\n\n", len(items))
		fmt.Println(t.View())
		return nil
	},
}

func seriesColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 40},
		{Title: "Status", Width: 12},
		{Title: "Chapters", Width: 10},
		{Title: "Read", Width: 8},
	}
}

func seriesRows(items []*services.SeriesSummary) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, item := range items {
		status := "unread"
		switch {
		case item.Chapters > 0 && item.Read == item.Chapters:
			status = "completed"
		case item.Read > 0:
			status = "reading"
		}

		rows = append(rows, table.Row{
			truncateString(item.Series.Name, 38),
			status,
			fmt.Sprintf("%d", item.Chapters),
			fmt.Sprintf("%d", item.Read),
		})
	}
	return rows
}

func truncateString(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
