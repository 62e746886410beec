package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/services"
)

// ReadRequest opens the reader on a series. A negative chapter resumes
// at the most recently read one.
type ReadRequest struct {
	SeriesID string
	Chapter  int
}

type DetailsScreen struct {
	controller      *services.LibraryController
	seriesID        string
	series          *data.Series
	selectedChapter int
	width           int
	height          int
	err             error
}

func NewDetailsScreen(controller *services.LibraryController, seriesID string) *DetailsScreen {
	return &DetailsScreen{
		controller: controller,
		seriesID:   seriesID,
	}
}

func (s *DetailsScreen) Init() tea.Cmd {
	return s.loadDetails
}

func (s *DetailsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selectedChapter > 0 {
				s.selectedChapter--
			}
		case "down", "j":
			if s.series != nil && s.selectedChapter < len(s.series.Chapters)-1 {
				s.selectedChapter++
			}
		case "r":
			return s, s.loadDetails
		case "enter":
			if s.series != nil && len(s.series.Chapters) > 0 {
				return s, s.read(s.selectedChapter)
			}
		case "c":
			if s.series != nil && len(s.series.Chapters) > 0 {
				return s, s.read(-1)
			}
		case "esc", "backspace":
			return s, func() tea.Msg {
				return SwitchScreenMsg{Screen: "library"}
			}
		}

	case detailsLoadedMsg:
		s.series = msg.series
		s.err = msg.err
		if s.series != nil && s.selectedChapter >= len(s.series.Chapters) {
			s.selectedChapter = max(len(s.series.Chapters)-1, 0)
		}
	}

	return s, nil
}

func (s *DetailsScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}
	if s.series == nil {
		if s.err != nil {
			return styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		}
		return "Loading..."
	}

	header := styles.TitleStyle.Render(s.series.Name)

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	help := styles.HelpStyle.Render(
		"↑/k ↓/j: navigate • enter: read chapter • c: continue • r: refresh • esc: back • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s%s\n%s\n%s",
		header,
		errorMsg,
		s.renderSeriesInfo(),
		s.renderChaptersList(),
		help,
	)
}

func (s *DetailsScreen) renderSeriesInfo() string {
	read := 0
	for _, ch := range s.series.Chapters {
		if ch.Read {
			read++
		}
	}

	lines := []string{}
	if s.series.Description != "" {
		desc := s.series.Description
		if len(desc) > 200 {
			desc = desc[:197] + "..."
		}
		lines = append(lines, styles.TextStyle.Render(desc), "")
	}
	if s.series.Genre != "" {
		lines = append(lines, styles.MutedStyle.Render(fmt.Sprintf("Genre: %s", s.series.Genre)))
	}
	lines = append(lines, styles.MutedStyle.Render(fmt.Sprintf("%d / %d chapters read", read, len(s.series.Chapters))))

	return styles.CardStyle.Width(s.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (s *DetailsScreen) renderChaptersList() string {
	chapters := s.series.Chapters
	if len(chapters) == 0 {
		return styles.MutedStyle.Render("No chapters attached")
	}

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Chapters (%d total):", len(chapters))))
	b.WriteString("\n\n")

	start, end := visibleWindow(s.selectedChapter, len(chapters), 10)
	for i := start; i < end; i++ {
		ch := chapters[i]

		statusIcon := "○"
		statusColor := styles.MutedStyle
		switch {
		case ch.Read:
			statusIcon = "●"
			statusColor = styles.StatusRead
		case ch.LastRead != nil:
			statusIcon = "◐"
			statusColor = styles.TextStyle
		}

		line := fmt.Sprintf("%s %s", statusIcon, ch.Title)
		if ch.LastRead != nil && !ch.Read {
			line += styles.MutedStyle.Render(fmt.Sprintf("  (page %d)", ch.CurrentPage+1))
		}

		if i == s.selectedChapter {
			line = styles.SelectedStyle.Render(line)
		} else {
			line = statusColor.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(chapters) > end-start {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(
			fmt.Sprintf("Showing %d-%d of %d chapters", start+1, end, len(chapters)),
		))
	}

	return b.String()
}

// visibleWindow picks up to size rows around selected
func visibleWindow(selected, total, size int) (int, int) {
	if total <= size {
		return 0, total
	}
	start := max(selected-size/2, 0)
	end := start + size
	if end > total {
		end = total
		start = end - size
	}
	return start, end
}

// Messages
type detailsLoadedMsg struct {
	series *data.Series
	err    error
}

// Commands
func (s *DetailsScreen) loadDetails() tea.Msg {
	series, err := s.controller.GetSeries(s.seriesID)
	return detailsLoadedMsg{series: series, err: err}
}

func (s *DetailsScreen) read(chapter int) tea.Cmd {
	req := ReadRequest{SeriesID: s.seriesID, Chapter: chapter}
	return func() tea.Msg {
		return SwitchScreenMsg{Screen: "reader", Data: req}
	}
}
