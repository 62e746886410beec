package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/services"
)

type SeriesList struct {
	Items         []*services.SeriesSummary
	SelectedIndex int
	Width         int
	Height        int
}

func NewSeriesList() *SeriesList {
	return &SeriesList{
		Items:  []*services.SeriesSummary{},
		Width:  80,
		Height: 20,
	}
}

func (l *SeriesList) SetItems(items []*services.SeriesSummary) {
	l.Items = items
	if l.SelectedIndex >= len(items) && len(items) > 0 {
		l.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		l.SelectedIndex = 0
	}
}

func (l *SeriesList) Next() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex = (l.SelectedIndex + 1) % len(l.Items)
}

func (l *SeriesList) Prev() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex--
	if l.SelectedIndex < 0 {
		l.SelectedIndex = len(l.Items) - 1
	}
}

func (l *SeriesList) Selected() *services.SeriesSummary {
	if len(l.Items) == 0 || l.SelectedIndex >= len(l.Items) {
		return nil
	}
	return l.Items[l.SelectedIndex]
}

func (l *SeriesList) View() string {
	if len(l.Items) == 0 {
		empty := styles.MutedStyle.Render("No series in library. Press tab to import some.")
		return lipgloss.Place(l.Width, l.Height, lipgloss.Center, lipgloss.Center, empty)
	}

	var b strings.Builder
	for i, item := range l.Items {
		cardStyle := styles.CardStyle
		if i == l.SelectedIndex {
			cardStyle = styles.ActiveCardStyle
		}

		title := styles.TitleStyle.Render(item.Series.Name)

		status := "unread"
		switch {
		case item.Chapters > 0 && item.Read == item.Chapters:
			status = "completed"
		case item.Read > 0:
			status = "reading"
		}

		desc := item.Series.Description
		if len(desc) > 80 {
			desc = desc[:77] + "..."
		}

		card := lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			styles.TextStyle.Render(desc),
			styles.MutedStyle.Render(fmt.Sprintf("Chapters: %d / %d read", item.Read, item.Chapters)),
			styles.StatusStyle(status).Render("Status: "+status),
		)

		b.WriteString(cardStyle.Width(l.Width - 4).Render(card))
		b.WriteString("\n")
	}
	return b.String()
}
