package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/services"
)

// ReadingProgress renders how far the reader is into the chapter and series
type ReadingProgress struct {
	width int
}

func NewReadingProgress(width int) *ReadingProgress {
	return &ReadingProgress{width: width}
}

func (p *ReadingProgress) SetWidth(width int) {
	p.width = width
}

func (p *ReadingProgress) View(pos services.Position) string {
	if pos.Chapters == 0 {
		return ""
	}

	barWidth := p.width - 24
	if barWidth < 10 {
		barWidth = 10
	}

	var b strings.Builder
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%-10s", "page")))
	b.WriteString(renderProgressBar(pos.Page, pos.Pages, barWidth))
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf(" %d/%d", pos.Page, pos.Pages)))
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%-10s", "series")))
	b.WriteString(renderProgressBar(pos.Chapter, pos.Chapters, barWidth))
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf(" %d/%d", pos.Chapter, pos.Chapters)))
	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return styles.ProgressEmptyStyle.Render(strings.Repeat("░", max(width, 0)))
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return styles.ProgressBarStyle.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// SimpleProgress renders a bare progress bar
func SimpleProgress(current, total, width int) string {
	return renderProgressBar(current, total, width)
}
