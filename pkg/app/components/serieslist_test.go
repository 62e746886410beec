package components

import (
	"strings"
	"testing"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/services"
)

func summaries(names ...string) []*services.SeriesSummary {
	items := make([]*services.SeriesSummary, len(names))
	for i, name := range names {
		items[i] = &services.SeriesSummary{Series: &data.Series{ID: name, Name: name}, Chapters: 2}
	}
	return items
}

func TestNewSeriesList(t *testing.T) {
	list := NewSeriesList()

	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex 0, got %d", list.SelectedIndex)
	}
	if len(list.Items) != 0 {
		t.Errorf("Expected 0 items, got %d", len(list.Items))
	}
}

func TestSetItemsClampsSelection(t *testing.T) {
	list := NewSeriesList()
	list.SetItems(summaries("a", "b", "c"))
	list.SelectedIndex = 2

	list.SetItems(summaries("a"))
	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex to be clamped to 0, got %d", list.SelectedIndex)
	}

	list.SetItems(nil)
	if list.Selected() != nil {
		t.Error("Expected nil selection for empty list")
	}
}

func TestNextPrevWrap(t *testing.T) {
	list := NewSeriesList()
	list.SetItems(summaries("a", "b", "c"))

	list.Prev()
	if list.SelectedIndex != 2 {
		t.Errorf("Expected SelectedIndex to wrap to 2, got %d", list.SelectedIndex)
	}
	list.Next()
	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex to wrap to 0, got %d", list.SelectedIndex)
	}
	list.Next()
	if got := list.Selected().Series.ID; got != "b" {
		t.Errorf("Expected selected series 'b', got '%s'", got)
	}
}

func TestNextPrevEmptyList(t *testing.T) {
	list := NewSeriesList()

	list.Next()
	list.Prev()

	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex to remain 0, got %d", list.SelectedIndex)
	}
}

func TestSeriesListView(t *testing.T) {
	list := NewSeriesList()
	if !strings.Contains(list.View(), "No series in library") {
		t.Error("Expected empty library message")
	}

	items := summaries("Akira", "Berserk")
	items[0].Read = 2
	items[1].Read = 1
	list.SetItems(items)
	view := list.View()

	for _, want := range []string{"Akira", "Berserk", "2 / 2 read", "completed", "reading"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in view", want)
		}
	}
}
