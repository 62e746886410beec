package cmd

import (
	"testing"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChapterSelection(t *testing.T) {
	tests := []struct {
		name      string
		selection string
		want      []int
	}{
		{"all", "", []int{0, 1, 2, 3, 4}},
		{"single", "2", []int{1}},
		{"list", "1,3,5", []int{0, 2, 4}},
		{"range", "2-4", []int{1, 2, 3}},
		{"mixed keeps order and drops repeats", "4, 1-2 ,2", []int{3, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseChapterSelection(tt.selection, 5)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChapterSelectionErrors(t *testing.T) {
	for _, selection := range []string{"0", "6", "a", "3-1", "1-x", "2-9"} {
		_, err := parseChapterSelection(selection, 5)
		assert.Error(t, err, selection)
	}
}

func TestSeriesRowsStatus(t *testing.T) {
	rows := seriesRows([]*services.SeriesSummary{
		{Series: &data.Series{Name: "Akira"}, Chapters: 3},
		{Series: &data.Series{Name: "Berserk"}, Chapters: 3, Read: 1},
		{Series: &data.Series{Name: "Monster"}, Chapters: 2, Read: 2},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "unread", rows[0][1])
	assert.Equal(t, "reading", rows[1][1])
	assert.Equal(t, "completed", rows[2][1])
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "Akira", truncateString("Akira", 10))
	assert.Equal(t, "Neon Ge...", truncateString("Neon Genesis Evangelion", 10))
}
