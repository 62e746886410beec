package components

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{100, 200, 50, 50, 25, 50},
		{200, 100, 50, 50, 50, 25},
		{10, 10, 40, 20, 20, 20},
		{1000, 1, 10, 10, 10, 1},
		{0, 10, 10, 10, 0, 0},
	}

	for _, tt := range tests {
		w, h := Fit(tt.w, tt.h, tt.maxW, tt.maxH)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("Fit(%d, %d, %d, %d) = %d, %d; want %d, %d",
				tt.w, tt.h, tt.maxW, tt.maxH, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestPageViewRender(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	view := NewPageView(4, 2).Render(img)

	lines := strings.Split(view, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 rows of cells, got %d", len(lines))
	}
	for i, line := range lines {
		if got := strings.Count(line, "▀"); got != 4 {
			t.Errorf("Row %d: expected 4 cells, got %d", i, got)
		}
	}
}

func TestPageViewRenderOddHeight(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))

	view := NewPageView(3, 10).Render(img)

	if got := strings.Count(view, "▀"); got != 6 {
		t.Errorf("Expected 6 cells for a 3x3 page, got %d", got)
	}
}

func TestPageViewRenderNil(t *testing.T) {
	view := NewPageView(30, 5).Render(nil)

	if !strings.Contains(view, "empty chapter") {
		t.Error("Expected placeholder for a chapter without pages")
	}
}

func TestHex(t *testing.T) {
	if got := hex(color.RGBA{R: 255, G: 16, B: 1}); string(got) != "#ff1001" {
		t.Errorf("Expected #ff1001, got %s", got)
	}
}
