package components

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/comics/pkg/app/styles"
	"golang.org/x/image/draw"
)

// PageView draws a page into the terminal with upper half blocks: each cell
// shows two pixel rows, the top one as foreground and the bottom one as background.
type PageView struct {
	Width  int // cells
	Height int // cells
}

func NewPageView(width, height int) *PageView {
	return &PageView{Width: width, Height: height}
}

// Fit scales w x h to fit inside maxW x maxH keeping the aspect ratio
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}
	fw, fh := int(float64(w)*scale), int(float64(h)*scale)
	return max(fw, 1), max(fh, 1)
}

func (v *PageView) Render(img *image.RGBA) string {
	if img == nil {
		return lipgloss.Place(v.Width, v.Height, lipgloss.Center, lipgloss.Center,
			styles.MutedStyle.Render("(empty chapter)"))
	}

	b := img.Bounds()
	dw, dh := Fit(b.Dx(), b.Dy(), v.Width, v.Height*2)
	if dw == 0 {
		return ""
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	var out strings.Builder
	for y := 0; y < dh; y += 2 {
		for x := 0; x < dw; x++ {
			top := dst.RGBAAt(x, y)
			bottom := color.RGBA{}
			if y+1 < dh {
				bottom = dst.RGBAAt(x, y+1)
			}
			out.WriteString(lipgloss.NewStyle().
				Foreground(hex(top)).
				Background(hex(bottom)).
				Render("▀"))
		}
		if y+2 < dh {
			out.WriteString("\n")
		}
	}
	return out.String()
}

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
