package archive

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/kerbaras/comics/pkg/data"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels caps width*height of a single decoded page (100 megapixels)
const DefaultMaxPixels = 100 * 1000 * 1000

// stillExtensions are the page formats recognised inside image containers
var stillExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".bmp":  true,
}

// IsStillImage reports whether name carries a recognised page extension
func IsStillImage(name string) bool {
	return stillExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsFrameSequence reports whether name is a multi-frame GIF entry
func IsFrameSequence(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".gif")
}

// Decoder turns raw image bytes into pages
type Decoder struct {
	MaxPixels int // Zero means DefaultMaxPixels, negative disables the check
}

// DecodeStill decodes a single-frame raster image into one page
func (d Decoder) DecodeStill(name string, raw []byte) (*data.Page, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, decodeError(name, err)
	}
	if err := d.checkSize(cfg.Width, cfg.Height); err != nil {
		return nil, decodeError(name, err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, decodeError(name, err)
	}

	return &data.Page{Name: name, Image: toRGBA(img)}, nil
}

// DecodeFrames decodes every frame of a GIF, one page per frame in container order.
// Frames are composited onto the logical screen so each page is what a player
// would show at that point.
func (d Decoder) DecodeFrames(name string, raw []byte) ([]*data.Page, error) {
	cfg, err := gif.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, decodeError(name, err)
	}
	if err := d.checkSize(cfg.Width, cfg.Height); err != nil {
		return nil, decodeError(name, err)
	}

	g, err := gif.DecodeAll(bytes.NewReader(raw))
	if err != nil {
		return nil, decodeError(name, err)
	}
	if len(g.Image) == 0 {
		return nil, decodeError(name, fmt.Errorf("no frames"))
	}

	// frames may still reach outside a zero-sized logical screen
	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		for _, frame := range g.Image {
			screen = screen.Union(frame.Bounds())
		}
	}
	if err := d.checkSize(screen.Dx(), screen.Dy()); err != nil {
		return nil, decodeError(name, err)
	}

	canvas := image.NewRGBA(screen)
	pages := make([]*data.Page, 0, len(g.Image))

	for i, frame := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var previous *image.RGBA
		if disposal == gif.DisposalPrevious {
			previous = cloneRGBA(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		pages = append(pages, &data.Page{Name: name, Frame: i, Image: toRGBA(canvas)})

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}

	return pages, nil
}

func (d Decoder) checkSize(width, height int) error {
	limit := d.MaxPixels
	if limit == 0 {
		limit = DefaultMaxPixels
	}
	if limit < 0 {
		return nil
	}
	if pixels := uint64(width) * uint64(height); pixels > uint64(limit) {
		return fmt.Errorf("image too large to decode: %dx%d (%d pixels)", width, height, pixels)
	}
	return nil
}

// toRGBA copies img into a fresh, origin-anchored RGBA buffer
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
