package archive

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStillPNG(t *testing.T) {
	page, err := Decoder{}.DecodeStill("p1.png", pngOfWidth(t, 5))
	require.NoError(t, err)

	assert.Equal(t, "p1.png", page.Name)
	assert.Equal(t, 0, page.Frame)
	assert.Equal(t, 5, page.Width())
	assert.Equal(t, 1, page.Height())
	assert.Equal(t, red, page.Image.RGBAAt(4, 0))
}

func TestDecodeStillJPEG(t *testing.T) {
	page, err := Decoder{}.DecodeStill("p1.jpg", jpegOfWidth(t, 16))
	require.NoError(t, err)

	assert.Equal(t, 16, page.Width())
	assert.Equal(t, 8, page.Height())
	assert.Len(t, page.Pix(), 16*8*4, "pages are always 8-bit RGBA")
}

func TestDecodeStillCorrupt(t *testing.T) {
	_, err := Decoder{}.DecodeStill("broken.png", []byte("not an image"))
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrDecode)
	var decodeErr *Error
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "broken.png", decodeErr.Resource)
}

func TestDecodeStillTooLarge(t *testing.T) {
	_, err := Decoder{MaxPixels: 4}.DecodeStill("big.png", pngOfWidth(t, 5))

	assert.ErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "too large")
}

func TestDecodeStillNoLimit(t *testing.T) {
	_, err := Decoder{MaxPixels: -1}.DecodeStill("big.png", pngOfWidth(t, 50))
	assert.NoError(t, err)
}

func TestDecodeFramesKeepsContainerOrder(t *testing.T) {
	pages, err := Decoder{}.DecodeFrames("anim.gif", gifOfColors(t, red, green, blue))
	require.NoError(t, err)
	require.Len(t, pages, 3)

	for i, want := range []color.RGBA{red, green, blue} {
		assert.Equal(t, i, pages[i].Frame)
		assert.Equal(t, "anim.gif", pages[i].Name)
		assert.Equal(t, want, pages[i].Image.RGBAAt(1, 1), "frame %d", i)
	}
}

func TestDecodeFramesCompositesAndDisposes(t *testing.T) {
	palette := color.Palette{red, green, blue}
	fill := func(r image.Rectangle, idx uint8) *image.Paletted {
		p := image.NewPaletted(r, palette)
		for i := range p.Pix {
			p.Pix[i] = idx
		}
		return p
	}

	g := &gif.GIF{
		Image: []*image.Paletted{
			fill(image.Rect(0, 0, 4, 4), 0),
			fill(image.Rect(0, 0, 2, 2), 1),
			fill(image.Rect(2, 2, 4, 4), 2),
		},
		Delay:    []int{0, 0, 0},
		Disposal: []byte{gif.DisposalNone, gif.DisposalBackground, gif.DisposalNone},
		Config:   image.Config{Width: 4, Height: 4},
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))

	pages, err := Decoder{}.DecodeFrames("anim.gif", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, pages, 3)

	for _, p := range pages {
		assert.Equal(t, 4, p.Width())
		assert.Equal(t, 4, p.Height())
	}

	assert.Equal(t, red, pages[0].Image.RGBAAt(3, 3))

	assert.Equal(t, green, pages[1].Image.RGBAAt(0, 0))
	assert.Equal(t, red, pages[1].Image.RGBAAt(3, 3), "earlier frame shows through")

	assert.Equal(t, color.RGBA{}, pages[2].Image.RGBAAt(0, 0), "frame 1 area cleared by its disposal")
	assert.Equal(t, red, pages[2].Image.RGBAAt(0, 3))
	assert.Equal(t, blue, pages[2].Image.RGBAAt(3, 3))
}

func TestDecodeFramesPagesDoNotShareBuffers(t *testing.T) {
	pages, err := Decoder{}.DecodeFrames("anim.gif", gifOfColors(t, red, green))
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, red, pages[0].Image.RGBAAt(0, 0))
	assert.Equal(t, green, pages[1].Image.RGBAAt(0, 0))
}

func TestDecodeFramesCorrupt(t *testing.T) {
	_, err := Decoder{}.DecodeFrames("broken.gif", []byte("GIF89a-garbage"))

	assert.ErrorIs(t, err, ErrDecode)
	var decodeErr *Error
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "broken.gif", decodeErr.Resource)
}

func TestDecodeFramesChecksScreenBeforeDecoding(t *testing.T) {
	// header and screen descriptor only: 60000x60000, no color table, no frames
	raw := []byte("GIF89a")
	raw = append(raw, 0x60, 0xea, 0x60, 0xea, 0x00, 0x00, 0x00)

	_, err := Decoder{MaxPixels: 100}.DecodeFrames("huge.gif", raw)

	assert.ErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "too large")
	assert.Contains(t, err.Error(), "60000x60000")
}

func TestDecodeFramesTooLarge(t *testing.T) {
	_, err := Decoder{MaxPixels: 4}.DecodeFrames("anim.gif", gifOfColors(t, red, green))

	assert.ErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "too large")
}

func TestIsStillImage(t *testing.T) {
	for name, want := range map[string]bool{
		"p1.png":        true,
		"P1.PNG":        true,
		"p1.jpg":        true,
		"p1.JPEG":       true,
		"p1.webp":       true,
		"p1.bmp":        true,
		"p1.gif":        false,
		"ComicInfo.xml": false,
		"png":           false,
	} {
		assert.Equal(t, want, IsStillImage(name), name)
	}

	assert.True(t, IsFrameSequence("a.GIF"))
	assert.False(t, IsFrameSequence("a.png"))
}
