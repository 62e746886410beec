package data

import (
	"image"
	"time"
)

type Series struct {
	ID          string
	Name        string
	Description string
	Genre       string
	Completed   bool
	Favorite    bool
	Read        bool
	Chapters    []*Chapter // In attach order, not sorted
}

type Chapter struct {
	ID          string
	SeriesID    string
	Title       string
	FilePath    string // Backing archive
	Read        bool
	CurrentPage int
	LastRead    *time.Time

	// Pages is nil while the chapter is not resident. A loaded chapter always
	// carries a non-nil slice, even when the archive held no pages.
	Pages []*Page
}

// Loaded reports whether the chapter's pages are resident
func (c *Chapter) Loaded() bool {
	return c.Pages != nil
}

// Evict drops the chapter's pages
func (c *Chapter) Evict() {
	c.Pages = nil
}

// Page is a single decoded page, immutable once built
type Page struct {
	Name  string // Archive entry the page came from
	Frame int    // Frame index inside the entry, 0 for still images
	Image *image.RGBA
}

func (p *Page) Width() int {
	return p.Image.Rect.Dx()
}

func (p *Page) Height() int {
	return p.Image.Rect.Dy()
}

// Pix returns the raw RGBA buffer, 4 bytes per pixel, Stride bytes per row
func (p *Page) Pix() []uint8 {
	return p.Image.Pix
}
