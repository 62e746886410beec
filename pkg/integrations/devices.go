package integrations

import (
	"fmt"
	"sort"
)

// Device is a reading device an exported book can be sized for
type Device struct {
	Name      string
	Width     int // Screen width in pixels
	Height    int // Screen height in pixels
	DPI       int
	Grayscale bool // e-ink panel
}

var Devices = map[string]Device{
	"kindle-basic":       {Name: "Kindle Basic (10th gen)", Width: 758, Height: 1024, DPI: 167, Grayscale: true},
	"kindle-paperwhite":  {Name: "Kindle Paperwhite 1/2", Width: 758, Height: 1024, DPI: 212, Grayscale: true},
	"kindle-paperwhite3": {Name: "Kindle Paperwhite 3/4", Width: 1072, Height: 1448, DPI: 300, Grayscale: true},
	"kindle-oasis":       {Name: "Kindle Oasis 1/2", Width: 1072, Height: 1448, DPI: 300, Grayscale: true},
	"kindle-oasis3":      {Name: "Kindle Oasis 3", Width: 1264, Height: 1680, DPI: 300, Grayscale: true},
	"kindle-scribe":      {Name: "Kindle Scribe", Width: 1860, Height: 2480, DPI: 300, Grayscale: true},
	"kobo-clara":         {Name: "Kobo Clara HD", Width: 1072, Height: 1448, DPI: 300, Grayscale: true},
	"tablet":             {Name: "Generic tablet", Width: 1600, Height: 2560, DPI: 320, Grayscale: false},
}

// GetDevice returns the profile registered under id
func GetDevice(id string) (Device, error) {
	device, ok := Devices[id]
	if !ok {
		return Device{}, fmt.Errorf("unknown device %q", id)
	}
	return device, nil
}

// ListDevices returns "id: name" for every profile, sorted by id
func ListDevices() []string {
	ids := make([]string, 0, len(Devices))
	for id := range Devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id + ": " + Devices[id].Name
	}
	return out
}

// ExportOptions returns page settings tuned for the device
func (d Device) ExportOptions() ExportOptions {
	opts := ExportOptions{
		MaxWidth:  d.Width,
		MaxHeight: d.Height,
		Grayscale: d.Grayscale,
		Quality:   85,
	}
	if d.DPI >= 300 {
		opts.Quality = 90
	}
	// Slight boost for e-ink
	if d.Grayscale {
		opts.Contrast = 10
	}
	return opts
}
