// Package device installs colour maps into display hardware palettes.
package device

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/pgaskin/fbcmap/cmap"
)

// DefaultFramebuffer is opened when no device name is given.
const DefaultFramebuffer = "/dev/fb0"

// ErrUnsupportedDepth is returned when a device cannot take a colour map of
// the given length.
var ErrUnsupportedDepth = errors.New("unsupported colour map depth")

// Sink is a display palette which accepts colour maps. It is not safe for
// concurrent use.
type Sink interface {
	// Size returns the number of palette entries per channel reported by the
	// device.
	Size() (int, error)

	// Install applies the colour map to the device. The first call saves the
	// current palette for Restore.
	Install(*cmap.Map) error

	// Restore re-applies the palette saved by the first Install. It does
	// nothing if Install was never called.
	Restore() error

	// Close releases the device. It does not restore the palette.
	Close() error
}

// Open opens a sink by name. An empty name opens [DefaultFramebuffer], "x11"
// or "x11:DISPLAY" opens an X11 display with RandR, and anything else is
// treated as a framebuffer device path. If logger is not nil, it is used for
// debug logs from this package.
func Open(name string, logger *slog.Logger) (Sink, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if display, ok := x11Display(name); ok {
		return OpenX11(display, logger)
	}
	if name == "" {
		name = DefaultFramebuffer
	}
	return OpenFramebuffer(name, logger)
}

func x11Display(name string) (string, bool) {
	if name == "x11" {
		return "", true
	}
	if display, ok := strings.CutPrefix(name, "x11:"); ok {
		return display, true
	}
	return "", false
}
