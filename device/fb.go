//go:build linux

package device

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pgaskin/fbcmap/cmap"
	"github.com/pgaskin/fbcmap/fbdev"
)

// fbSink installs colour maps using a Linux framebuffer device.
type fbSink struct {
	dev    *fbdev.Device
	logger *slog.Logger

	saved *cmap.Map
}

// OpenFramebuffer opens a Linux framebuffer device. If logger is not nil, it
// is used for debug logs from this package.
func OpenFramebuffer(name string, logger *slog.Logger) (Sink, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Debug("fbdev: opening framebuffer device", "device", name)

	dev, err := fbdev.Open(name)
	if err != nil {
		return nil, err
	}
	return &fbSink{dev: dev, logger: logger}, nil
}

func (s *fbSink) Size() (int, error) {
	v, err := s.dev.VarScreenInfo()
	if err != nil {
		return 0, err
	}
	s.logger.Debug("fbdev: got screen info",
		"device", s.dev.Name(),
		"xres", v.XRes,
		"yres", v.YRes,
		"bpp", v.BitsPerPixel,
		"red", v.Red.Length,
		"green", v.Green.Length,
		"blue", v.Blue.Length,
	)
	n := v.CmapLen()
	if n == 0 {
		return 0, fmt.Errorf("%s: %w: no colour components", s.dev.Name(), ErrUnsupportedDepth)
	}
	return n, nil
}

func (s *fbSink) Install(m *cmap.Map) error {
	if s.saved == nil {
		r, g, b, err := s.dev.GetCmap(m.Start, m.Len())
		if err != nil {
			s.logger.Warn("fbdev: failed to save colour map", "device", s.dev.Name(), "error", err)
		} else {
			s.saved = &cmap.Map{Start: m.Start, Red: r, Green: g, Blue: b}
		}
	}
	s.logger.Debug("fbdev: setting colour map", "device", s.dev.Name(), "start", m.Start, "len", m.Len())
	return s.dev.PutCmap(m.Start, m.Red, m.Green, m.Blue)
}

func (s *fbSink) Restore() error {
	if s.saved == nil {
		return nil
	}
	s.logger.Debug("fbdev: restoring colour map", "device", s.dev.Name(), "len", s.saved.Len())
	return s.dev.PutCmap(s.saved.Start, s.saved.Red, s.saved.Green, s.saved.Blue)
}

func (s *fbSink) Close() error {
	return s.dev.Close()
}
