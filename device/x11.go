package device

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/pgaskin/fbcmap/cmap"
)

// xSink installs colour maps as the gamma ramps of every CRTC on an X11
// screen using RandR.
type xSink struct {
	conn   *xgb.Conn
	logger *slog.Logger

	root  xproto.Window
	saved map[randr.Crtc]*randr.GetCrtcGammaReply
}

// OpenX11 opens a X11 connection to the specified display (empty for the
// default). If logger is not nil, it is used for debug logs from this
// package.
func OpenX11(display string, logger *slog.Logger) (Sink, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	s := &xSink{conn: conn, logger: logger}
	s.root = xproto.Setup(conn).DefaultScreen(conn).Root

	if err := randr.Init(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *xSink) crtcs() ([]randr.Crtc, error) {
	resources, err := randr.GetScreenResourcesCurrent(s.conn, s.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("x11: randr: get screen resources: %w", err)
	}
	if len(resources.Crtcs) == 0 {
		return nil, errors.New("x11: randr: no crtcs")
	}
	return resources.Crtcs, nil
}

func (s *xSink) Size() (int, error) {
	crtcs, err := s.crtcs()
	if err != nil {
		return 0, err
	}
	var size int
	for _, crtc := range crtcs {
		gamma, err := randr.GetCrtcGammaSize(s.conn, crtc).Reply()
		if err != nil {
			return 0, fmt.Errorf("x11: randr: get crtc %d gamma size: %w", crtc, err)
		}
		s.logger.Debug("x11: randr: got gamma size", "crtc", crtc, "size", gamma.Size)
		if size == 0 || int(gamma.Size) < size {
			size = int(gamma.Size)
		}
	}
	return size, nil
}

func (s *xSink) Install(m *cmap.Map) error {
	crtcs, err := s.crtcs()
	if err != nil {
		return err
	}
	if s.saved == nil {
		s.saved = make(map[randr.Crtc]*randr.GetCrtcGammaReply)
		for _, crtc := range crtcs {
			gamma, err := randr.GetCrtcGamma(s.conn, crtc).Reply()
			if err != nil {
				s.logger.Warn("x11: randr: failed to save gamma ramp", "crtc", crtc, "error", err)
				continue
			}
			s.saved[crtc] = gamma
		}
	}
	var errs []error
	for _, crtc := range crtcs {
		if err := SetX11(s.conn, crtc, m); err != nil {
			s.logger.Warn("x11: randr: failed to set colour map", "crtc", crtc, "error", err)
			errs = append(errs, fmt.Errorf("crtc %d: %w", crtc, err))
			continue
		}
		s.logger.Debug("x11: randr: set colour map", "crtc", crtc, "len", m.Len())
	}
	return errors.Join(errs...)
}

func (s *xSink) Restore() error {
	var errs []error
	for crtc, gamma := range s.saved {
		if err := randr.SetCrtcGammaChecked(s.conn, crtc, gamma.Size, gamma.Red, gamma.Green, gamma.Blue).Check(); err != nil {
			errs = append(errs, fmt.Errorf("crtc %d: set crtc gamma: %w", crtc, err))
		}
	}
	return errors.Join(errs...)
}

func (s *xSink) Close() error {
	s.conn.Close()
	return nil
}

// SetX11 applies a colour map to the specified CRTC. The RandR extension must
// be initialized. The map must start at zero and have as many entries as the
// CRTC's gamma ramp.
func SetX11(conn *xgb.Conn, crtc randr.Crtc, m *cmap.Map) error {
	gamma, err := randr.GetCrtcGammaSize(conn, crtc).Reply()
	if err != nil {
		return fmt.Errorf("get crtc gamma size: %w", err)
	}
	if m.Start != 0 || int(gamma.Size) != m.Len() {
		return fmt.Errorf("%w: crtc has %d gamma entries, colour map has %d starting at %d", ErrUnsupportedDepth, gamma.Size, m.Len(), m.Start)
	}
	if err := randr.SetCrtcGammaChecked(conn, crtc, gamma.Size, m.Red, m.Green, m.Blue).Check(); err != nil {
		return fmt.Errorf("set crtc gamma: %w", err)
	}
	return nil
}
