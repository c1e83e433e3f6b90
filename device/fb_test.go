//go:build linux

package device

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/pgaskin/fbcmap/cmap"
)

func TestOpenFramebufferMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "fb0"), nil); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not exist error, got %v", err)
	}
}

func TestFramebufferRejected(t *testing.T) {
	s, err := Open(os.DevNull, nil)
	if err != nil {
		t.Skipf("open %s: %v", os.DevNull, err)
	}
	defer s.Close()

	if _, err := s.Size(); err == nil {
		t.Errorf("expected size to fail on %s", os.DevNull)
	}
	m, err := cmap.Build(cmap.Params{Depth: cmap.DefaultDepth, Gamma: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Install(m); err == nil {
		t.Errorf("expected install to fail on %s", os.DevNull)
	}
	if err := s.Restore(); err != nil {
		t.Errorf("expected restore to do nothing without a saved map, got %v", err)
	}
}
