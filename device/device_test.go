package device

import (
	"errors"
	"os"
	"testing"

	"github.com/pgaskin/fbcmap/cmap"
)

func TestX11Display(t *testing.T) {
	for _, tc := range []struct {
		name    string
		display string
		ok      bool
	}{
		{"x11", "", true},
		{"x11:", "", true},
		{"x11::1", ":1", true},
		{"x11:host:0.1", "host:0.1", true},
		{"", "", false},
		{"/dev/fb0", "", false},
		{"x11-fb", "", false},
	} {
		display, ok := x11Display(tc.name)
		if display != tc.display || ok != tc.ok {
			t.Errorf("x11Display(%q) = (%q, %t), expected (%q, %t)", tc.name, display, ok, tc.display, tc.ok)
		}
	}
}

func TestX11(t *testing.T) {
	if os.Getenv("FBCMAP_TEST_X11") == "" {
		t.Skip("FBCMAP_TEST_X11 not set")
	}
	s, err := Open("x11", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	size, err := s.Size()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Restore(); err != nil {
		t.Errorf("restore before install: %v", err)
	}

	m, err := cmap.Build(cmap.Params{Depth: size, Gamma: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Install(m); err != nil {
		t.Errorf("install: %v", err)
	}
	if err := s.Restore(); err != nil {
		t.Errorf("restore: %v", err)
	}

	m, err = cmap.Build(cmap.Params{Depth: size + 1, Gamma: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Install(m); !errors.Is(err, ErrUnsupportedDepth) {
		t.Errorf("expected unsupported depth error, got %v", err)
	}
}
