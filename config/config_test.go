package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pgaskin/fbcmap/cmap"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		name string
		json string
		want Config
		err  string
	}{
		{
			name: "empty",
			json: `{}`,
			want: Config{},
		},
		{
			name: "full",
			json: `{
				"device": "/dev/fb1",
				"depth": 64,
				"gamma": 2.2,
				"min_gamma": 0.1,
				"red": 1, "green": 2, "blue": 3,
				"schedule": {
					"latitude": 44.5,
					"longitude": -76.5,
					"gamma_day": 1,
					"gamma_night": 1.4
				}
			}`,
			want: Config{
				Device:   "/dev/fb1",
				Depth:    64,
				Gamma:    2.2,
				MinGamma: 0.1,
				Red:      1,
				Green:    2,
				Blue:     3,
				Schedule: &Schedule{
					Latitude:       44.5,
					Longitude:      -76.5,
					ElevationDay:   DefaultElevationDay,
					ElevationNight: DefaultElevationNight,
					GammaDay:       1,
					GammaNight:     1.4,
				},
			},
		},
		{
			name: "custom elevations",
			json: `{"schedule": {"elevation_day": 10, "elevation_night": 0}}`,
			want: Config{
				Schedule: &Schedule{
					ElevationDay:   10,
					ElevationNight: 0,
				},
			},
		},
		{name: "invalid json", json: `{"gamma": }`, err: "invalid json"},
		{name: "not an object", json: `[1, 2]`, err: "expected object"},
		{name: "unknown key", json: `{"colour": 1}`, err: `unknown key "colour"`},
		{name: "unknown schedule key", json: `{"schedule": {"lat": 1}}`, err: `unknown key "schedule.lat"`},
		{name: "string gamma", json: `{"gamma": "2.2"}`, err: `"gamma": expected number`},
		{name: "fractional depth", json: `{"depth": 25.5}`, err: `"depth": expected integer`},
		{name: "negative min gamma", json: `{"gamma": 0, "min_gamma": -1, "depth": 4}`, err: `"min_gamma": must not be negative`},
		{name: "negative depth", json: `{"depth": -4}`, err: `"depth": out of range`},
		{name: "huge depth", json: `{"depth": 2000000000}`, err: `"depth": out of range`},
		{name: "numeric device", json: `{"device": 0}`, err: `"device": expected string`},
		{name: "schedule not object", json: `{"schedule": true}`, err: `"schedule": expected object`},
		{name: "inverted elevations", json: `{"schedule": {"elevation_day": -6, "elevation_night": 3}}`, err: "night elevation must be smaller than day"},
		{name: "bad latitude", json: `{"schedule": {"latitude": 91}}`, err: "invalid coordinates"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse([]byte(tc.json))
			if tc.err != "" {
				if err == nil || !strings.Contains(err.Error(), tc.err) {
					t.Fatalf("expected error containing %q, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, c); diff != "" {
				t.Errorf("unexpected config (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not exist error, got %v", err)
	}

	name := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(name, []byte(`{"depth": "x"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(name); err == nil || !strings.HasPrefix(err.Error(), name+": ") {
		t.Errorf("expected error prefixed with the file name, got %v", err)
	}

	name = filepath.Join(dir, "good.json")
	if err := os.WriteFile(name, []byte(`{"gamma": 1.8, "blue": 4}`), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Config{Gamma: 1.8, Blue: 4}, c); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestParams(t *testing.T) {
	now := time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC)

	p := Config{Gamma: 2, Red: 1, Green: 2, Blue: 3}.Params(now)
	if diff := cmp.Diff(cmap.Params{Depth: cmap.DefaultDepth, Gamma: 2, Red: 1, Green: 2, Blue: 3}, p); diff != "" {
		t.Errorf("unexpected params (-want +got):\n%s", diff)
	}

	p = Config{Depth: 16, Gamma: 2, MinGamma: 0.5}.Params(now)
	if p.Depth != 16 || p.MinGamma != 0.5 {
		t.Errorf("unexpected params %+v", p)
	}

	// noon at the equator is daytime, midnight is night
	s := &Schedule{
		ElevationDay:   DefaultElevationDay,
		ElevationNight: DefaultElevationNight,
		GammaDay:       1,
		GammaNight:     1.5,
	}
	if g := (Config{Gamma: 2, Schedule: s}).Params(now).Gamma; g != 1 {
		t.Errorf("daytime gamma = %v, expected 1", g)
	}
	if g := (Config{Gamma: 2, Schedule: s}).Params(now.Add(12 * time.Hour)).Gamma; g != 1.5 {
		t.Errorf("night gamma = %v, expected 1.5", g)
	}

	s = &Schedule{
		ElevationDay:   DefaultElevationDay,
		ElevationNight: DefaultElevationNight,
		GammaNight:     1.5,
	}
	if g := (Config{Gamma: 2, Schedule: s}).Params(now).Gamma; g != 2 {
		t.Errorf("daytime gamma = %v, expected fallback 2", g)
	}
}
