package cmap

import (
	"testing"
	"time"
)

func TestInterpolate(t *testing.T) {
	for _, tc := range []struct {
		elevation float64
		want      float64
	}{
		{-30, 1.5},
		{-6.0001, 1.5},
		{-6, 1.5},
		{-1.5, 1.25},
		{3, 1},
		{45, 1},
	} {
		if got := interpolate(tc.elevation, -6, 3, 1.5, 1); got != tc.want {
			t.Errorf("elevation %v: got gamma %v, expected %v", tc.elevation, got, tc.want)
		}
	}
}

func TestSolarBounds(t *testing.T) {
	start := time.Date(2024, time.June, 21, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 24; h++ {
		now := start.Add(time.Duration(h) * time.Hour)
		g := Solar(now, 44.5, -76.5, -6, 3, 1.4, 1)
		if g < 1 || g > 1.4 {
			t.Errorf("%s: gamma %v outside [1, 1.4]", now, g)
		}
	}
}
