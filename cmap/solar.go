package cmap

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// Solar interpolates a gamma based on the provided latitude and longitude,
// interpolating between gammaNight and gammaDay when the sun is between
// elevationNight and elevationDay (in degrees).
func Solar(now time.Time, lat, lng float64, elevationNight, elevationDay float64, gammaNight, gammaDay float64) float64 {
	return interpolate(sunrise.Elevation(lat, lng, now), elevationNight, elevationDay, gammaNight, gammaDay)
}

func interpolate(elevation, elevationNight, elevationDay float64, gammaNight, gammaDay float64) float64 {
	var progress float64
	switch {
	case elevation < elevationNight:
		progress = 0
	case elevation >= elevationDay:
		progress = 1
	default:
		progress = (elevation - elevationNight) / (elevationDay - elevationNight)
	}
	return (1-progress)*gammaNight + progress*gammaDay
}
