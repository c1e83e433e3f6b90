// Package config loads colour map settings from a JSON file.
//
//	{
//		"device": "/dev/fb0",
//		"depth": 256,
//		"gamma": 2.2,
//		"red": 0,
//		"green": 0,
//		"blue": 0,
//		"schedule": {
//			"latitude": 44.5,
//			"longitude": -76.5,
//			"elevation_day": 3,
//			"elevation_night": -6,
//			"gamma_day": 1.0,
//			"gamma_night": 1.4
//		}
//	}
//
// All keys are optional.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/pgaskin/fbcmap/cmap"
	"github.com/tidwall/gjson"
)

// Config contains colour map settings. Zero values are unset.
type Config struct {
	Device           string
	Depth            int
	Gamma            float64
	MinGamma         float64
	Red, Green, Blue int
	Schedule         *Schedule
}

// Schedule varies the gamma with the sun's elevation.
type Schedule struct {
	Latitude       float64
	Longitude      float64
	ElevationDay   float64 // solar elevation in degrees for transition to daytime
	ElevationNight float64 // solar elevation in degrees for transition to night
	GammaDay       float64
	GammaNight     float64
}

// Schedule defaults.
const (
	DefaultElevationDay   = 3  // 3 degrees above the horizon
	DefaultElevationNight = -6 // civil twilight
)

// Load reads and parses a config file.
func Load(name string) (Config, error) {
	buf, err := os.ReadFile(name)
	if err != nil {
		return Config{}, err
	}
	c, err := Parse(buf)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// Parse parses a JSON config.
func Parse(buf []byte) (Config, error) {
	if !gjson.ValidBytes(buf) {
		return Config{}, errors.New("config: invalid json")
	}
	root := gjson.ParseBytes(buf)
	if !root.IsObject() {
		return Config{}, errors.New("config: expected object")
	}

	var (
		c   Config
		err error
	)
	root.ForEach(func(key, value gjson.Result) bool {
		switch key.Str {
		case "device":
			if value.Type != gjson.String {
				err = typeError(key.Str, "string")
				break
			}
			c.Device = value.Str
		case "depth":
			if c.Depth, err = integer(key.Str, value); err == nil && (c.Depth < 0 || c.Depth > cmap.MaxDepth) {
				err = fmt.Errorf("config: %q: out of range: %d", key.Str, c.Depth)
			}
		case "gamma":
			c.Gamma, err = number(key.Str, value)
		case "min_gamma":
			if c.MinGamma, err = number(key.Str, value); err == nil && c.MinGamma < 0 {
				err = fmt.Errorf("config: %q: must not be negative: %v", key.Str, c.MinGamma)
			}
		case "red":
			c.Red, err = integer(key.Str, value)
		case "green":
			c.Green, err = integer(key.Str, value)
		case "blue":
			c.Blue, err = integer(key.Str, value)
		case "schedule":
			c.Schedule, err = parseSchedule(value)
		default:
			err = fmt.Errorf("config: unknown key %q", key.Str)
		}
		return err == nil
	})
	if err != nil {
		return Config{}, err
	}
	return c, nil
}

func parseSchedule(v gjson.Result) (*Schedule, error) {
	if !v.IsObject() {
		return nil, typeError("schedule", "object")
	}
	s := &Schedule{
		ElevationDay:   DefaultElevationDay,
		ElevationNight: DefaultElevationNight,
	}
	var err error
	v.ForEach(func(key, value gjson.Result) bool {
		k := "schedule." + key.Str
		switch key.Str {
		case "latitude":
			s.Latitude, err = number(k, value)
		case "longitude":
			s.Longitude, err = number(k, value)
		case "elevation_day":
			s.ElevationDay, err = number(k, value)
		case "elevation_night":
			s.ElevationNight, err = number(k, value)
		case "gamma_day":
			s.GammaDay, err = number(k, value)
		case "gamma_night":
			s.GammaNight, err = number(k, value)
		default:
			err = fmt.Errorf("config: unknown key %q", k)
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	if s.ElevationNight >= s.ElevationDay {
		return nil, errors.New("config: schedule: night elevation must be smaller than day")
	}
	if s.Latitude < -90 || s.Latitude > 90 || s.Longitude < -180 || s.Longitude > 180 {
		return nil, fmt.Errorf("config: schedule: invalid coordinates %v,%v", s.Latitude, s.Longitude)
	}
	return s, nil
}

// Params returns the colour map parameters at the specified time. The depth
// defaults to [cmap.DefaultDepth]. If there is a schedule, it overrides the
// gamma, and unset schedule gammas default to it.
func (c Config) Params(now time.Time) cmap.Params {
	p := cmap.Params{
		Depth:    c.Depth,
		Gamma:    c.Gamma,
		MinGamma: c.MinGamma,
		Red:      c.Red,
		Green:    c.Green,
		Blue:     c.Blue,
	}
	if p.Depth == 0 {
		p.Depth = cmap.DefaultDepth
	}
	if s := c.Schedule; s != nil {
		gammaDay, gammaNight := s.GammaDay, s.GammaNight
		if gammaDay == 0 {
			gammaDay = c.Gamma
		}
		if gammaNight == 0 {
			gammaNight = c.Gamma
		}
		p.Gamma = cmap.Solar(now, s.Latitude, s.Longitude, s.ElevationNight, s.ElevationDay, gammaNight, gammaDay)
	}
	return p
}

func number(key string, v gjson.Result) (float64, error) {
	if v.Type != gjson.Number {
		return 0, typeError(key, "number")
	}
	return v.Num, nil
}

func integer(key string, v gjson.Result) (int, error) {
	n, err := number(key, v)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, typeError(key, "integer")
	}
	return int(n), nil
}

func typeError(key, typ string) error {
	return fmt.Errorf("config: %q: expected %s", key, typ)
}
