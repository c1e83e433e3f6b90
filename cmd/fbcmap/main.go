// Command fbcmap computes a gamma-corrected colour map and installs it into a
// display's hardware palette.
//
//	fbcmap 2.2                      # /dev/fb0, 256 entries
//	fbcmap -d /dev/fb1 -n 64 -r 2 1.8
//	fbcmap -d x11 1.2               # RandR gamma ramps on $DISPLAY
//	fbcmap --dry-run 2.2            # print the table
//	fbcmap -c fbcmap.json --watch   # keep it applied
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pgaskin/fbcmap/cmap"
	"github.com/pgaskin/fbcmap/config"
	"github.com/pgaskin/fbcmap/device"
	"github.com/pgaskin/fbcmap/watch"
	"github.com/spf13/pflag"
)

var version = ""

func displayVersion() string {
	if version != "" {
		return version
	}
	return "dev"
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	flags *pflag.FlagSet

	Device     string
	Depth      int
	Red        int
	Green      int
	Blue       int
	ConfigFile string
	Gamma      string
}

// Config loads the config file, if any, and applies the command-line
// overrides.
func (o *options) Config() (config.Config, error) {
	var c config.Config
	if o.ConfigFile != "" {
		var err error
		if c, err = config.Load(o.ConfigFile); err != nil {
			return c, err
		}
	}
	if o.flags.Changed("device") || c.Device == "" {
		c.Device = o.Device
	}
	if o.flags.Changed("depth") || c.Depth == 0 {
		c.Depth = o.Depth
	}
	if o.flags.Changed("red") {
		c.Red = o.Red
	}
	if o.flags.Changed("green") {
		c.Green = o.Green
	}
	if o.flags.Changed("blue") {
		c.Blue = o.Blue
	}
	if o.Gamma != "" {
		gamma, err := strconv.ParseFloat(o.Gamma, 64)
		if err != nil {
			return c, fmt.Errorf("%w %q", cmap.ErrInvalidGamma, o.Gamma)
		}
		c.Gamma = gamma
		c.Schedule = nil
	}
	return c, nil
}

// Loader returns a function which reloads the config and returns the colour
// map parameters at the specified time. The sink stays on the device which was
// opened, so a warning is logged once each time the configured device changes
// to another one.
func (o *options) Loader(opened string, logger *slog.Logger) func(time.Time) (cmap.Params, error) {
	last := opened
	return func(now time.Time) (cmap.Params, error) {
		c, err := o.Config()
		if err != nil {
			return cmap.Params{}, err
		}
		if c.Device != last && c.Device != opened {
			logger.Warn("device changed, restart to use it", "device", opened, "configured", c.Device)
		}
		last = c.Device
		return c.Params(now), nil
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	o := &options{
		flags: pflag.NewFlagSet("fbcmap", pflag.ContinueOnError),
	}
	o.flags.SetOutput(stderr)
	o.flags.StringVarP(&o.Device, "device", "d", "", "framebuffer device, or x11[:DISPLAY] for RandR (default "+device.DefaultFramebuffer+")")
	o.flags.IntVarP(&o.Depth, "depth", "n", cmap.DefaultDepth, "number of map entries per colour")
	o.flags.IntVarP(&o.Red, "red", "r", 0, "offset for red channel")
	o.flags.IntVarP(&o.Green, "green", "g", 0, "offset for green channel")
	o.flags.IntVarP(&o.Blue, "blue", "b", 0, "offset for blue channel")
	o.flags.StringVarP(&o.ConfigFile, "config", "c", "", "JSON config file (flags take precedence)")
	var (
		verbose       = o.flags.BoolP("verbose", "v", false, "show debug logs")
		showVersion   = o.flags.BoolP("version", "V", false, "show the version and exit")
		dryRun        = o.flags.Bool("dry-run", false, "print the colour map instead of installing it")
		info          = o.flags.Bool("info", false, "show the palette size of the device and exit")
		watchMode     = o.flags.BoolP("watch", "w", false, "keep the colour map installed, re-applying it on config changes, resume, and schedule changes")
		interval      = o.flags.Duration("interval", time.Minute, "how often to re-evaluate the schedule in watch mode")
		restoreOnExit = o.flags.Bool("restore-on-exit", false, "restore the original palette when watch mode exits")
	)
	o.flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: fbcmap [options] gamma\n\nOptions:\n")
		o.flags.PrintDefaults()
	}

	if err := o.flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVersion {
		fmt.Fprintf(stdout, "fbcmap %s\n", displayVersion())
		return 0
	}
	switch o.flags.NArg() {
	case 0:
	case 1:
		o.Gamma = o.flags.Arg(0)
	default:
		o.flags.Usage()
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: level,
	}))
	logger.Debug("fbcmap starting", "version", displayVersion())

	fail := func(err error) int {
		fmt.Fprintf(stderr, "fbcmap: %v\n", err)
		return 1
	}

	c, err := o.Config()
	if err != nil {
		return fail(err)
	}

	if *info {
		sink, err := device.Open(c.Device, logger)
		if err != nil {
			return fail(err)
		}
		defer sink.Close()

		size, err := sink.Size()
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "%d entries per channel (%s per colour map)\n", size, humanize.IBytes(cmapBytes(size)))
		return 0
	}

	// validate before touching the device
	p := c.Params(time.Now())
	m, err := cmap.Build(p)
	if err != nil {
		return fail(err)
	}
	logger.Debug("built colour map", "depth", p.Depth, "gamma", p.Gamma, "red", p.Red, "green", p.Green, "blue", p.Blue, "size", humanize.IBytes(cmapBytes(m.Len())))

	if *dryRun {
		if _, err := stdout.Write(m.AppendText(nil)); err != nil {
			return fail(err)
		}
		return 0
	}

	sink, err := device.Open(c.Device, logger)
	if err != nil {
		return fail(err)
	}
	defer sink.Close()

	if !*watchMode {
		if err := sink.Install(m); err != nil {
			return fail(err)
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watch.Run(ctx, watch.Options{
		Sink:          sink,
		Load:          o.Loader(c.Device, logger),
		ConfigFile:    o.ConfigFile,
		Interval:      *interval,
		Resume:        true,
		RestoreOnExit: *restoreOnExit,
		Logger:        logger,
	}); err != nil {
		return fail(err)
	}
	return 0
}

func cmapBytes(n int) uint64 {
	return uint64(n) * 3 * 2 // [3*n]uint16
}
