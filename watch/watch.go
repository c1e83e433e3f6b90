// Package watch keeps a colour map installed while its inputs change. The map
// is re-installed when the config file changes, after the system resumes from
// sleep (the kernel or display server may have reset the palette), and when a
// scheduled gamma moves.
package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/pgaskin/fbcmap/cmap"
)

// Sink is where colour maps are installed. It is only used from the goroutine
// calling [Run].
type Sink interface {
	Install(*cmap.Map) error
	Restore() error
}

// Options configures [Run].
type Options struct {
	// Sink receives the colour maps.
	Sink Sink

	// Load returns the parameters for the provided time. It is called again
	// on every trigger, so it should re-read any config file.
	Load func(now time.Time) (cmap.Params, error)

	// ConfigFile, if set, triggers a reload when it is written or replaced.
	ConfigFile string

	// Interval, if non-zero, reloads periodically. The map is only
	// re-installed if it changed.
	Interval time.Duration

	// Resume re-installs the map after the system resumes from sleep, using
	// systemd-logind over the system bus.
	Resume bool

	// RestoreOnExit restores the original palette when ctx is done.
	RestoreOnExit bool

	// Logger is used for logs from this package if not nil.
	Logger *slog.Logger
}

// Run installs the colour map, then re-installs it whenever a trigger fires
// until ctx is done. Errors while loading or installing are logged and do not
// stop the loop. An error is only returned if the triggers could not be set
// up.
func Run(ctx context.Context, opt Options) error {
	if opt.Sink == nil || opt.Load == nil {
		return errors.New("watch: sink and load are required")
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var configCh, resumeCh <-chan struct{}
	if opt.ConfigFile != "" {
		ch, err := watchFile(ctx, opt.ConfigFile, logger)
		if err != nil {
			return err
		}
		configCh = ch
	}
	if opt.Resume {
		ch, err := watchResume(ctx, logger)
		if err != nil {
			logger.Warn("watch: not re-applying on resume", "error", err)
		} else {
			resumeCh = ch
		}
	}
	var tickCh <-chan time.Time
	if opt.Interval > 0 {
		ticker := time.NewTicker(opt.Interval)
		defer ticker.Stop()
		tickCh = ticker.C
	}
	loop(ctx, opt, logger, triggers{
		config: configCh,
		resume: resumeCh,
		tick:   tickCh,
	})
	return nil
}

type triggers struct {
	config <-chan struct{}
	resume <-chan struct{}
	tick   <-chan time.Time
}

// loop installs the colour map and re-installs it on every trigger until ctx
// is done. A resume always re-installs, the others only if the map changed.
func loop(ctx context.Context, opt Options, logger *slog.Logger, t triggers) {
	var last *cmap.Map
	apply := func(reason string, force bool) {
		p, err := opt.Load(time.Now())
		if err != nil {
			logger.Error("watch: failed to load parameters", "reason", reason, "error", err)
			return
		}
		m, err := cmap.Build(p)
		if err != nil {
			logger.Error("watch: failed to build colour map", "reason", reason, "error", err)
			return
		}
		if !force && last.Equal(m) {
			logger.Debug("watch: colour map unchanged", "reason", reason)
			return
		}
		if err := opt.Sink.Install(m); err != nil {
			logger.Error("watch: failed to install colour map", "reason", reason, "error", err)
			return
		}
		last = m
		logger.Info("watch: installed colour map", "reason", reason, "depth", p.Depth, "gamma", p.Gamma, "red", p.Red, "green", p.Green, "blue", p.Blue)
	}

	apply("start", true)
	for {
		select {
		case <-ctx.Done():
			if opt.RestoreOnExit && last != nil {
				if err := opt.Sink.Restore(); err != nil {
					logger.Error("watch: failed to restore colour map", "error", err)
				}
			}
			return
		case <-t.config:
			apply("config", false)
		case <-t.resume:
			apply("resume", true)
		case <-t.tick:
			apply("tick", false)
		}
	}
}

// notify sends to a single-buffered channel without blocking, coalescing
// pending notifications.
func notify(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
