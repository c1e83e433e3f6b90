//go:build !linux

package device

import (
	"errors"
	"log/slog"
)

// OpenFramebuffer is only supported on Linux.
func OpenFramebuffer(name string, logger *slog.Logger) (Sink, error) {
	return nil, errors.ErrUnsupported
}
