package watch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	login1Path   = dbus.ObjectPath("/org/freedesktop/login1")
	login1Iface  = "org.freedesktop.login1.Manager"
	login1Member = "PrepareForSleep"
)

// watchResume notifies when systemd-logind reports that the system has
// resumed from sleep.
func watchResume(ctx context.Context, logger *slog.Logger) (<-chan struct{}, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(login1Path),
		dbus.WithMatchInterface(login1Iface),
		dbus.WithMatchMember(login1Member),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("add logind match: %w", err)
	}

	sigs := make(chan *dbus.Signal, 4)
	conn.Signal(sigs)

	ch := make(chan struct{}, 1)
	go func() {
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-sigs:
				if !ok {
					return
				}
				if isResume(sig) {
					logger.Debug("watch: resumed from sleep")
					notify(ch)
				}
			}
		}
	}()
	return ch, nil
}

// isResume checks if sig is PrepareForSleep(false).
func isResume(sig *dbus.Signal) bool {
	if sig.Path != login1Path || sig.Name != login1Iface+"."+login1Member || len(sig.Body) != 1 {
		return false
	}
	start, ok := sig.Body[0].(bool)
	return ok && !start
}
