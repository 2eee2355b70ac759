// Package notify sends desktop notifications over the
// org.freedesktop.Notifications D-Bus interface.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

// D-Bus constants for the notification service.
const (
	BusName       = "org.freedesktop.Notifications"
	ObjectPath    = dbus.ObjectPath("/org/freedesktop/Notifications")
	NotifyMethod  = BusName + ".Notify"
	appName       = "wallrot"
	stackTag      = "wallrot"
	expireTimeout = int32(5000)
)

// DesktopNotifier shows notifications through the session bus.
// The connection is opened on first use.
type DesktopNotifier struct {
	logger      *zap.Logger
	enabled     bool
	defaultIcon string
	dial        func() (DBusClient, error)

	mu   sync.Mutex
	conn DBusClient
}

// NewDesktopNotifier creates a notifier; a disabled notifier does nothing
func NewDesktopNotifier(logger *zap.Logger, enabled bool, defaultIcon string) *DesktopNotifier {
	return &DesktopNotifier{
		logger:      logger,
		enabled:     enabled,
		defaultIcon: defaultIcon,
		dial:        NewStdDBusClient,
	}
}

// Notify shows a notification. Repeated notifications replace each other
// on daemons that honour the x-dunst-stack-tag hint.
func (n *DesktopNotifier) Notify(ctx context.Context, summary, body, icon string) error {
	if !n.enabled {
		return nil
	}

	conn, err := n.connection()
	if err != nil {
		return fmt.Errorf("session bus connection failed: %w", err)
	}

	if icon == "" {
		icon = n.defaultIcon
	}

	hints := map[string]dbus.Variant{
		"x-dunst-stack-tag": dbus.MakeVariant(stackTag),
		"urgency":           dbus.MakeVariant(byte(0)),
	}

	call := conn.Call(ctx, BusName, ObjectPath, NotifyMethod,
		appName, uint32(0), icon, summary, body, []string{}, hints, expireTimeout)
	if call == nil {
		return fmt.Errorf("notify call returned no result")
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("notify call failed: %w", err)
	}

	n.logger.Debug("Notification sent",
		zap.Uint32("id", id),
		zap.String("summary", summary))
	return nil
}

// Close releases the D-Bus connection if one was opened
func (n *DesktopNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	return err
}

func (n *DesktopNotifier) connection() (DBusClient, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn != nil {
		return n.conn, nil
	}
	conn, err := n.dial()
	if err != nil {
		return nil, err
	}
	n.conn = conn
	return conn, nil
}
