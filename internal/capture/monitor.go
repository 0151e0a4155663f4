package capture

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"carol/internal/logging"
)

// Monitor listens for udev netlink events on the sound subsystem and keeps
// an availability flag current as audio devices come and go. The daemon
// runs without it when netlink is unreachable; availability then falls back
// to device node probing.
type Monitor struct {
	logger *slog.Logger

	mu        sync.Mutex
	conn      *netlink.UEventConn
	quit      chan struct{}
	running   bool
	available bool
}

// NewMonitor creates a sound subsystem monitor. The initial availability
// comes from the provided probe result.
func NewMonitor(logger *slog.Logger, initiallyAvailable bool) *Monitor {
	return &Monitor{
		logger:    logging.NewComponentLogger(logger, "capture-monitor"),
		available: initiallyAvailable,
	}
}

// Start begins listening for udev events. A failed netlink connection is
// logged and ignored; the monitor simply never updates availability.
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket; audio device hotplug tracking unavailable",
			logging.Error(err))
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("audio device monitor started")
	return nil
}

// Stop shuts the monitor down.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("audio device monitor stopped")
}

// Running reports whether the monitor is listening for events.
func (m *Monitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Available reports the last known audio device availability.
func (m *Monitor) Available() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

func (m *Monitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(queue, errs, m.buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(uevent)
		case err := <-errs:
			m.logger.Warn("audio device monitor error", logging.Error(err))
		}
	}
}

// buildMatcher matches add and remove events on the sound subsystem.
func (m *Monitor) buildMatcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "sound",
		},
	})
	return rules
}

func (m *Monitor) handleEvent(uevent netlink.UEvent) {
	available := uevent.Action != netlink.REMOVE

	m.mu.Lock()
	changed := m.available != available
	m.available = available
	m.mu.Unlock()

	if changed {
		m.logger.Info("audio device availability changed",
			logging.Bool("available", available),
			logging.String("action", string(uevent.Action)),
			logging.String("kobj", uevent.KObj))
	}
}
