package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

// Manager owns the simulated and live sources of one viewport and keeps exactly
// one of them watched at a time. The fix callback may run while the manager's
// lock is held and must not call back into the manager.
type Manager struct {
	mu     sync.Mutex
	base   context.Context
	sim    *Simulated
	live   *Live
	mode   domain.LocationSourceMode
	sub    *Subscription
	gen    atomic.Uint64
	onFix  func(Fix)
	logger *slog.Logger
}

// NewManager builds a manager that forwards every fix from the active source to onFix.
func NewManager(sim *Simulated, live *Live, onFix func(Fix), logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if live == nil {
		live = NewLive(nil, logger)
	}
	return &Manager{sim: sim, live: live, onFix: onFix, logger: logger, mode: domain.ModeSimulated}
}

// Start begins watching the source for mode. ctx bounds the lifetime of every watch
// the manager opens, including those started by later mode switches.
func (m *Manager) Start(ctx context.Context, mode domain.LocationSourceMode) error {
	m.mu.Lock()
	m.base = ctx
	m.mu.Unlock()
	return m.SwitchMode(ctx, mode)
}

// SwitchMode stops the active watch and starts the other source. Switching to live
// first takes a one-shot reading without holding the manager lock; if that fails the
// active watch is left untouched (or simulated is started when nothing is watched)
// and ErrLocationUnavailable is returned.
func (m *Manager) SwitchMode(ctx context.Context, mode domain.LocationSourceMode) error {
	if _, err := domain.ParseMode(string(mode)); err != nil {
		return err
	}

	m.mu.Lock()
	if m.base == nil {
		m.base = context.Background()
	}
	if mode == m.mode && m.sub != nil {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if mode == domain.ModeLive {
		if _, err := m.live.Current(ctx); err != nil {
			m.logger.Info("live location unavailable, staying simulated", "error", err)
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.sub == nil {
				if restoreErr := m.watch(domain.ModeSimulated); restoreErr != nil {
					return errors.Join(err, restoreErr)
				}
			}
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// another switch may have won while the reading was taken
	if mode == m.mode && m.sub != nil {
		return nil
	}

	m.stopLocked()

	if err := m.watch(mode); err != nil {
		if mode == domain.ModeLive {
			if restoreErr := m.watch(domain.ModeSimulated); restoreErr != nil {
				return errors.Join(err, restoreErr)
			}
		}
		return err
	}
	m.logger.Info("location mode switched", "mode", mode)
	return nil
}

// watch starts the source for mode; m.mu must be held.
func (m *Manager) watch(mode domain.LocationSourceMode) error {
	gen := m.gen.Add(1)
	forward := func(fix Fix) {
		// late deliveries from a stopped watch are dropped
		if m.gen.Load() == gen && m.onFix != nil {
			m.onFix(fix)
		}
	}
	sub, err := m.source(mode).Watch(m.base, forward)
	if err != nil {
		return fmt.Errorf("watch %s location: %w", mode, err)
	}
	m.mode = mode
	m.sub = sub
	return nil
}

func (m *Manager) source(mode domain.LocationSourceMode) Source {
	if mode == domain.ModeLive {
		return m.live
	}
	return m.sim
}

// Move steps the simulated source. It fails with ErrInvalidMode while live.
func (m *Manager) Move(dir domain.Direction) (domain.Coordinate, error) {
	m.mu.Lock()
	mode := m.mode
	m.mu.Unlock()
	if mode != domain.ModeSimulated {
		return domain.Coordinate{}, fmt.Errorf("%w: movement needs simulated mode", domain.ErrInvalidMode)
	}
	return m.sim.Move(dir)
}

// Mode returns the active mode.
func (m *Manager) Mode() domain.LocationSourceMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Active returns the active source.
func (m *Manager) Active() Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source(m.mode)
}

// Simulated returns the simulated source.
func (m *Manager) Simulated() *Simulated { return m.sim }

// Stop releases the active watch. The mode is kept.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked()
}

func (m *Manager) stopLocked() error {
	m.gen.Add(1)
	err := m.sub.Stop()
	if err != nil {
		m.logger.Warn("stopping location watch", "mode", m.mode, "error", err)
	}
	m.sub = nil
	return err
}
