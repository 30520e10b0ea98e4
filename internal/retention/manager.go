package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweeper removes staged data older than a retention window
type Sweeper interface {
	Sweep(olderThan time.Duration) (int, error)
}

// ManagerOptions contains configuration options for the Manager
type ManagerOptions struct {
	Sweeper   Sweeper
	Retention time.Duration // zero disables sweeping
	Schedule  string        // cron spec or descriptor, e.g. "@hourly"
	Logger    zerolog.Logger
}

// Manager schedules periodic sweeps of abandoned staging directories
type Manager struct {
	sweeper   Sweeper
	retention time.Duration
	logger    zerolog.Logger

	// Concurrency
	mutex   sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool

	// Scheduling
	cron    *cron.Cron
	entryID cron.EntryID
}

// NewManager creates and starts a retention manager
func NewManager(opts ManagerOptions) (*Manager, error) {
	if opts.Sweeper == nil {
		return nil, fmt.Errorf("a valid sweeper must be provided")
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		sweeper:   opts.Sweeper,
		retention: opts.Retention,
		logger:    opts.Logger,
		ctx:       ctx,
		cancel:    cancel,
		cron:      cron.New(),
	}

	if m.retention <= 0 {
		m.logger.Info().Msg("staging retention disabled")
		return m, nil
	}

	schedule := opts.Schedule
	if schedule == "" {
		schedule = "@hourly"
	}

	id, err := m.cron.AddFunc(schedule, func() {
		if _, err := m.RunOnce(); err != nil {
			m.logger.Error().Err(err).Msg("scheduled staging sweep failed")
		}
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to schedule staging sweep '%s': %w", schedule, err)
	}
	m.entryID = id

	m.cron.Start()
	m.logger.Info().Str("schedule", schedule).Dur("retention", m.retention).Msg("staging sweeper scheduled")

	return m, nil
}

// Enabled reports whether a sweep is scheduled
func (m *Manager) Enabled() bool {
	return m.entryID != 0
}

// Next returns the next scheduled sweep time, or the zero time when disabled
func (m *Manager) Next() time.Time {
	if !m.Enabled() {
		return time.Time{}
	}
	return m.cron.Entry(m.entryID).Next
}

// RunOnce performs a single sweep. Overlapping runs are skipped.
func (m *Manager) RunOnce() (int, error) {
	if m.retention <= 0 {
		return 0, nil
	}

	select {
	case <-m.ctx.Done():
		return 0, nil
	default:
	}

	m.mutex.Lock()
	if m.running {
		m.mutex.Unlock()
		m.logger.Debug().Msg("staging sweep already running, skipping")
		return 0, nil
	}
	m.running = true
	m.mutex.Unlock()

	defer func() {
		m.mutex.Lock()
		m.running = false
		m.mutex.Unlock()
	}()

	removed, err := m.sweeper.Sweep(m.retention)
	if err != nil {
		return removed, fmt.Errorf("failed to sweep staging: %w", err)
	}

	if removed > 0 {
		m.logger.Info().Int("removed", removed).Msg("swept abandoned staging directories")
	}
	return removed, nil
}

// Stop gracefully stops the manager, waiting for a running sweep to finish
func (m *Manager) Stop() {
	m.cancel()
	<-m.cron.Stop().Done()
}
