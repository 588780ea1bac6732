package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionCloser is the slice of the attendance service the sweeper needs
type SessionCloser interface {
	CloseExpiredSessions(ctx context.Context) (int, error)
}

// SessionSweeperConfig holds configuration for the session sweeper
type SessionSweeperConfig struct {
	// SweepInterval is how often expired sessions are closed
	SweepInterval time.Duration
}

// DefaultSessionSweeperConfig returns default sweeper configuration
func DefaultSessionSweeperConfig() SessionSweeperConfig {
	return SessionSweeperConfig{
		SweepInterval: time.Minute,
	}
}

// SessionSweeper periodically closes expired checkin sessions. It is
// the external trigger for the attendance service's sweep operation,
// which never schedules itself.
type SessionSweeper struct {
	config SessionSweeperConfig
	closer SessionCloser
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSessionSweeper creates a new session sweeper
func NewSessionSweeper(config SessionSweeperConfig, closer SessionCloser, logger *zap.Logger) *SessionSweeper {
	return &SessionSweeper{
		config: config,
		closer: closer,
		logger: logger,
	}
}

// Start starts the sweeper loop
func (s *SessionSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Session sweeper started",
		zap.Duration("sweep_interval", s.config.SweepInterval),
	)
	return nil
}

// Stop stops the sweeper and waits for the current sweep to finish
func (s *SessionSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Session sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SessionSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	closed, err := s.closer.CloseExpiredSessions(ctx)
	if err != nil {
		s.logger.Error("Session sweep failed", zap.Error(err))
		return
	}
	if closed > 0 {
		s.logger.Info("Closed expired checkin sessions", zap.Int("closed", closed))
	}
}
