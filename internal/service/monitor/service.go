package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/ocs-userinfo/internal/domain"
	"github.com/vertextoedge/ocs-userinfo/internal/port"
)

// Fetcher retrieves user info from an OCS server
type Fetcher interface {
	Fetch(ctx context.Context, client port.OCSClient, targetUserID string) (*domain.UserInfo, error)
}

// Config contains monitor service configuration
type Config struct {
	// Interval is how often user info is fetched
	Interval time.Duration

	// UserID is the user to watch, empty for the authenticated user
	UserID string
}

// DefaultConfig returns default monitor configuration
func DefaultConfig() *Config {
	return &Config{
		Interval: 15 * time.Minute,
	}
}

// Service periodically fetches user info and records snapshots
type Service struct {
	config    *Config
	fetcher   Fetcher
	client    port.OCSClient
	snapshots port.SnapshotRepository
	logger    *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new monitor Service
func New(cfg *Config, fetcher Fetcher, client port.OCSClient, snapshots port.SnapshotRepository, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		config:    cfg,
		fetcher:   fetcher,
		client:    client,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Start runs the monitor until ctx is canceled or Stop is called
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("monitor service already running")
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("monitor service started",
		zap.Duration("interval", s.config.Interval),
		zap.String("user", s.config.UserID))

	s.wg.Add(1)
	go s.monitorLoop(ctx)

	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("monitor service stopped")
	return nil
}

// Stop stops the monitor service
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.running = false
}

func (s *Service) monitorLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

// poll runs one cycle and logs failures; the loop keeps going
func (s *Service) poll(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		kind, _ := domain.KindOf(err)
		s.logger.Error("user info poll failed", zap.Error(err), zap.Stringer("kind", kind))
	}
}

// RunOnce fetches user info once and records it
func (s *Service) RunOnce(ctx context.Context) (*domain.Snapshot, error) {
	info, err := s.fetcher.Fetch(ctx, s.client, s.config.UserID)
	if err != nil {
		return nil, err
	}

	if enabled, known := info.IsEnabled(); known && !enabled {
		s.logger.Warn("user account is disabled", zap.String("user", info.ID))
	}

	previous, err := s.snapshots.LatestSnapshot(ctx, info.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("failed to load previous snapshot", zap.Error(err))
		}
		previous = nil
	}

	snapshot := &domain.Snapshot{
		Server:    s.client.BaseURL(),
		FetchedAt: time.Now(),
		Info:      info,
	}
	if err := s.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logQuotaChange(previous, snapshot)
	return snapshot, nil
}

func (s *Service) logQuotaChange(previous, current *domain.Snapshot) {
	q := current.Info.Quota
	if q == nil {
		s.logger.Debug("server reported no quota", zap.String("user", current.Info.ID))
		return
	}

	fields := []zap.Field{
		zap.String("user", current.Info.ID),
		zap.Int64("used", q.Used),
	}
	switch {
	case q.IsUnlimited():
		fields = append(fields, zap.Bool("unlimited", true))
	case q.HasLimit():
		fields = append(fields, zap.Int64("limit", q.Limit), zap.Float64("relative", q.Relative))
	case !q.LimitAvailable():
		// Legacy servers only report the computed total
		fields = append(fields, zap.Int64("total", q.Total), zap.Float64("relative", q.Relative))
	}

	if previous != nil && previous.Info.Quota != nil {
		delta := q.Used - previous.Info.Quota.Used
		if delta == 0 {
			s.logger.Debug("quota unchanged", fields...)
			return
		}
		fields = append(fields, zap.Int64("delta", delta))
	}
	s.logger.Info("quota recorded", fields...)
}
