package scheduler

import (
	"context"
	"time"

	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/leads/expiry"
	"salesrep_portal/platform/config"
	"salesrep_portal/platform/logger"
)

const (
	defaultExpirySweepInterval  = time.Hour
	defaultExpiringSoonInterval = 24 * time.Hour
	defaultExpiringSoonDays     = config.DefaultExpiringSoonDays
)

// ExpirySweeper is the lead expiry work driven by the loop.
type ExpirySweeper interface {
	ExpireStaleLeads(ctx context.Context, now time.Time) ([]domain.ExpirySummary, expiry.Result, error)
	AnnounceExpiringSoon(ctx context.Context, within time.Duration) (int, error)
}

// LeadExpiryLoop runs the expiry sweep and the expiring-soon announcement
// on their own intervals.
type LeadExpiryLoop struct {
	sweeper          ExpirySweeper
	log              *logger.Logger
	sweepInterval    time.Duration
	announceInterval time.Duration
	announceWindow   time.Duration
	now              func() time.Time
}

func NewLeadExpiryLoop(sweeper ExpirySweeper, cfg config.ExpiryConfig, log *logger.Logger) *LeadExpiryLoop {
	sweepInterval := cfg.GetExpirySweepInterval()
	if sweepInterval <= 0 {
		sweepInterval = defaultExpirySweepInterval
	}
	announceInterval := cfg.GetExpiringSoonInterval()
	if announceInterval <= 0 {
		announceInterval = defaultExpiringSoonInterval
	}
	days := cfg.GetExpiringSoonDays()
	if days <= 0 {
		days = defaultExpiringSoonDays
	}

	return &LeadExpiryLoop{
		sweeper:          sweeper,
		log:              log,
		sweepInterval:    sweepInterval,
		announceInterval: announceInterval,
		announceWindow:   time.Duration(days) * 24 * time.Hour,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (l *LeadExpiryLoop) Run(ctx context.Context) {
	if l == nil || l.sweeper == nil {
		return
	}

	l.sweep(ctx)
	l.announce(ctx)

	sweepTicker := time.NewTicker(l.sweepInterval)
	defer sweepTicker.Stop()
	announceTicker := time.NewTicker(l.announceInterval)
	defer announceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweepTicker.C:
			l.sweep(ctx)
		case <-announceTicker.C:
			l.announce(ctx)
		}
	}
}

func (l *LeadExpiryLoop) sweep(ctx context.Context) {
	_, res, err := l.sweeper.ExpireStaleLeads(ctx, l.now())
	if err != nil {
		l.log.Warn("lead expiry sweep failed", "error", err, "expired", res.Expired)
	}
}

func (l *LeadExpiryLoop) announce(ctx context.Context) {
	n, err := l.sweeper.AnnounceExpiringSoon(ctx, l.announceWindow)
	if err != nil {
		l.log.Warn("expiring-soon announcement failed", "error", err)
		return
	}
	if n > 0 {
		l.log.Info("expiring-soon leads announced", "count", n)
	}
}
