// Package expiry runs the periodic lead expiry sweep and the expiring-soon scan.
package expiry

import (
	"context"
	"time"

	"salesrep_portal/internal/audit"
	"salesrep_portal/internal/events"
	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/logger"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultBatchSize = 500

var (
	leadsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leads_expired_total",
		Help: "Leads moved to Expired by the sweeper.",
	})
	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "leads_expiry_sweep_duration_seconds",
		Help:    "Duration of one expiry sweep.",
		Buckets: prometheus.DefBuckets,
	})
	sweepFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leads_expiry_sweep_failures_total",
		Help: "Lead expiry writes that failed and will be retried on the next sweep.",
	})
)

// Store is the persistence the sweeper needs.
type Store interface {
	ListDueLeadIDs(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	ExpireIfDue(ctx context.Context, id uuid.UUID, now time.Time) (domain.ExpirySummary, bool, error)
	ListExpiringSoon(ctx context.Context, scope scoping.Predicate, from, until time.Time) ([]domain.ExpirySummary, error)
}

// AuditSink receives one Expire event per expired lead.
type AuditSink interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Result summarizes one sweep.
type Result struct {
	Candidates int
	Expired    int
	Failed     int
}

type Sweeper struct {
	store     Store
	audit     AuditSink
	bus       events.Bus
	log       *logger.Logger
	batchSize int
	now       func() time.Time
}

func NewSweeper(store Store, sink AuditSink, bus events.Bus, log *logger.Logger) *Sweeper {
	return &Sweeper{
		store:     store,
		audit:     sink,
		bus:       bus,
		log:       log,
		batchSize: defaultBatchSize,
		now:       time.Now,
	}
}

// WithClock replaces the sweeper's time source.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// ExpireStaleLeads expires every lead whose expiry is at or before now and
// returns the summaries of the leads it expired. Each lead is expired by its
// own conditional write, so one failure never blocks the rest and a lead
// extended or converted meanwhile is left alone. Failed leads stay due and are
// picked up by the next sweep.
func (s *Sweeper) ExpireStaleLeads(ctx context.Context, now time.Time) ([]domain.ExpirySummary, Result, error) {
	started := time.Now()
	defer func() { sweepDuration.Observe(time.Since(started).Seconds()) }()

	now = now.UTC()
	var res Result
	expiredLeads := make([]domain.ExpirySummary, 0)
	for {
		ids, err := s.store.ListDueLeadIDs(ctx, now, s.batchSize)
		if err != nil {
			return expiredLeads, res, err
		}
		res.Candidates += len(ids)

		progressed := false
		for _, id := range ids {
			if ctx.Err() != nil {
				return expiredLeads, res, ctx.Err()
			}
			summary, expired, err := s.store.ExpireIfDue(ctx, id, now)
			if err != nil {
				res.Failed++
				sweepFailuresTotal.Inc()
				s.log.Warn("lead expiry failed", "lead_id", id.String(), "error", err)
				continue
			}
			if !expired {
				continue
			}
			progressed = true
			res.Expired++
			leadsExpiredTotal.Inc()
			expiredLeads = append(expiredLeads, summary)
			s.afterExpire(ctx, summary, now)
		}

		if len(ids) < s.batchSize || !progressed {
			break
		}
	}

	s.log.SweepCompleted(res.Candidates, res.Expired, time.Since(started))
	return expiredLeads, res, nil
}

func (s *Sweeper) afterExpire(ctx context.Context, summary domain.ExpirySummary, now time.Time) {
	s.log.LeadTransition(summary.LeadID.String(), "", "", string(domain.StatusExpired))

	if s.audit != nil {
		event := audit.NewEvent(audit.ActionExpire, audit.EntityLead, &summary.LeadID, nil, now).
			With("expiryDate", summary.ExpiryDate)
		if err := s.audit.Emit(ctx, event); err != nil {
			s.log.Error("audit emit failed", "action", string(event.Action), "error", err)
		}
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadExpired{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       summary.LeadID,
			Company:      summary.Company,
			ExpiryDate:   summary.ExpiryDate,
			AssignedToID: summary.AssignedToID,
			SalesOrgID:   summary.SalesOrgID,
		})
	}
}

// AnnounceExpiringSoon publishes LeadExpiringSoon for every open lead that
// expires within window. It returns how many were announced.
func (s *Sweeper) AnnounceExpiringSoon(ctx context.Context, window time.Duration) (int, error) {
	now := s.now().UTC()
	leads, err := s.store.ListExpiringSoon(ctx, scoping.Predicate{Kind: scoping.MatchAll}, now, now.Add(window))
	if err != nil {
		return 0, err
	}
	if s.bus == nil {
		return 0, nil
	}
	for _, l := range leads {
		s.bus.Publish(ctx, events.LeadExpiringSoon{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       l.LeadID,
			Company:      l.Company,
			ExpiryDate:   l.ExpiryDate,
			AssignedToID: l.AssignedToID,
		})
	}
	return len(leads), nil
}
