package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesrep_portal/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("system settings not initialized")

// Settings is the singleton row of administrator-controlled durations.
type Settings struct {
	CoolingPeriodDays     int        `json:"coolingPeriodDays"`
	LeadInitialExpiryDays int        `json:"leadInitialExpiryDays"`
	LeadExtensionDays     int        `json:"leadExtensionDays"`
	UpdatedAt             time.Time  `json:"updatedAt"`
	UpdatedBy             *uuid.UUID `json:"updatedBy,omitempty"`
}

type Repository struct {
	q db.Querier
}

func New(q db.Querier) *Repository {
	return &Repository{q: q}
}

func (r *Repository) Get(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.q.QueryRow(ctx, `
		SELECT cooling_period_days, lead_initial_expiry_days, lead_extension_days, updated_at, updated_by
		FROM system_settings WHERE id = 1
	`).Scan(&s.CoolingPeriodDays, &s.LeadInitialExpiryDays, &s.LeadExtensionDays, &s.UpdatedAt, &s.UpdatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, ErrNotFound
	}
	return s, err
}

// Update overwrites the three durations and returns the stored row.
func (r *Repository) Update(ctx context.Context, s Settings) (Settings, error) {
	var out Settings
	err := r.q.QueryRow(ctx, `
		INSERT INTO system_settings (id, cooling_period_days, lead_initial_expiry_days, lead_extension_days, updated_at, updated_by)
		VALUES (1, $1, $2, $3, now(), $4)
		ON CONFLICT (id) DO UPDATE SET
			cooling_period_days = EXCLUDED.cooling_period_days,
			lead_initial_expiry_days = EXCLUDED.lead_initial_expiry_days,
			lead_extension_days = EXCLUDED.lead_extension_days,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
		RETURNING cooling_period_days, lead_initial_expiry_days, lead_extension_days, updated_at, updated_by
	`, s.CoolingPeriodDays, s.LeadInitialExpiryDays, s.LeadExtensionDays, s.UpdatedBy,
	).Scan(&out.CoolingPeriodDays, &out.LeadInitialExpiryDays, &out.LeadExtensionDays, &out.UpdatedAt, &out.UpdatedBy)
	if err != nil {
		return Settings{}, fmt.Errorf("update system settings: %w", err)
	}
	return out, nil
}
