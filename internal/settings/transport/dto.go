package transport

import (
	"time"

	"salesrep_portal/internal/settings/repository"

	"github.com/google/uuid"
)

type UpdateSettingsRequest struct {
	CoolingPeriodDays     *int `json:"coolingPeriodDays" validate:"required,min=0,max=3650"`
	LeadInitialExpiryDays *int `json:"leadInitialExpiryDays" validate:"required,min=1,max=3650"`
	LeadExtensionDays     *int `json:"leadExtensionDays" validate:"required,min=1,max=3650"`
}

type SettingsResponse struct {
	CoolingPeriodDays     int        `json:"coolingPeriodDays"`
	LeadInitialExpiryDays int        `json:"leadInitialExpiryDays"`
	LeadExtensionDays     int        `json:"leadExtensionDays"`
	UpdatedAt             time.Time  `json:"updatedAt"`
	UpdatedBy             *uuid.UUID `json:"updatedBy,omitempty"`
}

func ToSettingsResponse(s repository.Settings) SettingsResponse {
	return SettingsResponse{
		CoolingPeriodDays:     s.CoolingPeriodDays,
		LeadInitialExpiryDays: s.LeadInitialExpiryDays,
		LeadExtensionDays:     s.LeadExtensionDays,
		UpdatedAt:             s.UpdatedAt,
		UpdatedBy:             s.UpdatedBy,
	}
}
