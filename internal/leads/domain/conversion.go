package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConversionSnapshot is the customer record built from a lead at conversion.
type ConversionSnapshot struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Company         string
	Address         string
	City            string
	State           string
	Zip             string
	Notes           string
	OriginalLeadID  uuid.UUID
	ConvertedByID   uuid.UUID
	SalesRepID      *uuid.UUID
	SalesGroupID    *uuid.UUID
	ConversionDate  time.Time
	LeadCreatedDate time.Time
	DaysToConvert   int
}

// CheckConvertible reports why the lead cannot be converted, if it cannot.
func (l Lead) CheckConvertible(now time.Time) error {
	switch {
	case l.Status == StatusConverted:
		return ErrLeadConverted
	case l.Status == StatusLost:
		return ErrLeadLost
	case l.IsExpired || l.Status == StatusExpired || l.IsDue(now):
		return ErrLeadExpired
	case !l.Status.IsOpen():
		return ErrNotConvertible
	}
	return nil
}

// Snapshot copies the lead into a customer record converted by actorID at now.
func (l Lead) Snapshot(actorID uuid.UUID, now time.Time) ConversionSnapshot {
	now = now.UTC()
	return ConversionSnapshot{
		FirstName:       l.FirstName,
		LastName:        l.LastName,
		Email:           l.Email,
		Phone:           l.Phone,
		Company:         l.Company,
		Address:         l.Address,
		City:            l.City,
		State:           l.State,
		Zip:             l.Zip,
		Notes:           l.Notes,
		OriginalLeadID:  l.ID,
		ConvertedByID:   actorID,
		SalesRepID:      l.AssignedToID,
		SalesGroupID:    l.SalesGroupID,
		ConversionDate:  now,
		LeadCreatedDate: l.CreatedDate,
		DaysToConvert:   DaysBetween(l.CreatedDate, now),
	}
}

// MarkConverted finalizes the lead after its customer record exists.
func (l *Lead) MarkConverted(now time.Time) {
	now = now.UTC()
	l.Status = StatusConverted
	l.ConvertedDate = &now
	l.IsExpired = false
}

// DaysBetween counts whole days from start to end, never negative.
func DaysBetween(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
