package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExtensionResult records the expiry move made by GrantExtension.
type ExtensionResult struct {
	PreviousExpiry time.Time
	NewExpiry      time.Time
	WasExpired     bool
}

// HasUsedExtension reports whether the one-time extension is spent. Legacy
// rows may carry the grant date without the flag; either signal counts.
func (l Lead) HasUsedExtension() bool {
	return l.IsExtended || l.ExtensionGrantedDate != nil
}

// GrantExtension applies the one-time extension. An expired lead (swept, or
// past due and not yet swept) is reopened as New with an expiry counted from
// now; an active lead has the extension added to its current expiry.
func (l *Lead) GrantExtension(now time.Time, extensionDays int, grantedBy uuid.UUID) (ExtensionResult, error) {
	if l.Status.IsTerminal() {
		return ExtensionResult{}, ErrExtensionClosed
	}
	if l.HasUsedExtension() {
		return ExtensionResult{}, ErrAlreadyExtended
	}

	now = now.UTC()
	res := ExtensionResult{
		PreviousExpiry: l.ExpiryDate,
		WasExpired:     l.IsExpired || l.Status == StatusExpired || !l.ExpiryDate.After(now),
	}

	if res.WasExpired {
		l.IsExpired = false
		if l.Status == StatusExpired {
			l.Status = StatusNew
		}
		l.ExpiryDate = now.AddDate(0, 0, extensionDays)
	} else {
		l.ExpiryDate = l.ExpiryDate.AddDate(0, 0, extensionDays)
	}

	l.IsExtended = true
	l.ExtensionGrantedDate = &now
	l.ExtensionGrantedBy = &grantedBy
	res.NewExpiry = l.ExpiryDate
	return res, nil
}
