package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskLeadNotification = "leads.notification"

// Notification kinds carried by TaskLeadNotification.
const (
	KindLeadAssigned     = "assigned"
	KindLeadExpiringSoon = "expiring_soon"
	KindLeadExpired      = "expired"
)

type LeadNotificationPayload struct {
	Kind        string    `json:"kind"`
	LeadID      string    `json:"leadId"`
	RecipientID string    `json:"recipientId"`
	Company     string    `json:"company"`
	ExpiryDate  time.Time `json:"expiryDate"`
}

// dedupeKey identifies one notification. The expiry date is part of the key
// so an extended lead announces its new deadline again.
func (p LeadNotificationPayload) dedupeKey() string {
	return p.Kind + ":" + p.LeadID + ":" + p.RecipientID + ":" + p.ExpiryDate.UTC().Format("2006-01-02")
}

func NewLeadNotificationTask(payload LeadNotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadNotification, data), nil
}

func ParseLeadNotificationPayload(task *asynq.Task) (LeadNotificationPayload, error) {
	var payload LeadNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadNotificationPayload{}, err
	}
	return payload, nil
}
