// Package notification turns lead lifecycle events into mails for the
// assigned sales rep. Events are queued for the scheduler worker when a
// queue is configured and delivered in-process otherwise.
package notification

import (
	"context"
	"fmt"
	"strings"

	"salesrep_portal/internal/email"
	"salesrep_portal/internal/events"
	"salesrep_portal/internal/leads/ports"
	"salesrep_portal/internal/scheduler"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/config"
	"salesrep_portal/platform/logger"

	"github.com/google/uuid"
)

type Module struct {
	sender   email.Sender
	users    ports.UserDirectory
	enqueuer scheduler.NotificationEnqueuer
	baseURL  string
	log      *logger.Logger
}

func New(sender email.Sender, users ports.UserDirectory, cfg config.NotificationConfig, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{
		sender:  sender,
		users:   users,
		baseURL: strings.TrimRight(cfg.GetAppBaseURL(), "/"),
		log:     log,
	}
}

// SetEnqueuer routes notifications through the task queue.
func (m *Module) SetEnqueuer(enqueuer scheduler.NotificationEnqueuer) { m.enqueuer = enqueuer }

// RegisterHandlers subscribes to the lead events that notify a rep.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadAssigned{}.EventName(), m)
	bus.Subscribe(events.LeadExpiringSoon{}.EventName(), m)
	bus.Subscribe(events.LeadExpired{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate notification.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadAssigned:
		return m.dispatch(ctx, scheduler.LeadNotificationPayload{
			Kind:        scheduler.KindLeadAssigned,
			LeadID:      e.LeadID.String(),
			RecipientID: e.AssigneeID.String(),
			Company:     e.Company,
		})
	case events.LeadExpiringSoon:
		if e.AssignedToID == nil {
			return nil
		}
		return m.dispatch(ctx, scheduler.LeadNotificationPayload{
			Kind:        scheduler.KindLeadExpiringSoon,
			LeadID:      e.LeadID.String(),
			RecipientID: e.AssignedToID.String(),
			Company:     e.Company,
			ExpiryDate:  e.ExpiryDate,
		})
	case events.LeadExpired:
		if e.AssignedToID == nil {
			return nil
		}
		return m.dispatch(ctx, scheduler.LeadNotificationPayload{
			Kind:        scheduler.KindLeadExpired,
			LeadID:      e.LeadID.String(),
			RecipientID: e.AssignedToID.String(),
			Company:     e.Company,
			ExpiryDate:  e.ExpiryDate,
		})
	default:
		return nil
	}
}

func (m *Module) dispatch(ctx context.Context, payload scheduler.LeadNotificationPayload) error {
	if m.enqueuer != nil {
		if err := m.enqueuer.EnqueueLeadNotification(ctx, payload); err != nil {
			m.log.Error("failed to enqueue lead notification", "kind", payload.Kind, "leadId", payload.LeadID, "error", err)
			return err
		}
		return nil
	}
	return m.Deliver(ctx, payload)
}

// Deliver sends one notification. Recipients that no longer exist, are
// inactive or have no address are skipped without error so the task is not
// retried.
func (m *Module) Deliver(ctx context.Context, payload scheduler.LeadNotificationPayload) error {
	recipientID, err := uuid.Parse(payload.RecipientID)
	if err != nil {
		m.log.Warn("notification recipient id invalid", "recipientId", payload.RecipientID)
		return nil
	}

	user, err := m.users.GetUser(ctx, recipientID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	if !user.IsActive || strings.TrimSpace(user.Email) == "" {
		return nil
	}

	mail := email.LeadMail{
		RecipientName: user.FullName,
		Company:       payload.Company,
		ExpiryDate:    payload.ExpiryDate,
		LeadURL:       m.baseURL + "/leads/" + payload.LeadID,
	}

	switch payload.Kind {
	case scheduler.KindLeadAssigned:
		err = m.sender.SendLeadAssignedEmail(ctx, user.Email, mail)
	case scheduler.KindLeadExpiringSoon:
		err = m.sender.SendLeadExpiringSoonEmail(ctx, user.Email, mail)
	case scheduler.KindLeadExpired:
		err = m.sender.SendLeadExpiredEmail(ctx, user.Email, mail)
	default:
		m.log.Warn("unknown lead notification kind", "kind", payload.Kind)
		return nil
	}
	if err != nil {
		m.log.Error("failed to send lead notification", "kind", payload.Kind, "leadId", payload.LeadID, "error", err)
		return err
	}
	m.log.Info("lead notification sent", "kind", payload.Kind, "leadId", payload.LeadID, "recipientId", payload.RecipientID)
	return nil
}

var _ scheduler.NotificationDeliverer = (*Module)(nil)
