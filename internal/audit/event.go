// Package audit defines the append-only audit events emitted by the lead and
// customer core and the sinks that carry them to durable storage.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names what happened.
type Action string

const (
	ActionCreate           Action = "Create"
	ActionUpdate           Action = "Update"
	ActionReassign         Action = "Reassign"
	ActionConvert          Action = "Convert"
	ActionGrantExtension   Action = "GrantExtension"
	ActionExpire           Action = "Expire"
	ActionDuplicateAttempt Action = "DuplicateAttempt"
	ActionSearch           Action = "Search"
	ActionDelete           Action = "Delete"
	ActionCustomerDelete   Action = "CustomerDelete"
)

// Entity types.
const (
	EntityLead     = "lead"
	EntityCustomer = "customer"
)

// Event is a single audit record. ActorID is nil for system actions such as
// the expiry sweep.
type Event struct {
	ID         uuid.UUID      `json:"id"`
	Action     Action         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   *uuid.UUID     `json:"entityId,omitempty"`
	ActorID    *uuid.UUID     `json:"actorId,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	Details    map[string]any `json:"details,omitempty"`
}

// NewEvent stamps an event with a fresh id and the given time.
func NewEvent(action Action, entityType string, entityID *uuid.UUID, actorID *uuid.UUID, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: at.UTC(),
	}
}

// With returns a copy of e carrying an extra detail.
func (e Event) With(key string, value any) Event {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// RoutingKey is the topic used when the event is published to a broker.
func (e Event) RoutingKey() string {
	return "audit." + e.EntityType + "." + string(e.Action)
}
