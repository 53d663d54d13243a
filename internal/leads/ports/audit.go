package ports

import (
	"context"

	"salesrep_portal/internal/audit"
)

// AuditSink receives the audit events the leads core decides to emit.
type AuditSink interface {
	Emit(ctx context.Context, event audit.Event) error
}
