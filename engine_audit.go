package authrim

import (
	"context"

	internalaudit "github.com/sgrastar/authrim-sub000/internal/audit"
)

// Audit event types emitted by the engine.
const (
	AuditFlowInitialized        = "flow.initialized"
	AuditFlowSubmit             = "flow.submit"
	AuditFlowCompleted          = "flow.completed"
	AuditFlowCancelled          = "flow.cancelled"
	AuditRateLimited            = "flow.rate_limited"
	AuditSessionExpired         = "flow.session_expired"
	AuditCycleBlocked           = "flow.cycle_blocked"
	AuditFlowTooLong            = "flow.too_long"
	AuditUnreachableTermination = "flow.unreachable_termination"
)

func (e *Engine) emitAudit(ctx context.Context, event internalaudit.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	e.audit.Emit(ctx, event)
}
