// internal/app/system/auditlog/auditlog.go

// Package auditlog records membership and account mutations as structured
// log events. Each event carries a unique id so downstream log pipelines
// can dedupe and correlate.
package auditlog

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Logger emits audit events on a dedicated named zap logger.
type Logger struct {
	log *zap.Logger
}

// New wraps the application logger with the audit namespace.
func New(base *zap.Logger) *Logger {
	return &Logger{log: base.Named("audit")}
}

// Event records a single mutation. actorID may be empty for system
// initiated actions (startup reconcile).
func (l *Logger) Event(action, actorID string, fields ...zap.Field) {
	all := make([]zap.Field, 0, len(fields)+3)
	all = append(all,
		zap.String("event_id", uuid.NewString()),
		zap.String("action", action),
		zap.String("actor_id", actorID),
	)
	all = append(all, fields...)
	l.log.Info(action, all...)
}
