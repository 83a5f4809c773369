package bootstrap

import "context"

type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

// AuditLogger mencatat kejadian operasional penting (startup, shutdown).
type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
