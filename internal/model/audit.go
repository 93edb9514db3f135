package model

import "time"

// AuditEvent is one immutable record of a state-changing action, carrying
// the full after-state snapshot needed to reconstruct what was decided.
// Append-only; writing one must never fail the parent request.
type AuditEvent struct {
	ID           string                 `json:"id"`
	TenantID     string                 `json:"tenant_id"`
	UserID       string                 `json:"user_id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	AfterState   map[string]interface{} `json:"after_state"`
	CreatedAt    time.Time              `json:"created_at"`
}
