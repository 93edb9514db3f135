package model

// TenantContext identifies the authenticated caller for the lifetime of one
// request. It is resolved from the bearer credential and never from request
// payload fields, so a forged tenant_id in a body cannot cross tenants.
type TenantContext struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Email    string `json:"email,omitempty"`
}
