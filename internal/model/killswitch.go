package model

// KillSwitchScopeGlobal is the scope key for the platform-wide switch.
// Tenant-level switches use the tenant id as scope.
const KillSwitchScopeGlobal = "global"

// KillSwitchConfig is the safety interlock flag. Read-only from this core;
// an administrative surface flips it.
type KillSwitchConfig struct {
	Active bool   `json:"active"`
	Reason string `json:"reason"`
}
