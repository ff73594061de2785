package domain

// Audit event names. Every security-relevant transition is recorded under one
// of these through the single audit choke point so the trail stays
// structurally complete.
const (
	EventLoginSuccess       = "LOGIN_SUCCESS"
	EventLoginFailed        = "LOGIN_FAILED"
	EventLogout             = "LOGOUT"
	EventSessionTimeout     = "SESSION_TIMEOUT"
	EventFormAttackBlocked  = "FORM_ATTACK_BLOCKED"
	EventRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	EventMaintenanceEnabled = "MAINTENANCE_ENABLED"
	EventMaintenanceOff     = "MAINTENANCE_DISABLED"
	EventAdminCreated       = "ADMIN_CREATED"
	EventAdminPasswordReset = "ADMIN_PASSWORD_CHANGED"
	EventAdminDeleted       = "ADMIN_DELETED"
	EventAccountUnlocked    = "ACCOUNT_UNLOCKED"
	EventSubmissionCreated  = "SUBMISSION_CREATED"
	EventDataExport         = "DATA_EXPORT"
	EventLogCleanup         = "LOG_CLEANUP"
	EventSecurityIncident   = "SECURITY_INCIDENT"
)
