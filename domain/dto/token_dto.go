package dto

// SweepResult is the aggregate of one token expiry sweep.
type SweepResult struct {
	AccountsChecked int `json:"accountsChecked"`
	Refreshed       int `json:"refreshed"`
	WarningsSent    int `json:"warningsSent"`
	FailedRefreshes int `json:"failedRefreshes"`
}

// Token health classifications reported by the health check. Only the
// expired/invalid/error outcomes are persisted back to the account row;
// expiring_soon is report-only.
const (
	TokenHealthHealthy      = "healthy"
	TokenHealthExpiringSoon = "expiring_soon"
	TokenHealthExpired      = "expired"
	TokenHealthInvalid      = "invalid"
	TokenHealthError        = "error"
)

// TokenHealthResult is the per-account outcome of a health check.
type TokenHealthResult struct {
	AccountID       int64  `json:"account_id"`
	Provider        string `json:"provider"`
	Handle          string `json:"handle"`
	Health          string `json:"health"`
	DaysUntilExpiry int    `json:"days_until_expiry"` // -1 when no expiry recorded
	Error           string `json:"error,omitempty"`
}

// HealthCheckResult wraps the full per-account list.
type HealthCheckResult struct {
	Results []TokenHealthResult `json:"results"`
}
