package models

import "time"

type AccessOutcome string

const (
	OutcomeSuccess       AccessOutcome = "success"
	OutcomeWrongPassword AccessOutcome = "wrong-password"
	OutcomeExpired       AccessOutcome = "expired"
	OutcomeExhausted     AccessOutcome = "exhausted"
	OutcomeNotFound      AccessOutcome = "not-found"
	OutcomeRateLimited   AccessOutcome = "rate-limited"
	OutcomeDenied        AccessOutcome = "denied"
	// OutcomeError marks attempts cut short by a server-side failure.
	OutcomeError AccessOutcome = "error"
)

// ShareAccessLog is one append-only audit row per redemption attempt. It
// references the share by token only, so it outlives a deleted share.
type ShareAccessLog struct {
	ID               int64
	ShareToken       string
	OccurredAt       time.Time
	SourceIdentifier string
	UserAgent        string
	Outcome          AccessOutcome
	Reason           string
}

// AccessStats aggregates the audit log for one token.
type AccessStats struct {
	TotalAttempts      int64 `json:"total_attempts"`
	SuccessfulAttempts int64 `json:"successful_attempts"`
	FailedAttempts     int64 `json:"failed_attempts"`
	RecentAttempts     int64 `json:"recent_attempts"`
	UniqueIPs          int64 `json:"unique_ips"`
}
