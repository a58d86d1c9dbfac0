package domain

import "time"

// VerificationRecord is one login attempt: a one-time code and token bound to an email.
// PK: record_id (ULID, sortable by creation time). GSI: code-record_id-index.
// A record is mutated exactly once, when Used flips to true.
type VerificationRecord struct {
	ID        string    `json:"id" dynamodbav:"record_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Token     string    `json:"token" dynamodbav:"token"`
	Code      string    `json:"code" dynamodbav:"code"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at,unixtime"`
	Used      bool      `json:"used" dynamodbav:"used"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Expired reports whether the record can no longer be redeemed at now.
func (v *VerificationRecord) Expired(now time.Time) bool {
	return v.ExpiresAt.Before(now)
}

// VerificationLookup selects the newest unused record for Code, narrowed by
// Token when set, otherwise by exact Email.
type VerificationLookup struct {
	Code  string
	Token string
	Email string
}
