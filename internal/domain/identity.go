package domain

import "time"

// Identity is the authoritative user record held by the identity directory.
// PK: email_lower, so lookups are case-insensitive by construction.
type Identity struct {
	IdentityID string    `json:"id" dynamodbav:"identity_id"`
	Email      string    `json:"email" dynamodbav:"email"`
	EmailLower string    `json:"-" dynamodbav:"email_lower"`
	Role       string    `json:"role" dynamodbav:"role"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

// SignInLink records the consumption of a one-time sign-in link.
// PK: link_id (the token's jti). ExpiresAt doubles as the DynamoDB TTL.
type SignInLink struct {
	LinkID     string    `json:"id" dynamodbav:"link_id"`
	Email      string    `json:"email" dynamodbav:"email"`
	ExpiresAt  int64     `json:"expires_at" dynamodbav:"expires_at"`
	ConsumedAt time.Time `json:"consumed_at" dynamodbav:"consumed_at"`
}
