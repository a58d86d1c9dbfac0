package domain

import "time"

// Profile is the application-owned user row. The verification flow only ever
// writes ProfileID, Email and Role; the display fields belong to the rest of the app.
type Profile struct {
	ProfileID  string    `json:"id" dynamodbav:"profile_id"`
	Email      string    `json:"email" dynamodbav:"email"`
	EmailLower string    `json:"-" dynamodbav:"email_lower"`
	Role       string    `json:"role" dynamodbav:"role"`
	FullName   *string   `json:"full_name" dynamodbav:"full_name"`
	Phone      *string   `json:"phone" dynamodbav:"phone"`
	AvatarPath *string   `json:"avatar_path" dynamodbav:"avatar_path"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}
