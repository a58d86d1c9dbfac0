package domain

// Role names stored in identity metadata, profile rows and session claims.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)
