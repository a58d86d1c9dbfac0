package dynamo

// DynamoDB attribute names used in expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldRecordID   = "record_id"
	fieldCode       = "code"
	fieldToken      = "token"
	fieldEmail      = "email"
	fieldEmailLower = "email_lower"
	fieldUsed       = "used"
	fieldRole       = "role"
	fieldUpdatedAt  = "updated_at"
	fieldProfileID  = "profile_id"
	fieldLinkID     = "link_id"
	fieldExpiresAt  = "expires_at"
)

// Index names.
const (
	indexCodeRecordID = "code-record_id-index"
	indexEmailLower   = "email_lower-index"
)
