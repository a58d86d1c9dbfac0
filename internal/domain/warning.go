package domain

// Warning is a non-fatal identity reconciliation failure. Login still
// succeeds; the next redemption re-runs every lookup and repairs what is left.
type Warning struct {
	Step   string `json:"step"`
	Email  string `json:"email"`
	Detail string `json:"detail"`
}
