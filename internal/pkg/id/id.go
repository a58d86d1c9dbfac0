package id

import "github.com/oklog/ulid/v2"

// New generates a new ULID string. IDs are monotonic within the process, so
// they sort by creation order even inside one millisecond; the verification
// index relies on that to find the newest record.
func New() string {
	return ulid.Make().String()
}
