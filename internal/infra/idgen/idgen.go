// Package idgen generates identifiers for stored records.
package idgen

import "github.com/google/uuid"

// New returns a UUIDv7 string. UUIDv7 sorts by creation time, so stores
// can order by ID when timestamps tie.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
