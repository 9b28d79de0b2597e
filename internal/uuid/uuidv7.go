// Package uuid issues the record ids used across the ledger file.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a version 7 id. The store scans collections in id order, which
// for UUIDv7 is creation order.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid reports whether s is a canonical lowercase UUID as written by New.
func IsValid(s string) bool {
	id, err := googleuuid.Parse(s)
	return err == nil && id.String() == s
}
