package storage

import (
	"github.com/google/uuid"
)

// GenerateID generates an identifier for a tutorial that only lives in the mirror.
// UUIDs never collide with the 24 character hex ids assigned by the database.
func GenerateID() string {
	return uuid.New().String()
}
