package engine

import "github.com/google/uuid"

// generateID creates a random UUID for dishes and tasks.
func generateID() string {
	return uuid.NewString()
}
