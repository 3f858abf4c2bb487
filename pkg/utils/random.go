package utils

import (
	"github.com/google/uuid"
)

// GenerateRequestID generates a UUID string used to tag a request in logs
func GenerateRequestID() string {
	return uuid.NewString()
}
