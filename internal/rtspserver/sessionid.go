package rtspserver

import (
	"strings"

	"github.com/google/uuid"
)

// newSessionID generates an opaque Session header value: a UUIDv4 with its
// hyphens stripped, matching the teacher library's own server_session.go.
// Uniqueness for the server's lifetime follows from UUIDv4's collision
// probability; spec.md §4.7 only requires "unique", not sequential.
func newSessionID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
