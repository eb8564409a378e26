package headers

import (
	"fmt"
	"strings"
)

// Session is a parsed Session header, e.g. "a1b2c3d4;timeout=60".
type Session struct {
	ID      string
	Timeout *uint
}

// ParseSession parses a Session header value.
func ParseSession(raw string) (*Session, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty Session header")
	}

	parts := strings.Split(raw, ";")
	return &Session{ID: strings.TrimSpace(parts[0])}, nil
}
