package rtspserver

import (
	"fmt"

	"github.com/pion/sdp/v3"
)

// countStreams counts the "m=" lines in an SDP body, the only thing the
// server needs to know about SDP content (spec.md §6: "does not parse SDP
// beyond counting m= lines"). A full SDP unmarshal is used instead of a
// naive byte scan for "m=" so that line folding and embedded session-level
// attributes can't be mistaken for a media line.
func countStreams(body []byte) (int, error) {
	var sd sdp.SessionDescription
	if err := sd.Unmarshal(body); err != nil {
		return 0, fmt.Errorf("invalid SDP: %w", err)
	}

	if len(sd.MediaDescriptions) == 0 {
		return 0, fmt.Errorf("SDP has no media descriptions")
	}

	return len(sd.MediaDescriptions), nil
}
