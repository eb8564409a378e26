// Package headers parses and writes the structured RTSP headers this server
// cares about: Transport and Session. Grounded on the teacher library's
// pkg/headers package, trimmed to the subset spec.md names (no multicast,
// no SSRC, no TTL).
package headers

import (
	"fmt"
	"strconv"
	"strings"
)

// Protocol is the lower-transport of a Transport header.
type Protocol int

// supported protocols.
const (
	ProtocolUDP Protocol = iota
	ProtocolTCP
)

// Transport is a parsed Transport header, e.g.
// "RTP/AVP;unicast;client_port=9000-9001" or
// "RTP/AVP/TCP;unicast;interleaved=0-1;mode=record".
type Transport struct {
	Protocol       Protocol
	Unicast        bool
	Record         bool
	ClientPorts    *[2]int
	ServerPorts    *[2]int
	InterleavedIDs *[2]int
}

func parsePortPair(val string) (*[2]int, error) {
	parts := strings.SplitN(val, "-", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid port pair %q", val)
	}

	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid port pair %q", val)
	}

	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid port pair %q", val)
	}

	return &[2]int{a, b}, nil
}

// ParseTransport parses a Transport header value as a single transport
// specification made of semicolon-delimited parameters. A comma-separated
// list of alternative transports is not split; this server never offers
// clients a choice of transports.
func ParseTransport(raw string) (*Transport, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty Transport header")
	}

	t := &Transport{}

	for i, part := range strings.Split(raw, ";") {
		switch {
		case i == 0 && (part == "RTP/AVP" || part == "RTP/AVP/UDP"):
			t.Protocol = ProtocolUDP

		case i == 0 && part == "RTP/AVP/TCP":
			t.Protocol = ProtocolTCP

		case part == "unicast":
			t.Unicast = true

		case part == "":
			// nothing to record; multicast is out of scope (spec Non-goals).

		case part == "mode=record":
			t.Record = true

		case strings.HasPrefix(part, "client_port="):
			pp, err := parsePortPair(part[len("client_port="):])
			if err != nil {
				return nil, err
			}
			t.ClientPorts = pp

		case strings.HasPrefix(part, "server_port="):
			pp, err := parsePortPair(part[len("server_port="):])
			if err != nil {
				return nil, err
			}
			t.ServerPorts = pp

		case strings.HasPrefix(part, "interleaved="):
			pp, err := parsePortPair(part[len("interleaved="):])
			if err != nil {
				return nil, err
			}
			t.InterleavedIDs = pp
		}
	}

	return t, nil
}

// Write serializes the Transport header back to wire form.
func (t Transport) Write() string {
	parts := []string{}

	if t.Protocol == ProtocolTCP {
		parts = append(parts, "RTP/AVP/TCP")
	} else {
		parts = append(parts, "RTP/AVP")
	}

	if t.Unicast {
		parts = append(parts, "unicast")
	}

	if t.Record {
		parts = append(parts, "mode=record")
	}

	if t.ClientPorts != nil {
		parts = append(parts, fmt.Sprintf("client_port=%d-%d", t.ClientPorts[0], t.ClientPorts[1]))
	}

	if t.ServerPorts != nil {
		parts = append(parts, fmt.Sprintf("server_port=%d-%d", t.ServerPorts[0], t.ServerPorts[1]))
	}

	if t.InterleavedIDs != nil {
		parts = append(parts, fmt.Sprintf("interleaved=%d-%d", t.InterleavedIDs[0], t.InterleavedIDs[1]))
	}

	return strings.Join(parts, ";")
}
