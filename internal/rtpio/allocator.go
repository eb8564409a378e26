// Package rtpio owns the UDP side of the data plane: binding an even/odd
// RTP+RTCP port pair per Stream, reading datagrams off the wire and handing
// them to mount.Stream's fan-out, and writing datagrams out to UDP
// subscribers. Grounded on the teacher library's server_udp_listener.go.
package rtpio

import (
	"fmt"
	"net"
	"sync"

	"github.com/bluenviron/rtsprelay/internal/liberrors"
)

// maxBindAttempts bounds how many candidate ports the allocator tries
// before giving up, per spec.md §4.6 ("at least 16").
const maxBindAttempts = 16

// PortAllocator hands out even/odd RTP+RTCP port pairs from a configured
// range, advancing a monotonic cursor so a port already bound by a live
// listener is never retried until the cursor wraps (spec.md §4.6).
type PortAllocator struct {
	mu       sync.Mutex
	min, max int
	next     int
}

// NewPortAllocator builds an allocator over [min, max]. min is rounded up
// to the next even number so every allocation starts on an RTP (even) port.
func NewPortAllocator(min, max int) *PortAllocator {
	if min%2 != 0 {
		min++
	}
	return &PortAllocator{min: min, max: max, next: min}
}

// Allocate binds a fresh RTP/RTCP UDP socket pair on adjacent even/odd
// ports and returns both connections plus the RTP port. Binding is
// retried against successive candidate ports, bounded by maxBindAttempts,
// returning ErrResourceExhausted if the range is full.
func (a *PortAllocator) Allocate(listenIP string) (rtpConn, rtcpConn *net.UDPConn, rtpPort int, err error) {
	for attempt := 0; attempt < maxBindAttempts; attempt++ {
		port := a.advance()

		rc, rerr := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP(listenIP), Port: port})
		if rerr != nil {
			continue
		}

		cc, cerr := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP(listenIP), Port: port + 1})
		if cerr != nil {
			rc.Close()
			continue
		}

		return rc, cc, port, nil
	}

	return nil, nil, 0, liberrors.ErrResourceExhausted{
		Reason: fmt.Sprintf("no free RTP/RTCP port pair in range %d-%d after %d attempts", a.min, a.max, maxBindAttempts),
	}
}

// advance returns the next even candidate port and moves the cursor past
// it, wrapping back to min when max is exceeded.
func (a *PortAllocator) advance() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	port := a.next
	a.next += 2
	if a.next > a.max {
		a.next = a.min
	}
	return port
}
