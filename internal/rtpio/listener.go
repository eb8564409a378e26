package rtpio

import (
	"net"

	"github.com/bluenviron/rtsprelay/internal/mount"
)

// udpMaxPayloadSize bounds a single read; RTP/RTCP over UDP never exceeds
// one datagram's worth of payload (spec.md §4.4).
const udpMaxPayloadSize = 1472

// Listener owns the RTP and RTCP UDP sockets bound for one Stream's
// source, and forwards every datagram it receives into that Stream's
// subscriber fan-out untouched (spec.md invariant: the server does not
// inspect or rewrite RTP/RTCP headers).
type Listener struct {
	rtpConn  *net.UDPConn
	rtcpConn *net.UDPConn
	stream   *mount.Stream

	rtpPort int

	done chan struct{}
}

// NewListener allocates a port pair from alloc and starts forwarding
// datagrams arriving on it into stream's fan-out. The Stream's RTPPort
// field is set to the bound port.
func NewListener(alloc *PortAllocator, listenIP string, stream *mount.Stream) (*Listener, error) {
	rtpConn, rtcpConn, port, err := alloc.Allocate(listenIP)
	if err != nil {
		return nil, err
	}

	stream.RTPPort = port

	l := &Listener{
		rtpConn:  rtpConn,
		rtcpConn: rtcpConn,
		stream:   stream,
		rtpPort:  port,
		done:     make(chan struct{}),
	}

	go l.run(rtpConn, stream.BroadcastRTP)
	go l.run(rtcpConn, stream.BroadcastRTCP)

	return l, nil
}

// RTPPort returns the bound RTP port (RTCP is RTPPort+1).
func (l *Listener) RTPPort() int {
	return l.rtpPort
}

// RTPConn exposes the bound RTP socket, the one UDP subscribers send from,
// so clients receive data from the same server ports the publisher sends to.
func (l *Listener) RTPConn() *net.UDPConn {
	return l.rtpConn
}

// RTCPConn exposes the bound RTCP socket.
func (l *Listener) RTCPConn() *net.UDPConn {
	return l.rtcpConn
}

// Close stops both read loops by closing their sockets.
func (l *Listener) Close() {
	l.rtpConn.Close()
	l.rtcpConn.Close()
}

func (l *Listener) run(pc *net.UDPConn, broadcast func([]byte)) {
	buf := make([]byte, udpMaxPayloadSize)
	for {
		n, _, err := pc.ReadFromUDP(buf)
		if err != nil {
			return
		}
		broadcast(buf[:n])
	}
}
