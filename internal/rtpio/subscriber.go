package rtpio

import (
	"net"
	"time"
)

// udpWriteTimeout bounds how long a write to a stalled client socket can
// block the listener's read loop path (spec.md §5: a slow client must
// never starve others).
const udpWriteTimeout = 2 * time.Second

// UDPSubscriber delivers a Stream's RTP/RTCP datagrams to one client's
// negotiated client_port pair, reusing the Listener's own bound sockets to
// send (so the source address the client sees matches server_port).
type UDPSubscriber struct {
	listener *Listener
	rtpAddr  *net.UDPAddr
	rtcpAddr *net.UDPAddr
}

// NewUDPSubscriber builds a subscriber that writes to clientIP on the
// client_port pair negotiated during SETUP.
func NewUDPSubscriber(listener *Listener, clientIP net.IP, clientRTPPort, clientRTCPPort int) *UDPSubscriber {
	return &UDPSubscriber{
		listener: listener,
		rtpAddr:  &net.UDPAddr{IP: clientIP, Port: clientRTPPort},
		rtcpAddr: &net.UDPAddr{IP: clientIP, Port: clientRTCPPort},
	}
}

// WriteRTP implements mount.Subscriber.
func (s *UDPSubscriber) WriteRTP(payload []byte) error {
	s.listener.rtpConn.SetWriteDeadline(time.Now().Add(udpWriteTimeout))
	_, err := s.listener.rtpConn.WriteToUDP(payload, s.rtpAddr)
	return err
}

// WriteRTCP implements mount.Subscriber.
func (s *UDPSubscriber) WriteRTCP(payload []byte) error {
	s.listener.rtcpConn.SetWriteDeadline(time.Now().Add(udpWriteTimeout))
	_, err := s.listener.rtcpConn.WriteToUDP(payload, s.rtcpAddr)
	return err
}
