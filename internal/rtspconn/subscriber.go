package rtspconn

import "github.com/bluenviron/rtsprelay/internal/rtspwire"

// InterleavedSubscriber delivers a Stream's RTP/RTCP datagrams as
// interleaved frames on a client's own RTSP TCP socket (spec.md §4.4). It
// implements mount.Subscriber without importing the mount package, which
// would create an import cycle (mount doesn't need to know about
// rtspconn).
type InterleavedSubscriber struct {
	conn        *Conn
	rtpChannel  int
	rtcpChannel int

	// separate scratch buffers: RTP and RTCP datagrams for the same
	// subscriber arrive on different listener goroutines and may be
	// written concurrently.
	rtpBuf  []byte
	rtcpBuf []byte
}

// NewInterleavedSubscriber builds a subscriber writing frames on the given
// interleaved channel pair, e.g. {0,1} from "interleaved=0-1".
func NewInterleavedSubscriber(conn *Conn, rtpChannel, rtcpChannel int) *InterleavedSubscriber {
	return &InterleavedSubscriber{
		conn:        conn,
		rtpChannel:  rtpChannel,
		rtcpChannel: rtcpChannel,
		rtpBuf:      make([]byte, 4+rtspwire.MaxInterleavedPayload),
		rtcpBuf:     make([]byte, 4+rtspwire.MaxInterleavedPayload),
	}
}

// WriteRTP implements mount.Subscriber.
func (s *InterleavedSubscriber) WriteRTP(payload []byte) error {
	fr := &rtspwire.InterleavedFrame{Channel: s.rtpChannel, Payload: payload}
	return s.conn.WriteInterleavedFrame(fr, s.rtpBuf)
}

// WriteRTCP implements mount.Subscriber.
func (s *InterleavedSubscriber) WriteRTCP(payload []byte) error {
	fr := &rtspwire.InterleavedFrame{Channel: s.rtcpChannel, Payload: payload}
	return s.conn.WriteInterleavedFrame(fr, s.rtcpBuf)
}
