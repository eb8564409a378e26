// Package rtspconn wraps a TCP socket with the read/write loop shared by
// every RTSP connection: buffered I/O, the request/interleaved-frame
// multiplexing described in spec.md §4.1, and a single scoped-close
// contract. Grounded on the teacher library's pkg/conn package.
package rtspconn

import (
	"bufio"
	"io"
	"net"
	"sync"
	"time"

	"github.com/bluenviron/rtsprelay/internal/liberrors"
	"github.com/bluenviron/rtsprelay/internal/rtspwire"
)

const (
	readBufferSize  = 4096
	writeBufferSize = 4096
)

// Conn is a buffered RTSP connection. It is safe for one reader goroutine
// and any number of writer goroutines: WriteResponse and
// WriteInterleavedFrame are serialized by writeMu (interleaved frames for a
// subscriber are written from the goroutines that broadcast them).
type Conn struct {
	nc net.Conn
	br *bufio.Reader
	bw *bufio.Writer

	writeMu sync.Mutex

	interleavedMu sync.RWMutex
	interleaved   bool
}

// New wraps an accepted net.Conn.
func New(nc net.Conn) *Conn {
	return &Conn{
		nc: nc,
		br: bufio.NewReaderSize(nc, readBufferSize),
		bw: bufio.NewWriterSize(nc, writeBufferSize),
	}
}

// NetConn returns the underlying socket.
func (c *Conn) NetConn() net.Conn {
	return c.nc
}

// EnableInterleaved switches the connection into interleaved mode, after
// which a leading 0x24 byte before a message is treated as the start of an
// interleaved frame rather than a protocol violation.
func (c *Conn) EnableInterleaved() {
	c.interleavedMu.Lock()
	c.interleaved = true
	c.interleavedMu.Unlock()
}

func (c *Conn) isInterleaved() bool {
	c.interleavedMu.RLock()
	defer c.interleavedMu.RUnlock()
	return c.interleaved
}

// SetReadDeadline proxies to the underlying socket, for the idle-connection
// timeout of spec.md §5.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.nc.SetReadDeadline(t)
}

// Close closes the underlying socket. Repeated calls are safe: net.Conn.Close
// on an already closed socket only returns an error.
func (c *Conn) Close() error {
	return c.nc.Close()
}

// ReadMessage reads the next message on the connection: either a Request or
// an InterleavedFrame. Outside interleaved mode, a leading 0x24 is a
// ProtocolViolation (spec.md §4.1).
func (c *Conn) ReadMessage(maxContentLength int) (interface{}, error) {
	isFrame, err := rtspwire.PeekIsInterleaved(c.br)
	if err != nil {
		if err == io.EOF {
			return nil, liberrors.ErrPeerClosed{}
		}
		return nil, liberrors.ErrPeerReset{}
	}

	if isFrame {
		if !c.isInterleaved() {
			return nil, liberrors.ErrProtocolViolation{Reason: "unexpected interleaved frame outside interleaved mode"}
		}

		fr, err := rtspwire.ReadInterleavedFrame(c.br)
		if err != nil {
			return nil, wrapMidMessageErr(err)
		}
		return fr, nil
	}

	req, err := rtspwire.ReadRequest(c.br, maxContentLength)
	if err != nil {
		return nil, wrapMidMessageErr(err)
	}
	return req, nil
}

// wrapMidMessageErr turns a bare I/O EOF observed partway through a message
// into PeerReset; ProtocolViolation and other typed errors pass through.
func wrapMidMessageErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return liberrors.ErrPeerReset{}
	}
	return err
}

// WriteResponse serializes and flushes a response. Writes are serialized
// against concurrent calls (e.g. a keepalive response racing a PLAY
// response) by writeMu.
func (c *Conn) WriteResponse(res *rtspwire.Response) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return res.Write(c.bw)
}

// WriteInterleavedFrame writes a single interleaved frame using buf as
// scratch space (buf must be at least fr.MarshalSize() bytes; callers
// reuse one buffer per subscriber channel to avoid per-datagram allocation).
func (c *Conn) WriteInterleavedFrame(fr *rtspwire.InterleavedFrame, buf []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	n := fr.MarshalTo(buf)
	if _, err := c.bw.Write(buf[:n]); err != nil {
		return err
	}
	return c.bw.Flush()
}
