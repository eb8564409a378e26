// Package rtspserver implements the per-connection RTSP state machine
// (spec.md §4.2) and the accepting Server that owns the mount registry and
// port allocator shared by every connection. Grounded on the teacher
// library's server_conn.go/server_session.go request-handling shape, with
// the session folded into the connection since this server, unlike the
// teacher library, never migrates a session across sockets.
package rtspserver

import (
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/bluenviron/rtsprelay/internal/liberrors"
	"github.com/bluenviron/rtsprelay/internal/logger"
	"github.com/bluenviron/rtsprelay/internal/mount"
	"github.com/bluenviron/rtsprelay/internal/rtpio"
	"github.com/bluenviron/rtsprelay/internal/rtspconn"
	"github.com/bluenviron/rtsprelay/internal/rtspwire"
	"github.com/bluenviron/rtsprelay/internal/rtspwire/headers"
)

func deadlineFromNow(d time.Duration) time.Time {
	return time.Now().Add(d)
}

// subscription remembers, for a Client connection, which Streams it holds a
// Subscriber for, so TEARDOWN and abnormal disconnect can remove exactly
// those (spec.md §4.3). live tracks whether the Subscriber is currently
// registered with the Stream: PLAY registers it, PAUSE unregisters it, so a
// connection only receives frames while it is in StatePlaying (spec.md §3).
type subscription struct {
	stream *mount.Stream
	sub    mount.Subscriber
	live   bool
}

// connHandler runs one accepted connection's entire lifecycle: parsing,
// state machine dispatch, and cleanup. Every field below is owned by the
// single goroutine running serve, except where noted, so no internal
// mutex is needed (spec.md §5: requests on one connection are strictly
// serialized).
type connHandler struct {
	srv *Server
	c   *rtspconn.Conn
	log logger.Writer

	connID string // identity for mount.SourceRef; never sent on the wire.

	role      Role
	state     State
	sessionID string

	mountPath string
	mnt       *mount.Mount

	// Source-only.
	listeners  []*rtpio.Listener
	channelMap map[int]channelTarget

	// Client-only.
	subs []subscription

	cleanedUp bool
}

// ID implements mount.SourceRef.
func (h *connHandler) ID() string {
	return h.connID
}

func newConnHandler(srv *Server, nc net.Conn) *connHandler {
	return &connHandler{
		srv:        srv,
		c:          rtspconn.New(nc),
		log:        srv.log,
		connID:     uuid.NewString(),
		role:       RoleUnknown,
		state:      StateInit,
		channelMap: make(map[int]channelTarget),
	}
}

// serve runs the connection's read loop until it closes or fails, then
// tears down whatever state it had accumulated.
func (h *connHandler) serve() {
	defer h.cleanup()

	for {
		h.c.SetReadDeadline(deadlineFromNow(h.srv.readTimeout))

		msg, err := h.c.ReadMessage(h.srv.maxContentLength)
		if err != nil {
			if _, ok := err.(liberrors.ErrPeerClosed); ok {
				return
			}
			h.log.Log(logger.Debug, "connection %s: %v", h.connID, err)
			return
		}

		switch m := msg.(type) {
		case *rtspwire.Request:
			res, terminate := h.handleRequest(m)
			if werr := h.c.WriteResponse(res); werr != nil {
				h.log.Log(logger.Debug, "connection %s: write failed: %v", h.connID, werr)
				return
			}
			if terminate {
				return
			}

		case *rtspwire.InterleavedFrame:
			h.handleInterleavedFrame(m)
		}
	}
}

// handleInterleavedFrame dispatches a frame received from a Source
// connection in interleaved mode to the Stream it was assigned to at
// SETUP (spec.md §4.4).
func (h *connHandler) handleInterleavedFrame(fr *rtspwire.InterleavedFrame) {
	if h.role != RoleSource || h.mnt == nil {
		return
	}

	target, ok := h.channelMap[fr.Channel]
	if !ok {
		return
	}

	stream := h.mnt.Stream(target.streamIndex)
	if stream == nil {
		return
	}

	if target.isRTCP {
		stream.BroadcastRTCP(fr.Payload)
	} else {
		stream.BroadcastRTP(fr.Payload)
	}
}

// handleRequest dispatches req by method and current (role, state),
// returning the response to send and whether the connection should close
// after sending it (true only for TEARDOWN).
func (h *connHandler) handleRequest(req *rtspwire.Request) (*rtspwire.Response, bool) {
	if req.CSeq() == "" {
		return h.errorResponse(rtspwire.StatusBadRequest, req, "missing CSeq"), false
	}

	if err := h.checkSession(req); err != nil {
		return h.errorResponseErr(err, req), false
	}

	switch req.Method {
	case rtspwire.Options:
		return h.handleOptions(req), false

	case rtspwire.Announce:
		return h.handleAnnounce(req), false

	case rtspwire.Setup:
		return h.handleSetup(req), false

	case rtspwire.Record:
		return h.handleRecord(req), false

	case rtspwire.Describe:
		return h.handleDescribe(req), false

	case rtspwire.Play:
		return h.handlePlay(req), false

	case rtspwire.Pause:
		return h.handlePause(req), false

	case rtspwire.Teardown:
		return h.handleTeardown(req), true

	case rtspwire.GetParameter, rtspwire.SetParameter:
		return h.respond(rtspwire.StatusOK, req), false

	default:
		return h.errorResponse(rtspwire.StatusNotImplemented, req, "method not implemented"), false
	}
}

// checkSession enforces spec.md §4.7: once a session exists, every
// subsequent request on the connection must present the same Session
// header. ANNOUNCE, OPTIONS and DESCRIBE carry no session yet.
func (h *connHandler) checkSession(req *rtspwire.Request) error {
	if h.sessionID == "" {
		return nil
	}

	raw := req.Header.Get("Session")
	if raw == "" {
		return nil // keepalives and some clients omit it; nothing to mismatch.
	}

	sh, err := headers.ParseSession(raw)
	if err != nil || sh.ID != h.sessionID {
		return liberrors.ErrSessionNotFound{ID: raw}
	}

	return nil
}
