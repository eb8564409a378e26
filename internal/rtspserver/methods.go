package rtspserver

import (
	"net"

	"github.com/bluenviron/rtsprelay/internal/liberrors"
	"github.com/bluenviron/rtsprelay/internal/logger"
	"github.com/bluenviron/rtsprelay/internal/mount"
	"github.com/bluenviron/rtsprelay/internal/rtpio"
	"github.com/bluenviron/rtsprelay/internal/rtspconn"
	"github.com/bluenviron/rtsprelay/internal/rtspwire"
	"github.com/bluenviron/rtsprelay/internal/rtspwire/headers"
)

// basePublicMethods is the Public header value OPTIONS advertises. spec.md
// §4.2: the base set, augmented by handleOptions with ANNOUNCE/RECORD for
// connections not yet demoted to Client.
const basePublicMethods = "OPTIONS, DESCRIBE, SETUP, PLAY, PAUSE, TEARDOWN, GET_PARAMETER, SET_PARAMETER"

// handleOptions is valid in any (role, state): it never changes state.
func (h *connHandler) handleOptions(req *rtspwire.Request) *rtspwire.Response {
	res := h.respond(rtspwire.StatusOK, req)

	public := basePublicMethods
	if h.role != RoleClient {
		public += ", ANNOUNCE, RECORD"
	}
	res.Header.Set("Public", public)

	return res
}

// handleAnnounce implements (Unknown, Init) --ANNOUNCE--> (Source, Init).
func (h *connHandler) handleAnnounce(req *rtspwire.Request) *rtspwire.Response {
	if h.role != RoleUnknown || h.state != StateInit {
		return h.errorResponse(rtspwire.StatusMethodNotValidInThisState, req, "ANNOUNCE not valid in this state")
	}

	if len(req.Content) == 0 {
		return h.errorResponse(rtspwire.StatusBadRequest, req, "missing SDP body")
	}

	streamCount, err := countStreams(req.Content)
	if err != nil {
		return h.errorResponse(rtspwire.StatusBadRequest, req, err.Error())
	}

	path := req.URL.NormalizedPath()

	mnt, err := h.srv.registry.Create(path, req.Content, streamCount, h)
	if err != nil {
		return h.errorResponseErr(err, req)
	}

	h.role = RoleSource
	h.state = StateInit
	h.mountPath = path
	h.mnt = mnt
	h.listeners = make([]*rtpio.Listener, streamCount)

	return h.respond(rtspwire.StatusOK, req)
}

// handleSetup implements both (Source, Init) --SETUP--> (Source, Ready) and
// (Client, Init) --SETUP--> (Client, Ready), distinguished by role.
func (h *connHandler) handleSetup(req *rtspwire.Request) *rtspwire.Response {
	transport, err := headers.ParseTransport(req.Header.Get("Transport"))
	if err != nil {
		return h.errorResponse(rtspwire.StatusBadRequest, req, "invalid Transport header")
	}

	mountPath, streamIndex := rtspwire.SplitControlSuffix(req.URL.NormalizedPath())
	if streamIndex < 0 {
		streamIndex = 0
	}

	switch h.role {
	case RoleSource:
		return h.handleSetupSource(req, transport, mountPath, streamIndex)
	case RoleClient:
		return h.handleSetupClient(req, transport, mountPath, streamIndex)
	default:
		// (Unknown, Init) has no SETUP transition in spec.md §4.2: a client
		// must DESCRIBE first to be recognized as a Client.
		return h.errorResponse(rtspwire.StatusMethodNotValidInThisState, req, "SETUP not valid in this state")
	}
}

func (h *connHandler) handleSetupSource(
	req *rtspwire.Request, transport *headers.Transport, mountPath string, streamIndex int,
) *rtspwire.Response {
	// A Mount with several Streams needs one SETUP per stream index before
	// RECORD; repeating SETUP while already Ready is accepted for that
	// reason even though spec.md §4.2's table only states the first
	// Init->Ready transition.
	if h.state == StateRecording || mountPath != h.mountPath {
		return h.errorResponse(rtspwire.StatusMethodNotValidInThisState, req, "SETUP not valid in this state")
	}

	if streamIndex < 0 || streamIndex >= len(h.listeners) {
		return h.errorResponse(rtspwire.StatusBadRequest, req, "stream index out of range")
	}

	resTransport := *transport
	// An interleaved SETUP is answered with the request's Transport value
	// unchanged; a UDP SETUP gets it rebuilt with server_port added.
	transportValue := req.Header.Get("Transport")

	if transport.Protocol == headers.ProtocolTCP && transport.InterleavedIDs != nil {
		h.channelMap[transport.InterleavedIDs[0]] = channelTarget{streamIndex: streamIndex, isRTCP: false}
		h.channelMap[transport.InterleavedIDs[1]] = channelTarget{streamIndex: streamIndex, isRTCP: true}
		h.c.EnableInterleaved()
	} else {
		stream := h.mnt.Stream(streamIndex)
		listener, err := rtpio.NewListener(h.srv.alloc, h.srv.listenIP, stream)
		if err != nil {
			return h.errorResponseErr(err, req)
		}
		h.listeners[streamIndex] = listener
		resTransport.ServerPorts = &[2]int{listener.RTPPort(), listener.RTPPort() + 1}
		transportValue = resTransport.Write()
	}

	if h.sessionID == "" {
		h.sessionID = newSessionID()
	}
	h.state = StateReady

	res := h.respond(rtspwire.StatusOK, req)
	res.Header.Set("Transport", transportValue)
	return res
}

func (h *connHandler) handleSetupClient(
	req *rtspwire.Request, transport *headers.Transport, mountPath string, streamIndex int,
) *rtspwire.Response {
	// Same reasoning as handleSetupSource: a multi-stream Mount needs one
	// SETUP per stream before PLAY.
	if h.state == StatePlaying || mountPath != h.mountPath {
		return h.errorResponse(rtspwire.StatusMethodNotValidInThisState, req, "SETUP not valid in this state")
	}

	mnt, err := h.srv.registry.Lookup(mountPath)
	if err != nil || !mnt.IsMounted() {
		return h.errorResponse(rtspwire.StatusNotFound, req, "mount not found")
	}

	stream := mnt.Stream(streamIndex)
	if stream == nil {
		return h.errorResponse(rtspwire.StatusBadRequest, req, "stream index out of range")
	}

	resTransport := *transport
	transportValue := req.Header.Get("Transport")
	var sub mount.Subscriber

	if transport.Protocol == headers.ProtocolTCP && transport.InterleavedIDs != nil {
		sub = rtspconn.NewInterleavedSubscriber(h.c, transport.InterleavedIDs[0], transport.InterleavedIDs[1])
		h.c.EnableInterleaved()
	} else if transport.ClientPorts != nil {
		listener, lerr := h.sourceListenerFor(mnt, stream)
		if lerr != nil {
			return h.errorResponseErr(lerr, req)
		}

		host, _, herr := net.SplitHostPort(h.c.NetConn().RemoteAddr().String())
		if herr != nil {
			return h.errorResponse(rtspwire.StatusBadRequest, req, "can't resolve client address")
		}

		sub = rtpio.NewUDPSubscriber(listener, net.ParseIP(host), transport.ClientPorts[0], transport.ClientPorts[1])
		resTransport.ServerPorts = &[2]int{listener.RTPPort(), listener.RTPPort() + 1}
		transportValue = resTransport.Write()
	} else {
		return h.errorResponse(rtspwire.StatusBadRequest, req, "Transport header names neither client_port nor interleaved")
	}

	// The subscriber isn't registered with the Stream yet: delivery only
	// starts once PLAY moves this connection into StatePlaying.
	h.subs = append(h.subs, subscription{stream: stream, sub: sub})

	h.role = RoleClient
	h.mountPath = mountPath
	h.mnt = mnt
	if h.sessionID == "" {
		h.sessionID = newSessionID()
	}
	h.state = StateReady

	res := h.respond(rtspwire.StatusOK, req)
	res.Header.Set("Transport", transportValue)
	return res
}

// sourceListenerFor finds the Listener bound for stream. A Client's UDP
// subscription reuses the Source's own RTP/RTCP sockets to send, since
// those are the only sockets that have observed the stream's traffic; if
// the Source set up that stream over interleaved transport, there is no
// UDP listener to reuse and UDP delivery to this client is unsupported.
func (h *connHandler) sourceListenerFor(mnt *mount.Mount, stream *mount.Stream) (*rtpio.Listener, error) {
	if stream.RTPPort == 0 {
		return nil, liberrors.ErrForbidden{Reason: "stream has no UDP listener (source publishes over interleaved transport)"}
	}
	return h.srv.listenerRegistry.lookup(mnt.Path, stream.Index)
}

// handleRecord implements (Source, Ready) --RECORD--> (Source, Recording).
func (h *connHandler) handleRecord(req *rtspwire.Request) *rtspwire.Response {
	if h.role != RoleSource || h.state != StateReady {
		return h.errorResponse(rtspwire.StatusMethodNotValidInThisState, req, "RECORD not valid in this state")
	}

	for i, l := range h.listeners {
		if l != nil {
			h.srv.listenerRegistry.register(h.mountPath, i, l)
		}
	}

	host, _, _ := net.SplitHostPort(h.c.NetConn().RemoteAddr().String())
	h.mnt.MarkMounted(host)
	h.state = StateRecording

	h.srv.log.Log(logger.Info, "mount %s recording from %s", h.mountPath, host)

	return h.respond(rtspwire.StatusOK, req)
}

// handleDescribe implements (Unknown, Init) --DESCRIBE--> (Client, Init).
// Resolved per SPEC_FULL.md: role-independent, looked up purely by path. On
// a connection that already has a role, DESCRIBE only returns the SDP and
// leaves role and state unchanged.
func (h *connHandler) handleDescribe(req *rtspwire.Request) *rtspwire.Response {
	path := req.URL.NormalizedPath()

	mnt, err := h.srv.registry.Lookup(path)
	if err != nil || !mnt.IsMounted() {
		return h.errorResponse(rtspwire.StatusNotFound, req, "mount not found")
	}

	if h.role == RoleUnknown {
		h.role = RoleClient
		h.mountPath = path
		h.mnt = mnt
	}

	res := h.respond(rtspwire.StatusOK, req)
	res.Header.Set("Content-Type", "application/sdp")
	res.Body = mnt.SDP()
	return res
}

// handlePlay implements (Client, Ready) --PLAY--> (Client, Playing). It
// registers every pending Subscriber with its Stream, so frames only start
// flowing once PLAY actually lands (spec.md §3: "A subscriber receives
// frames only while its owning connection is in PLAYING state").
func (h *connHandler) handlePlay(req *rtspwire.Request) *rtspwire.Response {
	if h.role != RoleClient || h.state != StateReady {
		return h.errorResponse(rtspwire.StatusMethodNotValidInThisState, req, "PLAY not valid in this state")
	}

	for i := range h.subs {
		if !h.subs[i].live {
			h.subs[i].stream.AddSubscriber(h.subs[i].sub)
			h.subs[i].live = true
		}
	}

	h.state = StatePlaying
	return h.respond(rtspwire.StatusOK, req)
}

// handlePause implements (Client, Playing) --PAUSE--> (Client, Ready). The
// Subscriber itself is kept (spec.md §4.2: "keep subscriber") so a later
// PLAY can resume delivery, but it is unregistered from the Stream so no
// frames are written while paused.
func (h *connHandler) handlePause(req *rtspwire.Request) *rtspwire.Response {
	if h.role != RoleClient || h.state != StatePlaying {
		return h.errorResponse(rtspwire.StatusMethodNotValidInThisState, req, "PAUSE not valid in this state")
	}

	for i := range h.subs {
		if h.subs[i].live {
			h.subs[i].stream.RemoveSubscriber(h.subs[i].sub)
			h.subs[i].live = false
		}
	}

	h.state = StateReady
	return h.respond(rtspwire.StatusOK, req)
}

// handleTeardown implements "any --TEARDOWN--> terminal" (spec.md §4.2). It
// only builds the reply; handleRequest reports terminate=true for TEARDOWN,
// so serve writes this response before its deferred cleanup runs the same
// teardown as an abnormal disconnect (§4.3) and closes the socket.
func (h *connHandler) handleTeardown(req *rtspwire.Request) *rtspwire.Response {
	return h.respond(rtspwire.StatusOK, req)
}
