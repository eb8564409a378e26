package rtspserver

import (
	"net"
	"time"

	"github.com/bluenviron/rtsprelay/internal/logger"
	"github.com/bluenviron/rtsprelay/internal/mount"
	"github.com/bluenviron/rtsprelay/internal/rtpio"
	"github.com/bluenviron/rtsprelay/internal/rtspwire"
)

// Server owns the process-wide state shared by every connection: the
// mount registry, the RTP port allocator, and the listener registry
// bridging Source RECORDs to Client UDP SETUPs. Grounded on the teacher
// library's top-level Server (server.go), trimmed to this spec's single
// accept loop (the teacher additionally supports a session-migrating
// variant this server has no use for).
type Server struct {
	registry         *mount.Registry
	alloc            *rtpio.PortAllocator
	listenerRegistry *listenerRegistry
	log              logger.Writer

	listenIP         string
	readTimeout      time.Duration
	maxContentLength int
}

// New builds a Server. listenIP is the address RTP/RTCP sockets bind to;
// it is typically the same host the RTSP listener is bound to.
func New(listenIP string, rtpPortMin, rtpPortMax int, readTimeout time.Duration, log logger.Writer) *Server {
	return &Server{
		registry:         mount.NewRegistry(),
		alloc:            rtpio.NewPortAllocator(rtpPortMin, rtpPortMax),
		listenerRegistry: newListenerRegistry(),
		log:              log,
		listenIP:         listenIP,
		readTimeout:      readTimeout,
		maxContentLength: rtspwire.DefaultMaxContentLength,
	}
}

// Registry exposes the mount registry for the observability endpoint.
func (s *Server) Registry() *mount.Registry {
	return s.registry
}

// Serve accepts connections on ln until it returns an error (typically
// because the listener was closed during shutdown), spawning one
// goroutine per connection (spec.md §5: "concurrent per connection").
func (s *Server) Serve(ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			return err
		}

		h := newConnHandler(s, nc)
		go h.serve()
	}
}
