// Package api implements the observability HTTP/WebSocket endpoint added
// by SPEC_FULL.md: a read-only view of the mount registry, for
// dashboards and debugging. It has no bearing on RTSP correctness (the
// core never depends on it). Grounded on the teacher library's
// server_tunnel_websocket.go for gorilla/websocket usage, repurposed from
// an RTSP-over-WebSocket transport tunnel into a push feed of registry
// snapshots.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bluenviron/rtsprelay/internal/logger"
	"github.com/bluenviron/rtsprelay/internal/mount"
)

// eventInterval is how often /v1/events pushes a fresh registry
// snapshot to each connected client.
const eventInterval = 2 * time.Second

// streamView is the JSON projection of a mount.Stream.
type streamView struct {
	Index           int `json:"index"`
	RTPPort         int `json:"rtp_port"`
	SubscriberCount int `json:"subscriber_count"`
}

// mountView is the JSON projection of a mount.Mount.
type mountView struct {
	Path       string       `json:"path"`
	Mounted    bool         `json:"mounted"`
	SourceHost string       `json:"source_host,omitempty"`
	Streams    []streamView `json:"streams"`
}

func snapshotMounts(reg *mount.Registry) []mountView {
	mounts := reg.Snapshot()
	views := make([]mountView, 0, len(mounts))

	for _, m := range mounts {
		streams := m.Streams()
		sviews := make([]streamView, 0, len(streams))
		for _, s := range streams {
			sviews = append(sviews, streamView{
				Index:           s.Index,
				RTPPort:         s.RTPPort,
				SubscriberCount: s.SubscriberCount(),
			})
		}

		views = append(views, mountView{
			Path:       m.Path,
			Mounted:    m.IsMounted(),
			SourceHost: m.SourceHost(),
			Streams:    sviews,
		})
	}

	return views
}

// Server is the observability HTTP server.
type Server struct {
	addr     string
	registry *mount.Registry
	log      logger.Writer
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// New builds an observability Server bound to addr.
func New(addr string, registry *mount.Registry, log logger.Writer) *Server {
	s := &Server{
		addr:     addr,
		registry: registry,
		log:      log,
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/v1/mounts", s.handleMounts)
	s.mux.HandleFunc("/v1/events", s.handleEvents)

	return s
}

// ListenAndServe starts the HTTP server; it blocks until the listener
// fails.
func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.addr, s.mux) //nolint:gosec
}

func (s *Server) handleMounts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshotMounts(s.registry)) //nolint:errcheck
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	wc, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Log(logger.Debug, "events upgrade failed: %v", err)
		return
	}
	defer wc.Close()

	ticker := time.NewTicker(eventInterval)
	defer ticker.Stop()

	for range ticker.C {
		if err := wc.WriteJSON(snapshotMounts(s.registry)); err != nil {
			return
		}
	}
}
