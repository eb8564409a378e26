// Package mount implements the process-wide mount-point registry: the glue
// between a publishing Source connection and the Client connections
// subscribed to the same path. Grounded on the teacher library's
// ServerStream/ServerStreamMedia concept (serverstream.go,
// serverstreammedia.go), adapted to spec.md's Mount/Stream/Subscriber model.
package mount

import (
	"sync"

	"github.com/bluenviron/rtsprelay/internal/liberrors"
)

// SourceRef identifies the connection that owns a Mount, without the mount
// package needing to import the connection type (which in turn depends on
// mount, for registry lookups). Only used for the "one source per mount"
// check and diagnostics.
type SourceRef interface {
	ID() string
}

// Subscriber receives RTP/RTCP payloads fanned out by a Stream. Concrete
// implementations deliver over UDP (to a negotiated client_port pair) or by
// writing an interleaved frame on the client's own TCP control socket
// (spec.md §4.4). A write failure marks the subscriber dead: BroadcastRTP
// and BroadcastRTCP remove it from the Stream after the pass in which its
// first write fails.
type Subscriber interface {
	WriteRTP(payload []byte) error
	WriteRTCP(payload []byte) error
}

// Stream is one numbered sub-stream of a Mount (one SDP "m=" line).
type Stream struct {
	Index   int
	RTPPort int // even; RTCP is RTPPort+1.

	subMu sync.Mutex
	subs  []Subscriber
}

// NewStream creates a Stream with no RTP port bound yet; a Source's UDP
// SETUP assigns one via the port allocator (spec.md §4.6).
func NewStream(index int) *Stream {
	return &Stream{Index: index}
}

// RTCPPort is the odd port paired with RTPPort.
func (s *Stream) RTCPPort() int {
	if s.RTPPort == 0 {
		return 0
	}
	return s.RTPPort + 1
}

// AddSubscriber registers a client subscriber on this stream.
func (s *Stream) AddSubscriber(sub Subscriber) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, sub)
}

// RemoveSubscriber removes a specific subscriber, e.g. on TEARDOWN or PAUSE.
func (s *Stream) RemoveSubscriber(sub Subscriber) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = removeSub(s.subs, sub)
}

func removeSub(subs []Subscriber, target Subscriber) []Subscriber {
	out := subs[:0]
	for _, s := range subs {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

// BroadcastRTP fans an RTP datagram out to every live subscriber, in the
// order the listener received it (spec.md invariant 4: per-subscriber
// FIFO). Dead subscribers are pruned after the pass so a slow or gone
// client never blocks delivery to the others (spec.md §5).
func (s *Stream) BroadcastRTP(payload []byte) {
	s.broadcast(payload, Subscriber.WriteRTP)
}

// BroadcastRTCP fans an RTCP datagram out identically to BroadcastRTP.
// Payloads are forwarded unparsed (spec.md §4.4, Non-goals: RTCP feedback
// processing).
func (s *Stream) BroadcastRTCP(payload []byte) {
	s.broadcast(payload, Subscriber.WriteRTCP)
}

func (s *Stream) broadcast(payload []byte, write func(Subscriber, []byte) error) {
	s.subMu.Lock()
	snapshot := make([]Subscriber, len(s.subs))
	copy(snapshot, s.subs)
	s.subMu.Unlock()

	var dead []Subscriber
	for _, sub := range snapshot {
		if err := write(sub, payload); err != nil {
			dead = append(dead, sub)
		}
	}

	if len(dead) == 0 {
		return
	}

	s.subMu.Lock()
	for _, d := range dead {
		s.subs = removeSub(s.subs, d)
	}
	s.subMu.Unlock()
}

// SubscriberCount returns the current number of live subscribers, used by
// the observability endpoint.
func (s *Stream) SubscriberCount() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

// Mount is a published stream: its SDP, its numbered Streams, and whether a
// Source has successfully RECORDed it yet.
type Mount struct {
	Path string

	mu         sync.Mutex
	sdp        []byte
	streams    []*Stream
	sourceHost string
	sourceRef  SourceRef
	mounted    bool
}

// newMount is only called by Registry.Create, which holds the registry lock
// while doing so (spec.md §4.5: create is atomic with the uniqueness check).
func newMount(path string, sdp []byte, streamCount int, source SourceRef) *Mount {
	streams := make([]*Stream, streamCount)
	for i := range streams {
		streams[i] = NewStream(i)
	}

	return &Mount{
		Path:      path,
		sdp:       sdp,
		streams:   streams,
		sourceRef: source,
	}
}

// SDP returns the SDP body most recently ANNOUNCEd, byte-identical to the
// request body (spec.md invariant 5).
func (m *Mount) SDP() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sdp
}

// Streams returns the Mount's sub-streams in index order.
func (m *Mount) Streams() []*Stream {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streams
}

// Stream returns the sub-stream at index, or nil if out of range.
func (m *Mount) Stream(index int) *Stream {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.streams) {
		return nil
	}
	return m.streams[index]
}

// StreamCount returns the number of "m=" lines this Mount was ANNOUNCEd
// with.
func (m *Mount) StreamCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.streams)
}

// IsMounted reports whether RECORD has completed; clients may only PLAY a
// mounted Mount (spec.md invariant in the data model table).
func (m *Mount) IsMounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mounted
}

// MarkMounted sets mounted=true and records the publishing host, called by
// the connection state machine on a successful RECORD.
func (m *Mount) MarkMounted(sourceHost string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mounted = true
	m.sourceHost = sourceHost
}

// SourceHost returns the host that last RECORDed this Mount.
func (m *Mount) SourceHost() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sourceHost
}

// OwnedBy reports whether ref is the current Source of this Mount (spec.md
// invariant 2: at most one Source per Mount at any instant).
func (m *Mount) OwnedBy(ref SourceRef) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sourceRef != nil && ref != nil && m.sourceRef.ID() == ref.ID()
}

// Registry is the process-wide path -> Mount map (spec.md §4.5). Its
// mutex's critical sections only ever touch the map itself, never a socket
// write, so a slow subscriber can never stall an unrelated ANNOUNCE or
// DESCRIBE (spec.md §5).
type Registry struct {
	mu     sync.Mutex
	mounts map[string]*Mount
}

// NewRegistry allocates an empty registry.
func NewRegistry() *Registry {
	return &Registry{mounts: make(map[string]*Mount)}
}

// Create maps path to a new Mount, or returns ErrAlreadyExists if the path
// is already mapped to one, mounted or not (spec.md §4.5: matches the
// ANNOUNCE contract regardless of mounted state).
func (r *Registry) Create(path string, sdp []byte, streamCount int, source SourceRef) (*Mount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.mounts[path]; ok {
		return nil, liberrors.ErrAlreadyExists{Path: path}
	}

	m := newMount(path, sdp, streamCount, source)
	r.mounts[path] = m
	return m, nil
}

// Lookup returns the Mount at path, or ErrNotFound.
func (r *Registry) Lookup(path string) (*Mount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.mounts[path]
	if !ok {
		return nil, liberrors.ErrNotFound{Path: path}
	}
	return m, nil
}

// Unmount removes path from the registry. It is idempotent: unmounting a
// path that isn't mapped is a no-op (spec.md invariant 7, cleanup
// idempotence, flows from here up through the connection teardown path).
func (r *Registry) Unmount(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mounts, path)
}

// Snapshot returns every currently registered Mount, mounted or not, for
// the observability endpoint (SPEC_FULL.md §6).
func (r *Registry) Snapshot() []*Mount {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Mount, 0, len(r.mounts))
	for _, m := range r.mounts {
		out = append(out, m)
	}
	return out
}
