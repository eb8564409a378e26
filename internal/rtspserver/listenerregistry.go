package rtspserver

import (
	"sync"

	"github.com/bluenviron/rtsprelay/internal/liberrors"
	"github.com/bluenviron/rtsprelay/internal/rtpio"
)

// listenerKey identifies one Stream's bound UDP listener by the Mount it
// belongs to and its index within that Mount.
type listenerKey struct {
	path  string
	index int
}

// listenerRegistry tracks the Listener bound for each (mount, stream) that
// RECORDed over UDP, so a later Client SETUP can reuse the same sockets to
// send: that way traffic a client receives always appears to originate
// from the server_port it was told about. Deliberately separate from
// mount.Registry to avoid a mount<->rtpio import cycle (mount.Stream only
// tracks the bound port number, not the socket).
type listenerRegistry struct {
	mu        sync.Mutex
	listeners map[listenerKey]*rtpio.Listener
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{listeners: make(map[listenerKey]*rtpio.Listener)}
}

func (r *listenerRegistry) register(path string, index int, l *rtpio.Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[listenerKey{path, index}] = l
}

func (r *listenerRegistry) lookup(path string, index int) (*rtpio.Listener, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listeners[listenerKey{path, index}]
	if !ok {
		return nil, liberrors.ErrNotFound{Path: path}
	}
	return l, nil
}

// unregisterMount removes and closes every listener registered for path,
// called when its Mount unmounts (spec.md §4.3).
func (r *listenerRegistry) unregisterMount(path string, streamCount int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < streamCount; i++ {
		key := listenerKey{path, i}
		if l, ok := r.listeners[key]; ok {
			l.Close()
			delete(r.listeners, key)
		}
	}
}
