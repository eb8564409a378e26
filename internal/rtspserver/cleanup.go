package rtspserver

// cleanup implements spec.md §4.3: it runs exactly once per connection, via
// serve's deferred call, whether the connection ends with a TEARDOWN
// response or the read loop observing a disconnect. Both paths run on the
// single goroutine owning this connHandler, so a plain flag is enough to
// make it idempotent — there is no concurrent caller to race against.
func (h *connHandler) cleanup() {
	if h.cleanedUp {
		return
	}
	h.cleanedUp = true

	switch h.role {
	case RoleSource:
		h.cleanupSource()
	case RoleClient:
		h.cleanupClient()
	}

	h.c.Close()
}

func (h *connHandler) cleanupSource() {
	for _, l := range h.listeners {
		if l != nil {
			l.Close()
		}
	}

	if h.mnt != nil {
		h.srv.listenerRegistry.unregisterMount(h.mountPath, h.mnt.StreamCount())
	}

	h.channelMap = nil

	if h.mountPath != "" {
		h.srv.registry.Unmount(h.mountPath)
	}
}

func (h *connHandler) cleanupClient() {
	for _, s := range h.subs {
		s.stream.RemoveSubscriber(s.sub)
	}
	h.subs = nil
}
