package mount

import (
	"errors"
	"sync"
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/require"
)

type fakeSourceRef struct{ id string }

func (f fakeSourceRef) ID() string { return f.id }

// recordingSubscriber records every payload it receives, optionally failing
// every RTP or RTCP write (failRTP/failRTCP) to exercise Stream's
// dead-subscriber pruning.
type recordingSubscriber struct {
	mu       sync.Mutex
	rtp      [][]byte
	rtcp     [][]byte
	failRTP  bool
	failRTCP bool
}

func (s *recordingSubscriber) WriteRTP(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRTP {
		return errors.New("write failed")
	}
	s.rtp = append(s.rtp, append([]byte(nil), payload...))
	return nil
}

func (s *recordingSubscriber) WriteRTCP(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRTCP {
		return errors.New("write failed")
	}
	s.rtcp = append(s.rtcp, append([]byte(nil), payload...))
	return nil
}

func (s *recordingSubscriber) rtpCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rtp)
}

func samplePacket(t *testing.T, seq uint16) []byte {
	t.Helper()
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    96,
			SequenceNumber: seq,
			Timestamp:      12345,
			SSRC:           1,
		},
		Payload: []byte{0xAA, 0xBB},
	}
	byts, err := pkt.Marshal()
	require.NoError(t, err)
	return byts
}

func TestStreamBroadcastRTPPreservesOrder(t *testing.T) {
	s := NewStream(0)
	sub := &recordingSubscriber{}
	s.AddSubscriber(sub)

	for seq := uint16(0); seq < 5; seq++ {
		s.BroadcastRTP(samplePacket(t, seq))
	}

	require.Equal(t, 5, sub.rtpCount())
	for i, payload := range sub.rtp {
		var pkt rtp.Packet
		require.NoError(t, pkt.Unmarshal(payload))
		require.Equal(t, uint16(i), pkt.SequenceNumber)
	}
}

func TestStreamBroadcastPrunesDeadSubscribers(t *testing.T) {
	s := NewStream(0)
	dead := &recordingSubscriber{failRTP: true}
	alive := &recordingSubscriber{}
	s.AddSubscriber(dead)
	s.AddSubscriber(alive)

	s.BroadcastRTP(samplePacket(t, 1))
	require.Equal(t, 1, s.SubscriberCount())

	s.BroadcastRTP(samplePacket(t, 2))
	require.Equal(t, 2, alive.rtpCount())
}

func TestStreamRemoveSubscriber(t *testing.T) {
	s := NewStream(0)
	sub := &recordingSubscriber{}
	s.AddSubscriber(sub)
	require.Equal(t, 1, s.SubscriberCount())

	s.RemoveSubscriber(sub)
	require.Equal(t, 0, s.SubscriberCount())
}

func TestRegistryCreateAndLookup(t *testing.T) {
	r := NewRegistry()
	source := fakeSourceRef{id: "conn-1"}

	m, err := r.Create("/live/cam1", []byte("v=0\n"), 2, source)
	require.NoError(t, err)
	require.Equal(t, 2, m.StreamCount())
	require.True(t, m.OwnedBy(source))
	require.False(t, m.IsMounted())

	found, err := r.Lookup("/live/cam1")
	require.NoError(t, err)
	require.Same(t, m, found)
}

func TestRegistryCreateDuplicatePath(t *testing.T) {
	r := NewRegistry()
	_, err := r.Create("/live/cam1", []byte("v=0\n"), 1, fakeSourceRef{id: "a"})
	require.NoError(t, err)

	_, err = r.Create("/live/cam1", []byte("v=0\n"), 1, fakeSourceRef{id: "b"})
	require.Error(t, err)
}

func TestRegistryLookupMissing(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("/nope")
	require.Error(t, err)
}

func TestRegistryUnmountIsIdempotent(t *testing.T) {
	r := NewRegistry()
	_, err := r.Create("/live/cam1", []byte("v=0\n"), 1, fakeSourceRef{id: "a"})
	require.NoError(t, err)

	r.Unmount("/live/cam1")
	r.Unmount("/live/cam1") // must not panic

	_, err = r.Lookup("/live/cam1")
	require.Error(t, err)
}

func TestMountMarkMounted(t *testing.T) {
	r := NewRegistry()
	m, err := r.Create("/live/cam1", []byte("v=0\n"), 1, fakeSourceRef{id: "a"})
	require.NoError(t, err)

	m.MarkMounted("192.168.1.50")
	require.True(t, m.IsMounted())
	require.Equal(t, "192.168.1.50", m.SourceHost())
}
