package rtspwire

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterleavedFrameRoundTrip(t *testing.T) {
	fr := &InterleavedFrame{Channel: 2, Payload: []byte{1, 2, 3, 4, 5}}

	buf := make([]byte, fr.MarshalSize())
	n := fr.MarshalTo(buf)
	require.Equal(t, len(buf), n)

	isFrame, err := PeekIsInterleaved(bufio.NewReader(bytes.NewReader(buf)))
	require.NoError(t, err)
	require.True(t, isFrame)

	out, err := ReadInterleavedFrame(bufio.NewReader(bytes.NewReader(buf)))
	require.NoError(t, err)
	require.Equal(t, fr.Channel, out.Channel)
	require.Equal(t, fr.Payload, out.Payload)
}

func TestPeekIsInterleavedFalseForRequest(t *testing.T) {
	isFrame, err := PeekIsInterleaved(bufio.NewReader(bytes.NewBufferString("OPTIONS rtsp://x/ RTSP/1.0\r\n")))
	require.NoError(t, err)
	require.False(t, isFrame)
}
