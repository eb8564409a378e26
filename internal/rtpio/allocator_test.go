package rtpio

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPortAllocatorAllocatesEvenRTPPort(t *testing.T) {
	a := NewPortAllocator(21000, 21010)

	rtpConn, rtcpConn, port, err := a.Allocate("127.0.0.1")
	require.NoError(t, err)
	defer rtpConn.Close()
	defer rtcpConn.Close()

	require.Equal(t, 0, port%2)
	require.Equal(t, port, rtpConn.LocalAddr().(*net.UDPAddr).Port)
	require.Equal(t, port+1, rtcpConn.LocalAddr().(*net.UDPAddr).Port)
}

func TestPortAllocatorAdvancesBetweenCalls(t *testing.T) {
	a := NewPortAllocator(21100, 21120)

	_, _, port1, err := a.Allocate("127.0.0.1")
	require.NoError(t, err)

	_, _, port2, err := a.Allocate("127.0.0.1")
	require.NoError(t, err)

	require.NotEqual(t, port1, port2)
}

func TestPortAllocatorRoundsMinUpToEven(t *testing.T) {
	a := NewPortAllocator(21001, 21010)
	require.Equal(t, 0, a.min%2)
}

func TestPortAllocatorExhaustion(t *testing.T) {
	// A range with a single candidate pair; occupy it first so Allocate
	// has no free port within its retry budget.
	a := NewPortAllocator(21200, 21201)

	rtpConn, rtcpConn, _, err := a.Allocate("127.0.0.1")
	require.NoError(t, err)
	defer rtpConn.Close()
	defer rtcpConn.Close()

	_, _, _, err = a.Allocate("127.0.0.1")
	require.Error(t, err)
}
