package headers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTransportUDPClientPort(t *testing.T) {
	tr, err := ParseTransport("RTP/AVP;unicast;client_port=9000-9001")
	require.NoError(t, err)
	require.Equal(t, ProtocolUDP, tr.Protocol)
	require.Equal(t, &[2]int{9000, 9001}, tr.ClientPorts)
	require.Nil(t, tr.InterleavedIDs)
}

func TestParseTransportTCPInterleavedRecord(t *testing.T) {
	tr, err := ParseTransport("RTP/AVP/TCP;unicast;interleaved=0-1;mode=record")
	require.NoError(t, err)
	require.Equal(t, ProtocolTCP, tr.Protocol)
	require.True(t, tr.Record)
	require.Equal(t, &[2]int{0, 1}, tr.InterleavedIDs)
}

func TestParseTransportEmpty(t *testing.T) {
	_, err := ParseTransport("")
	require.Error(t, err)
}

func TestParseTransportInvalidPortPair(t *testing.T) {
	_, err := ParseTransport("RTP/AVP;unicast;client_port=bad")
	require.Error(t, err)
}

func TestTransportWriteEchoesUnicastToken(t *testing.T) {
	noToken, err := ParseTransport("RTP/AVP/TCP;interleaved=0-1")
	require.NoError(t, err)
	require.Equal(t, "RTP/AVP/TCP;interleaved=0-1", noToken.Write())

	withToken, err := ParseTransport("RTP/AVP/TCP;unicast;interleaved=0-1")
	require.NoError(t, err)
	require.Equal(t, "RTP/AVP/TCP;unicast;interleaved=0-1", withToken.Write())
}

func TestTransportWriteRoundTrip(t *testing.T) {
	tr := Transport{
		Protocol:    ProtocolUDP,
		ClientPorts: &[2]int{9000, 9001},
		ServerPorts: &[2]int{20000, 20001},
	}

	written := tr.Write()
	parsed, err := ParseTransport(written)
	require.NoError(t, err)
	require.Equal(t, tr.Protocol, parsed.Protocol)
	require.Equal(t, tr.ClientPorts, parsed.ClientPorts)
	require.Equal(t, tr.ServerPorts, parsed.ServerPorts)
}
