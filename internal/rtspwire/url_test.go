package rtspwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	for _, c := range []struct {
		name string
		in   string
		out  string
	}{
		{"empty", "", "/"},
		{"already normal", "/live/cam1", "/live/cam1"},
		{"duplicate slashes", "//live///cam1", "/live/cam1"},
		{"missing leading slash", "live/cam1", "/live/cam1"},
		{"trailing slash", "/live/cam1/", "/live/cam1"},
		{"root", "/", "/"},
	} {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.out, NormalizePath(c.in))
		})
	}
}

func TestSplitControlSuffix(t *testing.T) {
	for _, c := range []struct {
		name      string
		in        string
		path      string
		streamIdx int
	}{
		{"no suffix", "/live/cam1", "/live/cam1", -1},
		{"streamid suffix", "/live/cam1/streamid=0", "/live/cam1", 0},
		{"streamid suffix second stream", "/live/cam1/streamid=1", "/live/cam1", 1},
		{"trackID suffix", "/live/cam1/trackID=2", "/live/cam1", 2},
		{"malformed digits", "/live/cam1/streamid=x", "/live/cam1/streamid=x", -1},
	} {
		t.Run(c.name, func(t *testing.T) {
			path, idx := SplitControlSuffix(c.in)
			require.Equal(t, c.path, path)
			require.Equal(t, c.streamIdx, idx)
		})
	}
}

func TestParseURL(t *testing.T) {
	u, err := ParseURL("rtsp://192.168.1.1:554/live/cam1")
	require.NoError(t, err)
	require.Equal(t, "/live/cam1", u.NormalizedPath())

	_, err = ParseURL("http://192.168.1.1:554/live/cam1")
	require.Error(t, err)
}
