package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	require.Equal(t, DefaultListenAddress, c.ListenAddress)
	require.Equal(t, DefaultListenPort, c.ListenPort)
	require.Equal(t, DefaultRTPPortMin, c.RTPPortMin)
	require.Equal(t, DefaultRTPPortMax, c.RTPPortMax)
	require.Equal(t, DefaultReadTimeoutSeconds, c.ReadTimeoutSeconds)
	require.Equal(t, DefaultLogLevel, c.LogLevel)
	require.Equal(t, "", c.APIListenAddress)
}

func TestLoadDecodesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"listen_port": 8554,
		"rtp_port_min": 30000,
		"rtp_port_max": 31000,
		"log_level": "debug",
		"api_listen_address": "127.0.0.1:9997"
	}`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 8554, c.ListenPort)
	require.Equal(t, 30000, c.RTPPortMin)
	require.Equal(t, 31000, c.RTPPortMax)
	require.Equal(t, "debug", c.LogLevel)
	require.Equal(t, "127.0.0.1:9997", c.APIListenAddress)
	// untouched fields still take their defaults.
	require.Equal(t, DefaultListenAddress, c.ListenAddress)
}

func TestLoadRejectsInvalidPortRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rtp_port_min": 40000, "rtp_port_max": 30000}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsNegativeMaxConnections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_connections": -1}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
