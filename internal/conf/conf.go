// Package conf loads the server's JSON configuration document. Grounded on
// the teacher ecosystem's conf.Load (bluenviron-mediamtx/conf/conf.go):
// decode into a struct, then fill in defaults for zero-valued fields.
package conf

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bluenviron/rtsprelay/internal/liberrors"
)

// defaults, per spec.md §6.
const (
	DefaultListenAddress      = "0.0.0.0"
	DefaultListenPort         = 554
	DefaultRTPPortMin         = 20000
	DefaultRTPPortMax         = 30000
	DefaultReadTimeoutSeconds = 60
	DefaultMaxConnections     = 0
	DefaultLogLevel           = "info"
)

// Conf is the server's external configuration document.
type Conf struct {
	ListenAddress      string `json:"listen_address"`
	ListenPort         int    `json:"listen_port"`
	RTPPortMin         int    `json:"rtp_port_min"`
	RTPPortMax         int    `json:"rtp_port_max"`
	ReadTimeoutSeconds int    `json:"read_timeout_seconds"`
	MaxConnections     int    `json:"max_connections"`
	LogLevel           string `json:"log_level"`

	// APIListenAddress, when non-empty, starts the observability HTTP/
	// WebSocket endpoint on this address (SPEC_FULL.md §6). Empty disables
	// it; this is the one key with no equivalent in spec.md's table since
	// the endpoint itself is a SPEC_FULL.md addition.
	APIListenAddress string `json:"api_listen_address"`
}

// Load reads and decodes the JSON document at fpath, then fills in
// defaults for every zero-valued field. A missing file is not an error:
// spec.md §6 only requires recognized keys to take defaults when absent,
// and an absent file is the limiting case of an empty document.
func Load(fpath string) (*Conf, error) {
	c := &Conf{}

	if fpath != "" {
		if err := decodeFile(fpath, c); err != nil {
			return nil, liberrors.ErrConfigError{Err: err}
		}
	}

	c.fillDefaults()

	if err := c.validate(); err != nil {
		return nil, liberrors.ErrConfigError{Err: err}
	}

	return c, nil
}

func decodeFile(fpath string, c *Conf) error {
	f, err := os.Open(fpath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(c)
}

func (c *Conf) fillDefaults() {
	if c.ListenAddress == "" {
		c.ListenAddress = DefaultListenAddress
	}
	if c.ListenPort == 0 {
		c.ListenPort = DefaultListenPort
	}
	if c.RTPPortMin == 0 {
		c.RTPPortMin = DefaultRTPPortMin
	}
	if c.RTPPortMax == 0 {
		c.RTPPortMax = DefaultRTPPortMax
	}
	if c.ReadTimeoutSeconds == 0 {
		c.ReadTimeoutSeconds = DefaultReadTimeoutSeconds
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

func (c *Conf) validate() error {
	if c.RTPPortMin <= 0 || c.RTPPortMax <= 0 || c.RTPPortMin >= c.RTPPortMax {
		return fmt.Errorf("invalid rtp port range: %d-%d", c.RTPPortMin, c.RTPPortMax)
	}
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return fmt.Errorf("invalid listen_port: %d", c.ListenPort)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("invalid max_connections: %d", c.MaxConnections)
	}
	return nil
}
