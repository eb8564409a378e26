package rtspwire

import (
	"net/url"
	"strings"

	"github.com/bluenviron/rtsprelay/internal/liberrors"
)

// URL is a parsed RTSP request URI.
type URL struct {
	raw *url.URL
}

// ParseURL parses a raw RTSP URL, such as "rtsp://host:554/live/streamid=0".
func ParseURL(s string) (*URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, liberrors.ErrProtocolViolation{Reason: "malformed request URI"}
	}

	if u.Scheme != "" && u.Scheme != "rtsp" {
		return nil, liberrors.ErrProtocolViolation{Reason: "unsupported URL scheme"}
	}

	return &URL{raw: u}, nil
}

// String returns the URL in its original form.
func (u *URL) String() string {
	return u.raw.String()
}

// NormalizedPath strips the mount path out of the URL: it collapses
// duplicate slashes, removes a trailing slash (except on the root), and
// always keeps a single leading slash. This is the MountPath key used by the
// registry (spec §4.5).
func (u *URL) NormalizedPath() string {
	return NormalizePath(u.raw.Path)
}

// NormalizePath applies the same normalization to a bare path string,
// independent of a parsed URL. It is also used to strip a trailing
// "/streamid=N" control-URL suffix added by SETUP requests, via
// SplitControlSuffix.
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}

	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}

	return p
}

// SplitControlSuffix separates a SETUP request's control URL into the mount
// path and the trailing "streamid=N" (or "trackID=N") control attribute, if
// present. It returns -1 if no numeric suffix is found, in which case the
// caller should treat the request as addressing stream index 0.
func SplitControlSuffix(path string) (mountPath string, streamIndex int) {
	base := NormalizePath(path)

	idx := strings.LastIndex(base, "/")
	if idx <= 0 {
		return base, -1
	}

	last := base[idx+1:]
	for _, prefix := range []string{"streamid=", "trackID=", "track="} {
		if strings.HasPrefix(last, prefix) {
			n := 0
			digits := last[len(prefix):]
			if digits == "" {
				return base, -1
			}
			for _, c := range digits {
				if c < '0' || c > '9' {
					return base, -1
				}
				n = n*10 + int(c-'0')
			}
			return base[:idx], n
		}
	}

	return base, -1
}
