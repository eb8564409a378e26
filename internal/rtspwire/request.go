package rtspwire

import (
	"bufio"

	"github.com/bluenviron/rtsprelay/internal/liberrors"
)

const (
	rtspVersion10    = "RTSP/1.0"
	maxMethodLength  = 128
	maxURILength     = 1024
	maxVersionLength = 128
)

// Request is a parsed RTSP request.
type Request struct {
	Method  Method
	URL     *URL
	Header  Header
	Content []byte
}

// ReadRequest reads a single RTSP request from rb. maxContentLength bounds
// the body; DefaultMaxContentLength is a reasonable default.
func ReadRequest(rb *bufio.Reader, maxContentLength int) (*Request, error) {
	byts, err := readBytesLimited(rb, ' ', maxMethodLength)
	if err != nil {
		return nil, err
	}
	method := Method(byts[:len(byts)-1])
	if method == "" {
		return nil, liberrors.ErrProtocolViolation{Reason: "empty method"}
	}

	byts, err = readBytesLimited(rb, ' ', maxURILength)
	if err != nil {
		return nil, err
	}
	rawURL := string(byts[:len(byts)-1])
	if rawURL == "" {
		return nil, liberrors.ErrProtocolViolation{Reason: "empty request URI"}
	}

	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	byts, err = readBytesLimited(rb, '\r', maxVersionLength)
	if err != nil {
		return nil, err
	}
	version := string(byts[:len(byts)-1])
	if version != rtspVersion10 {
		return nil, liberrors.ErrUnsupportedVersion{Version: version}
	}

	if err := readByteEqual(rb, '\n'); err != nil {
		return nil, err
	}

	req := &Request{Method: method, URL: u}

	if err := req.Header.read(rb); err != nil {
		return nil, err
	}

	req.Content, err = contentRead(rb, req.Header, maxContentLength)
	if err != nil {
		return nil, err
	}

	return req, nil
}

// CSeq returns the mandatory CSeq header, or "" if missing.
func (req *Request) CSeq() string {
	return req.Header.Get("CSeq")
}
