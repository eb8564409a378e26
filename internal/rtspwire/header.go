package rtspwire

import (
	"bufio"
	"net/http"
	"sort"
	"strings"

	"github.com/bluenviron/rtsprelay/internal/liberrors"
)

const (
	headerMaxEntryCount  = 255
	headerMaxKeyLength   = 512
	headerMaxValueLength = 2048
)

func headerKeyNormalize(in string) string {
	switch strings.ToLower(in) {
	case "cseq":
		return "CSeq"
	case "www-authenticate":
		return "WWW-Authenticate"
	}
	return http.CanonicalHeaderKey(in)
}

// HeaderValue is a single header's value(s). RTSP allows the same header
// name to repeat; this server only ever emits or expects one value, but
// keeps the slice shape for parity with the values it reads.
type HeaderValue []string

// Header is the parsed header block of a Request or Response. Keys are
// case-insensitively normalized on read.
type Header map[string]HeaderValue

// Get returns the first value for a header, or "" if absent.
func (h Header) Get(key string) string {
	v, ok := h[headerKeyNormalize(key)]
	if !ok || len(v) == 0 {
		return ""
	}
	return v[0]
}

// Set assigns a single value to a header, replacing any existing value.
func (h Header) Set(key, value string) {
	h[headerKeyNormalize(key)] = HeaderValue{value}
}

func (h *Header) read(rb *bufio.Reader) error {
	*h = make(Header)
	count := 0

	for {
		byt, err := rb.ReadByte()
		if err != nil {
			return err
		}

		if byt == '\r' {
			return readByteEqual(rb, '\n')
		}

		if count >= headerMaxEntryCount {
			return liberrors.ErrProtocolViolation{Reason: "too many headers"}
		}

		byts, err := readBytesLimited(rb, ':', headerMaxKeyLength-1)
		if err != nil {
			return liberrors.ErrProtocolViolation{Reason: "malformed header line"}
		}
		key := headerKeyNormalize(string(byt) + string(byts[:len(byts)-1]))

		// skip leading spaces in the value, per RFC 2616.
		for {
			b, err := rb.ReadByte()
			if err != nil {
				return err
			}
			if b != ' ' {
				rb.UnreadByte() //nolint:errcheck
				break
			}
		}

		byts, err = readBytesLimited(rb, '\r', headerMaxValueLength)
		if err != nil {
			return liberrors.ErrProtocolViolation{Reason: "header value too long"}
		}
		val := string(byts[:len(byts)-1])

		if err := readByteEqual(rb, '\n'); err != nil {
			return err
		}

		(*h)[key] = append((*h)[key], val)
		count++
	}
}

func (h Header) write(bw *bufio.Writer) error {
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, val := range h[key] {
			if _, err := bw.WriteString(key + ": " + val + "\r\n"); err != nil {
				return err
			}
		}
	}

	_, err := bw.WriteString("\r\n")
	return err
}
