package rtspwire

import (
	"bufio"
	"io"
	"strconv"

	"github.com/bluenviron/rtsprelay/internal/liberrors"
)

// DefaultMaxContentLength bounds the body of any request or response whose
// Content-Length is not explicitly overridden by the caller.
const DefaultMaxContentLength = 4 * 1024 * 1024

func contentRead(rb *bufio.Reader, header Header, maxLen int) ([]byte, error) {
	cl := header.Get("Content-Length")
	if cl == "" {
		return nil, nil
	}

	n, err := strconv.ParseInt(cl, 10, 64)
	if err != nil || n < 0 {
		return nil, liberrors.ErrProtocolViolation{Reason: "invalid Content-Length"}
	}

	if int(n) > maxLen {
		return nil, liberrors.ErrProtocolViolation{Reason: "Content-Length exceeds maximum"}
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(rb, body); err != nil {
		return nil, err
	}

	return body, nil
}

func contentWrite(bw *bufio.Writer, content []byte) error {
	if len(content) == 0 {
		return nil
	}
	_, err := bw.Write(content)
	return err
}
