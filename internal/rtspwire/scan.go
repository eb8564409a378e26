package rtspwire

import (
	"bufio"

	"github.com/bluenviron/rtsprelay/internal/liberrors"
)

// readBytesLimited reads from rb until delim is found, refusing to read past
// limit bytes. The returned slice includes the delimiter.
func readBytesLimited(rb *bufio.Reader, delim byte, limit int) ([]byte, error) {
	for n := 1; ; n++ {
		if n > limit {
			return nil, liberrors.ErrProtocolViolation{Reason: "line exceeds maximum length"}
		}

		byts, err := rb.Peek(n)
		if err != nil {
			return nil, err
		}

		if byts[n-1] == delim {
			rb.Discard(n) //nolint:errcheck
			return byts, nil
		}
	}
}

func readByteEqual(rb *bufio.Reader, expected byte) error {
	byt, err := rb.ReadByte()
	if err != nil {
		return err
	}

	if byt != expected {
		return liberrors.ErrProtocolViolation{Reason: "unexpected byte in line terminator"}
	}

	return nil
}
