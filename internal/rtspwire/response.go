package rtspwire

import (
	"bufio"
	"strconv"
)

// Response is an RTSP response.
type Response struct {
	StatusCode StatusCode
	Header     Header
	Body       []byte
}

// NewResponse builds a response for the given status with an empty header
// map, ready for the caller to add CSeq/Session/etc.
func NewResponse(status StatusCode) *Response {
	return &Response{StatusCode: status, Header: make(Header)}
}

// Write serializes the response to bw and flushes it.
func (res *Response) Write(bw *bufio.Writer) error {
	if res.Header == nil {
		res.Header = make(Header)
	}

	msg := res.StatusCode.Message()
	if _, err := bw.WriteString(rtspVersion10 + " " + strconv.Itoa(int(res.StatusCode)) + " " + msg + "\r\n"); err != nil {
		return err
	}

	if len(res.Body) != 0 {
		res.Header.Set("Content-Length", strconv.Itoa(len(res.Body)))
	}

	if err := res.Header.write(bw); err != nil {
		return err
	}

	if err := contentWrite(bw, res.Body); err != nil {
		return err
	}

	return bw.Flush()
}
