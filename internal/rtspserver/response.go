package rtspserver

import (
	"errors"

	"github.com/bluenviron/rtsprelay/internal/liberrors"
	"github.com/bluenviron/rtsprelay/internal/rtspwire"
)

// respond builds a response to req at the given status, echoing CSeq and,
// once a session exists, the Session header (spec.md §4.2).
func (h *connHandler) respond(status rtspwire.StatusCode, req *rtspwire.Request) *rtspwire.Response {
	res := rtspwire.NewResponse(status)
	res.Header.Set("CSeq", req.CSeq())
	if h.sessionID != "" {
		res.Header.Set("Session", h.sessionID)
	}
	return res
}

// errorResponse builds a user-visible failure: an RTSP status line with a
// reason phrase and a mandatory CSeq echo (spec.md §7).
func (h *connHandler) errorResponse(status rtspwire.StatusCode, req *rtspwire.Request, reason string) *rtspwire.Response {
	res := h.respond(status, req)
	res.Header.Set("X-Reason", reason)
	return res
}

// errorResponseErr maps a typed liberrors kind to its RTSP status code
// (spec.md §7: propagation policy). Errors that aren't one of this
// server's kinds map to 500.
func (h *connHandler) errorResponseErr(err error, req *rtspwire.Request) *rtspwire.Response {
	var (
		notFound      liberrors.ErrNotFound
		alreadyExists liberrors.ErrAlreadyExists
		sessionNF     liberrors.ErrSessionNotFound
		forbidden     liberrors.ErrForbidden
		exhausted     liberrors.ErrResourceExhausted
		protoViol     liberrors.ErrProtocolViolation
	)

	switch {
	case errors.As(err, &notFound):
		return h.errorResponse(rtspwire.StatusNotFound, req, notFound.Error())
	case errors.As(err, &alreadyExists):
		return h.errorResponse(rtspwire.StatusForbidden, req, alreadyExists.Error())
	case errors.As(err, &sessionNF):
		return h.errorResponse(rtspwire.StatusSessionNotFound, req, sessionNF.Error())
	case errors.As(err, &forbidden):
		return h.errorResponse(rtspwire.StatusForbidden, req, forbidden.Error())
	case errors.As(err, &exhausted):
		return h.errorResponse(rtspwire.StatusInternalServerError, req, exhausted.Error())
	case errors.As(err, &protoViol):
		return h.errorResponse(rtspwire.StatusBadRequest, req, protoViol.Error())
	default:
		return h.errorResponse(rtspwire.StatusInternalServerError, req, err.Error())
	}
}
