package liberrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorsAsUnwrapsIO(t *testing.T) {
	inner := errors.New("connection reset")
	err := error(ErrIO{Err: inner})

	var target ErrIO
	require.True(t, errors.As(err, &target))
	require.Equal(t, inner, errors.Unwrap(err))
}

func TestNotFoundMessageIncludesPath(t *testing.T) {
	err := ErrNotFound{Path: "/live/cam1"}
	require.Contains(t, err.Error(), "/live/cam1")
}

func TestErrorsAsDistinguishesKinds(t *testing.T) {
	var err error = ErrForbidden{Reason: "duplicate source"}

	var notFound ErrNotFound
	require.False(t, errors.As(err, &notFound))

	var forbidden ErrForbidden
	require.True(t, errors.As(err, &forbidden))
	require.Equal(t, "duplicate source", forbidden.Reason)
}
