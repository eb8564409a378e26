package headers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSession(t *testing.T) {
	s, err := ParseSession("a1b2c3d4;timeout=60")
	require.NoError(t, err)
	require.Equal(t, "a1b2c3d4", s.ID)
}

func TestParseSessionBare(t *testing.T) {
	s, err := ParseSession("a1b2c3d4")
	require.NoError(t, err)
	require.Equal(t, "a1b2c3d4", s.ID)
}

func TestParseSessionEmpty(t *testing.T) {
	_, err := ParseSession("")
	require.Error(t, err)
}
