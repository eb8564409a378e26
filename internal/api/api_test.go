package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bluenviron/rtsprelay/internal/mount"
)

type fakeSource struct{ id string }

func (f fakeSource) ID() string { return f.id }

func TestHandleMountsReportsRegistrySnapshot(t *testing.T) {
	reg := mount.NewRegistry()
	m, err := reg.Create("/live/cam1", []byte("v=0\n"), 2, fakeSource{id: "conn-1"})
	require.NoError(t, err)
	m.MarkMounted("10.0.0.5")
	m.Stream(0).RTPPort = 20000

	s := New("", reg, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/mounts", nil)
	rec := httptest.NewRecorder()
	s.handleMounts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var views []mountView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	require.Equal(t, "/live/cam1", views[0].Path)
	require.True(t, views[0].Mounted)
	require.Equal(t, "10.0.0.5", views[0].SourceHost)
	require.Len(t, views[0].Streams, 2)
	require.Equal(t, 20000, views[0].Streams[0].RTPPort)
}

func TestSnapshotMountsEmptyRegistry(t *testing.T) {
	views := snapshotMounts(mount.NewRegistry())
	require.Empty(t, views)
}
