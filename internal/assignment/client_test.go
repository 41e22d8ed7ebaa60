package assignment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grthilak-rl/vas-kernel/pkg/wire"
)

func TestFetchAllAssignments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("enabled"))
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(wire.AssignmentListResponse{
			Assignments: []wire.Assignment{{ID: "a1", CameraID: "camA", ModelID: "m1", Enabled: true}},
			Total:       1,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	got := c.FetchAllAssignments()
	require.Len(t, got, 1)
	assert.Equal(t, "camA", got[0].CameraID)
}

func TestFetchAssignmentsForCamera(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "camA", r.URL.Query().Get("camera_id"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(wire.AssignmentListResponse{Assignments: []wire.Assignment{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	got := c.FetchAssignmentsForCamera("camA")
	assert.Empty(t, got)
}

func TestFetchReturnsEmptyOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	assert.Empty(t, c.FetchAllAssignments())
}

func TestFetchReturnsEmptyOnMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	assert.Empty(t, c.FetchAllAssignments())
}

func TestFetchReturnsEmptyOnNetworkError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "tok")
	assert.Empty(t, c.FetchAllAssignments())
}

func TestClientMintsJWTWhenSigningKeySet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		assert.NotEqual(t, "Bearer tok", auth)
		assert.Contains(t, auth, "Bearer ")
		json.NewEncoder(w).Encode(wire.AssignmentListResponse{Assignments: []wire.Assignment{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", WithSigningKey([]byte("secret")))
	c.FetchAllAssignments()
}
