package endpoints

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusIsPublic(t *testing.T) {
	srv, _ := newTestServer(t)

	// No Authorization header required
	w := doRequest(srv, "GET", "/status", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Database)
	assert.NotEmpty(t, resp.Version)
}

func TestStatusAtRoot(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, "GET", "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
