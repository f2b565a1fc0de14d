package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlers_Ping(t *testing.T) {
	t.Parallel()

	h := New(nil)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()

	h.Ping(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "pong", body["message"])
}

func TestHandlers_HealthcheckAndNotFound(t *testing.T) {
	t.Parallel()

	h := New(nil)

	rr := httptest.NewRecorder()
	h.HealthcheckHead(rr, httptest.NewRequest(http.MethodHead, "/healthcheck", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.NotFound(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, rr.Body.String())
}
