package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablevox/tablevox/call"
	"github.com/tablevox/tablevox/config"
	"github.com/tablevox/tablevox/dialog"
	"github.com/tablevox/tablevox/extract"
	"github.com/tablevox/tablevox/store"
	"github.com/tablevox/tablevox/twiml"
)

func newTestServer(t *testing.T) *WebhookServer {
	t.Helper()
	registry := call.NewRegistry(nil, 0)
	t.Cleanup(registry.Shutdown)

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	controller := dialog.NewController(
		registry,
		dialog.NewResponder(config.DefaultProfile()),
		extract.RuleExtractor{},
		st,
		"/voice/gather",
		"/voice/confirm",
	)
	return NewWebhookServer(&config.Config{Port: 0}, controller, registry, st)
}

func postForm(t *testing.T, s *WebhookServer, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestIncomingCallReturnsGreetingTwiML(t *testing.T) {
	s := newTestServer(t)

	rec := postForm(t, s, "/voice/incoming", url.Values{
		"CallSid": {"CA1"},
		"From":    {"+447700900123"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Welcome to Korean BBQ House London")
	assert.Contains(t, rec.Body.String(), `input="speech"`)
}

func TestIncomingCallMissingSidRejected(t *testing.T) {
	s := newTestServer(t)

	rec := postForm(t, s, "/voice/incoming", url.Values{"From": {"+4420"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGatherDrivesDialogue(t *testing.T) {
	s := newTestServer(t)
	postForm(t, s, "/voice/incoming", url.Values{"CallSid": {"CA1"}, "From": {"+4420"}})

	rec := postForm(t, s, "/voice/gather", url.Values{
		"CallSid":      {"CA1"},
		"SpeechResult": {"I'd like to book a table"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "May I have your name")
}

func TestStatusCallbackRecordsEarlyDisconnect(t *testing.T) {
	s := newTestServer(t)
	postForm(t, s, "/voice/incoming", url.Values{"CallSid": {"CA1"}, "From": {"+4420"}})

	rec := postForm(t, s, "/voice/status", url.Values{
		"CallSid":      {"CA1"},
		"CallStatus":   {"completed"},
		"CallDuration": {"27"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, twiml.Empty(), rec.Body.String())

	rec = postForm(t, s, "/stats/early-disconnections", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code)

	var stats call.EarlyDisconnectStats
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, []string{"CA1"}, stats.IDs)
	assert.InDelta(t, 27.0, stats.AverageDurationSeconds, 0.001)
}

func TestTodaysReservationsEmpty(t *testing.T) {
	s := newTestServer(t)

	rec := postForm(t, s, "/reservations/today", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reservations":[]`)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	postForm(t, s, "/voice/incoming", url.Values{"CallSid": {"CA1"}, "From": {"+4420"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active_calls":1`)
}
