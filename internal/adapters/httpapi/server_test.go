package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konvo/konvo/pkg/domain"
)

type fakeHandler struct {
	ch      domain.Channel
	text    string
	replies []domain.OutboundMessage
	err     error
}

func (f *fakeHandler) HandleMessage(_ context.Context, ch domain.Channel, text string) ([]domain.OutboundMessage, error) {
	f.ch = ch
	f.text = text
	return f.replies, f.err
}

type recordingMessenger struct {
	sent []domain.OutboundMessage
}

func (m *recordingMessenger) Send(_ context.Context, _ domain.Channel, msg domain.OutboundMessage) error {
	m.sent = append(m.sent, msg)
	return nil
}

func TestWebhook_RoundTrip(t *testing.T) {
	h := &fakeHandler{replies: []domain.OutboundMessage{
		{Content: "Welcome!"},
		{Content: "Enter the amount:"},
	}}
	srv := httptest.NewServer(NewServer(h).Handler("/metrics"))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/webhook/whatsapp", "application/json",
		strings.NewReader(`{"identifier":"+5511999","text":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Replies []domain.OutboundMessage `json:"replies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, h.replies, body.Replies)

	assert.Equal(t, domain.Channel{Type: "whatsapp", Identifier: "+5511999"}, h.ch)
	assert.Equal(t, "hi", h.text)
}

func TestWebhook_MissingIdentifier(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeHandler{}).Handler(""))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/webhook/whatsapp", "application/json",
		strings.NewReader(`{"text":"hi"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhook_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeHandler{}).Handler(""))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/webhook/whatsapp", "application/json",
		strings.NewReader(`{not json`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhook_HandlerErrorIs500(t *testing.T) {
	h := &fakeHandler{err: errors.New("store down")}
	srv := httptest.NewServer(NewServer(h).Handler(""))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/webhook/telegram", "application/json",
		strings.NewReader(`{"identifier":"42","text":"hi"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestWebhook_PushesThroughMessenger(t *testing.T) {
	h := &fakeHandler{replies: []domain.OutboundMessage{{Content: "hello"}}}
	m := &recordingMessenger{}
	srv := httptest.NewServer(NewServer(h, WithMessenger(m)).Handler(""))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/webhook/whatsapp", "application/json",
		strings.NewReader(`{"identifier":"+1","text":"hi"}`))
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, m.sent, 1)
	assert.Equal(t, "hello", m.sent[0].Content)
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeHandler{}).Handler(""))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeHandler{}).Handler("/metrics"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
