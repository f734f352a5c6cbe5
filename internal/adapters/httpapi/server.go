// Package httpapi exposes the inbound webhook: channel adapters POST user
// messages here and receive the outbound payloads to deliver. When a
// messenger is configured the server also pushes the payloads through it.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/konvo/konvo/internal/logging"
	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/ports"
)

// MessageHandler is the engine surface the server needs.
type MessageHandler interface {
	HandleMessage(ctx context.Context, ch domain.Channel, text string) ([]domain.OutboundMessage, error)
}

// Server handles inbound webhook traffic.
type Server struct {
	handler   MessageHandler
	messenger ports.Messenger
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMessenger enables push delivery of outbound payloads.
func WithMessenger(m ports.Messenger) Option {
	return func(s *Server) { s.messenger = m }
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates the webhook server.
func NewServer(handler MessageHandler, opts ...Option) *Server {
	s := &Server{
		handler: handler,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router: the webhook, a health probe and the
// prometheus endpoint.
func (s *Server) Handler(metricsPath string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/webhook/{channel}", s.handleWebhook)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if metricsPath != "" {
		r.Handle(metricsPath, promhttp.Handler())
	}
	return r
}

type webhookRequest struct {
	Identifier string `json:"identifier"`
	Text       string `json:"text"`
}

type webhookResponse struct {
	Replies []domain.OutboundMessage `json:"replies"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var body webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Identifier == "" {
		http.Error(w, "identifier is required", http.StatusBadRequest)
		return
	}

	ch := domain.Channel{
		Type:       chi.URLParam(r, "channel"),
		Identifier: body.Identifier,
	}

	replies, err := s.handler.HandleMessage(r.Context(), ch, body.Text)
	if err != nil {
		s.logger.Error("message handling failed", "session_key", ch.Key(), "err", err)
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}

	if s.messenger != nil {
		for _, msg := range replies {
			if err := s.messenger.Send(r.Context(), ch, msg); err != nil {
				s.logger.Warn("outbound delivery failed", "session_key", ch.Key(), "err", err)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(webhookResponse{Replies: replies}); err != nil {
		s.logger.Warn("response encode failed", "err", err)
	}
}
