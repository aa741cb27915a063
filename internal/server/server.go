// Package server implements the development backend: a chi HTTP server
// that owns conversations and workflow definitions and answers a send
// with a scripted progress-event stream. It exists so the engine and
// the CLI can run end-to-end without the production backend, and it is
// the target of the integration tests.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quorumlabs/quorum/internal/logging"
	"github.com/quorumlabs/quorum/pkg/adapters/memory"
	"github.com/quorumlabs/quorum/pkg/domain"
	"github.com/quorumlabs/quorum/pkg/ports"
)

// Server simulates the multi-stage deliberation backend.
type Server struct {
	store     ports.ConversationStore
	workflows ports.WorkflowLoader
	script    Script
	delay     time.Duration
	logger    *slog.Logger
	registry  *prometheus.Registry
}

// Option configures the Server.
type Option func(*Server)

// WithStore replaces the conversation store (default: in-memory).
func WithStore(store ports.ConversationStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithWorkflows replaces the workflow loader (default: the built-in
// three-stage workflow).
func WithWorkflows(loader ports.WorkflowLoader) Option {
	return func(s *Server) {
		s.workflows = loader
	}
}

// WithScript replaces the event script driving streamed sends.
func WithScript(script Script) Option {
	return func(s *Server) {
		s.script = script
	}
}

// WithStageDelay inserts a pause between streamed events so a human
// watching the CLI sees stages progress (default: none).
func WithStageDelay(d time.Duration) Option {
	return func(s *Server) {
		s.delay = d
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates the server and validates its embedded OpenAPI document.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		script:   DefaultScript,
		logger:   logging.NewNop(),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}
	if s.workflows == nil {
		loader, err := memory.NewFromWorkflows(DefaultWorkflow())
		if err != nil {
			return nil, err
		}
		s.workflows = loader
	}
	if err := validateSpec(); err != nil {
		return nil, fmt.Errorf("embedded OpenAPI document is invalid: %w", err)
	}
	s.registry.MustRegister(collectors.NewGoCollector())
	return s, nil
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/openapi.yaml", s.handleSpec)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Get("/workflows/{workflowID}", s.handleGetWorkflow)
	r.Post("/conversations", s.handleCreateConversation)
	r.Get("/conversations/{conversationID}", s.handleGetConversation)
	r.Post("/conversations/{conversationID}/messages", s.handleSendMessage)

	return r
}

// Registry exposes the metrics registry so embedders can add their own
// collectors.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"status":"ok"}`)
}

func (s *Server) handleSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(openapiSpec)
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workflowID")
	workflow, err := s.workflows.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			http.Error(w, "workflow not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, workflow)
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	conv := domain.NewConversation(uuid.NewString())
	if err := s.store.Save(r.Context(), &conv); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, conv)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")
	conv, err := s.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			http.Error(w, "conversation not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, conv)
}

// handleSendMessage answers with the scripted progress stream: one
// "data: {json}" line per event, flushed as it happens.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req ports.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	workflow, err := s.workflows.Get(r.Context(), req.WorkflowID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			http.Error(w, "workflow not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	frames := s.script(*workflow, req.Content)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for _, frame := range frames {
		if r.Context().Err() != nil {
			return
		}
		payload, err := json.Marshal(frame)
		if err != nil {
			s.logger.Error("failed to marshal script frame", "err", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
	}

	s.recordTranscript(r, conversationID, req.Content, frames)
}

// recordTranscript persists the user message and a final assistant
// snapshot so GET /conversations reflects the completed send.
func (s *Server) recordTranscript(r *http.Request, conversationID, content string, frames []Frame) {
	ctx := r.Context()
	conv, err := s.store.Load(ctx, conversationID)
	if err != nil {
		c := domain.NewConversation(conversationID)
		conv = &c
	}
	conv.Messages = append(conv.Messages, domain.NewUserMessage(content))
	conv.Messages = append(conv.Messages, assistantFromFrames(frames))
	if title := titleFromFrames(frames); title != "" && conv.Title == "" {
		conv.Title = title
	}
	if err := s.store.Save(ctx, conv); err != nil {
		s.logger.Error("failed to persist transcript", "conversation", conversationID, "err", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
