// Package api provides HTTP handlers and the main API server logic for
// CoachPipe.
//
// It exposes RESTful endpoints for user registration, onboarding chat,
// coaching chat, and coach style management. The API is the presentation
// collaborator: it routes onboarding-state messages to the conversation
// flow and main-chat messages to the coach engine, and it is responsible
// for pushing completed onboarding answers to the persistence layer.
package api

import (
	"log/slog"
	"net/http"

	"github.com/BTreeMap/CoachPipe/internal/coach"
	"github.com/BTreeMap/CoachPipe/internal/flow"
	"github.com/BTreeMap/CoachPipe/internal/store"
)

// Server wires the HTTP surface to the conversation flow, coach engine,
// and persistence store.
type Server struct {
	store  store.Store
	flow   *flow.OnboardingFlow
	engine *coach.Engine
}

// NewServer creates an API server with its collaborators.
func NewServer(st store.Store, onboardingFlow *flow.OnboardingFlow, engine *coach.Engine) *Server {
	return &Server{store: st, flow: onboardingFlow, engine: engine}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", s.createUserHandler)
	mux.HandleFunc("PUT /users/{id}/style", s.updateStyleHandler)
	mux.HandleFunc("POST /chat/{id}/start", s.startChatHandler)
	mux.HandleFunc("POST /chat/{id}/messages", s.chatMessageHandler)
	mux.HandleFunc("GET /chat/{id}/history", s.historyHandler)
	mux.HandleFunc("POST /style/preview", s.stylePreviewHandler)
	return mux
}

// Run starts the HTTP server on the given address and blocks.
func (s *Server) Run(addr string) error {
	slog.Info("Server.Run: CoachPipe API listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}
