// Package api provides HTTP handlers for CoachPipe endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/BTreeMap/CoachPipe/internal/flow"
	"github.com/BTreeMap/CoachPipe/internal/models"
	"github.com/BTreeMap/CoachPipe/internal/store"
)

// createUserRequest carries the profile form fields and optional coach
// style selection.
type createUserRequest struct {
	Profile    models.UserProfile    `json:"profile"`
	CoachStyle models.CoachStyleName `json:"coach_style,omitempty"`
}

func (s *Server) createUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.createUserHandler: processing create user request")

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.createUserHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	// Validation is all-or-nothing: a rejected profile is never
	// partially applied.
	if err := req.Profile.Validate(); err != nil {
		slog.Warn("Server.createUserHandler: profile validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	coachStyle := models.DefaultCoachStyle()
	if req.CoachStyle != "" {
		coachStyle.Style = req.CoachStyle
		if err := coachStyle.Validate(); err != nil {
			slog.Warn("Server.createUserHandler: coach style validation failed", "error", err, "style", req.CoachStyle)
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
	}

	now := time.Now()
	userData := models.UserData{
		UserID:     store.NewUserID(req.Profile.Name),
		Profile:    req.Profile,
		CoachStyle: coachStyle,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.SaveUserData(userData); err != nil {
		slog.Error("Server.createUserHandler: failed to save user data", "error", err, "userID", userData.UserID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save user data"))
		return
	}

	slog.Info("Server.createUserHandler: user created", "userID", userData.UserID)
	writeJSONResponse(w, http.StatusCreated, models.Success(map[string]string{"user_id": userData.UserID}))
}

// updateStyleRequest carries an explicit coach style change.
type updateStyleRequest struct {
	Style models.CoachStyleName `json:"style"`
}

func (s *Server) updateStyleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	userID := r.PathValue("id")

	var req updateStyleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.updateStyleHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if !models.IsValidCoachStyle(req.Style) {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrInvalidCoachStyle.Error()))
		return
	}

	if err := s.store.UpdateCoachStyle(userID, req.Style); err != nil {
		if err == store.ErrUserNotFound {
			writeJSONResponse(w, http.StatusNotFound, models.Error("User not found"))
			return
		}
		slog.Error("Server.updateStyleHandler: failed to update coach style", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update coach style"))
		return
	}

	slog.Info("Server.updateStyleHandler: coach style updated", "userID", userID, "style", req.Style)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Coach style updated", nil))
}

func (s *Server) startChatHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	slog.Debug("Server.startChatHandler: starting chat", "userID", userID)

	userData, err := s.store.LoadUserData(userID)
	if err != nil {
		slog.Error("Server.startChatHandler: failed to load user data", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load user data"))
		return
	}
	if userData == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("User not found"))
		return
	}

	// Reconciliation policy: persisted onboarding wins. A user whose
	// answers were already saved resumes directly in main chat; the
	// interview never re-runs.
	var reply string
	if userData.Onboarding != nil {
		reply = s.flow.Resume(*userData)
	} else {
		reply = s.flow.Start(*userData)
	}

	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"message": reply}))
}

// chatMessageRequest carries one raw user message.
type chatMessageRequest struct {
	Message string `json:"message"`
}

func (s *Server) chatMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	userID := r.PathValue("id")

	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.chatMessageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.Message == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Message cannot be empty"))
		return
	}

	state, ok := s.flow.State(userID)
	if !ok {
		// No session; the flow returns its sentinel and the caller is
		// told to start over.
		writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"message": flow.SessionNotFoundMessage}))
		return
	}

	if state == models.StateMainChat {
		s.handleCoachingMessage(w, r, userID, req.Message)
		return
	}

	wasComplete := s.flow.IsComplete(userID)
	reply := s.flow.ProcessMessage(userID, req.Message)

	// The moment onboarding completes, push the extracted answers to
	// persistence. A failed save is logged and the conversation
	// proceeds with possibly stale data.
	if !wasComplete && s.flow.IsComplete(userID) {
		if onboarding := s.flow.OnboardingData(userID); onboarding != nil {
			if err := s.store.UpdateOnboarding(userID, *onboarding); err != nil {
				slog.Warn("Server.chatMessageHandler: failed to persist onboarding", "error", err, "userID", userID)
			} else {
				slog.Info("Server.chatMessageHandler: onboarding persisted", "userID", userID)
			}
		}
	}

	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"message": reply}))
}

// handleCoachingMessage routes a main-chat message to the coach engine
// and appends the exchange back into the session history owned by the
// conversation flow.
func (s *Server) handleCoachingMessage(w http.ResponseWriter, r *http.Request, userID, message string) {
	userData, err := s.store.LoadUserData(userID)
	if err != nil || userData == nil {
		slog.Error("Server.handleCoachingMessage: failed to load user data", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load user data"))
		return
	}

	onboarding := s.flow.OnboardingData(userID)
	if onboarding == nil {
		onboarding = userData.Onboarding
	}
	if onboarding == nil {
		// Main chat without onboarding answers should not happen; treat
		// as a lost session rather than a fault.
		slog.Warn("Server.handleCoachingMessage: no onboarding data available", "userID", userID)
		writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"message": flow.SessionNotFoundMessage}))
		return
	}

	history := s.flow.History(userID)
	response := s.engine.Respond(r.Context(), *userData, *onboarding, history, message)
	s.flow.AppendExchange(userID, message, response)

	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"message": response}))
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	history := s.flow.History(userID)
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{"messages": history}))
}

// stylePreviewRequest carries a message to answer in a given style.
type stylePreviewRequest struct {
	Message string                `json:"message"`
	Style   models.CoachStyleName `json:"style"`
}

func (s *Server) stylePreviewHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}

	var req stylePreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.stylePreviewHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.Style == "" {
		req.Style = models.StyleNormal
	}
	if !models.IsValidCoachStyle(req.Style) {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrInvalidCoachStyle.Error()))
		return
	}

	response := s.engine.QuickRespond(r.Context(), req.Message, req.Style)
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"message": response}))
}
