package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Z-testacc/ActiLeap/internal/auth"
	"github.com/Z-testacc/ActiLeap/internal/domain"
)

func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createSession(w, r)
	case http.MethodGet:
		h.listSessions(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) sessionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	parts := splitPath(rest)

	switch {
	case len(parts) == 2 && parts[1] == "participants" && r.Method == http.MethodPost:
		h.joinSession(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown route")
	}
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	sessionID, err := h.service.CreateSession(r.Context(), domain.CreateSessionInput{
		HostID:       claims.Subject,
		HostName:     req.HostName,
		HostPhotoURL: req.HostPhotoURL,
		WorkoutTitle: req.WorkoutTitle,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, CreateSessionResponse{SessionID: sessionID})
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireScope(w, r, auth.ScopeWorkoutsRead, auth.ScopeWorkoutsWrite); !ok {
		return
	}

	sessions, err := h.service.Sessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, toSessionView(session))
	}
	writeJSON(w, http.StatusOK, ListSessionsResponse{Items: items})
}

func (h *Handler) joinSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	claims, ok := requireScope(w, r, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}

	var req JoinSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	err := h.service.JoinSession(r.Context(), sessionID, domain.SessionParticipant{
		UserID:      claims.Subject,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSessionRequest is the payload for POST /v1/sessions.
type CreateSessionRequest struct {
	HostName     string `json:"host_name"`
	HostPhotoURL string `json:"host_photo_url"`
	WorkoutTitle string `json:"workout_title"`
}

// Validate ensures request correctness.
func (r CreateSessionRequest) Validate() error {
	if strings.TrimSpace(r.WorkoutTitle) == "" {
		return errors.New("workout_title is required")
	}
	return nil
}

// CreateSessionResponse describes the create-session response.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// JoinSessionRequest is the payload for POST /v1/sessions/{id}/participants.
type JoinSessionRequest struct {
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
}

// ParticipantView exposes one session participant.
type ParticipantView struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// SessionView exposes one group workout session.
type SessionView struct {
	SessionID    string            `json:"session_id"`
	HostID       string            `json:"host_id"`
	HostName     string            `json:"host_name"`
	HostPhotoURL string            `json:"host_photo_url,omitempty"`
	WorkoutTitle string            `json:"workout_title"`
	StartTime    time.Time         `json:"start_time"`
	Status       string            `json:"status"`
	Participants []ParticipantView `json:"participants"`
}

// ListSessionsResponse packages session listings.
type ListSessionsResponse struct {
	Items []SessionView `json:"items"`
}

func toSessionView(session domain.WorkoutSession) SessionView {
	participants := make([]ParticipantView, 0, len(session.Participants))
	for _, p := range session.Participants {
		participants = append(participants, ParticipantView(p))
	}
	return SessionView{
		SessionID:    session.ID,
		HostID:       session.HostID,
		HostName:     session.HostName,
		HostPhotoURL: session.HostPhotoURL,
		WorkoutTitle: session.WorkoutTitle,
		StartTime:    session.StartTime,
		Status:       string(session.Status),
		Participants: participants,
	}
}
