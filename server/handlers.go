package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sirinut/regibot/agent/engine"
	statex "github.com/sirinut/regibot/agent/state"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

type clearResponse struct {
	SessionID string `json:"session_id"`
	Cleared   bool   `json:"cleared"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	st, err := s.sessions.Load(r.Context(), sessionID)
	if err != nil && !errors.Is(err, statex.ErrStateNotFound) {
		log.Error().Err(err).Str("session_id", sessionID).Msg("load session failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load session"})
		return
	}

	reply, st, err := s.engine.ProcessTurn(r.Context(), req.Message, st)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidMessage) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("process turn failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to process message"})
		return
	}

	if err := s.sessions.Save(r.Context(), sessionID, st); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("save session failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to save session"})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply, SessionID: sessionID})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session_id is required"})
		return
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.sessions.Delete(r.Context(), sessionID); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("clear session failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to clear session"})
		return
	}
	s.dropSessionLock(sessionID)

	writeJSON(w, http.StatusOK, clearResponse{SessionID: sessionID, Cleared: true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response failed")
	}
}
