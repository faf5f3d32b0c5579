package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/alexanderramin/focussync/internal/contract"
	"github.com/alexanderramin/focussync/internal/domain"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeStatus(w, r, http.StatusOK)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Toggle(r.Context()); err != nil {
		s.engineError(w, err)
		return
	}
	s.writeStatus(w, r, http.StatusOK)
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	var req contract.PreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Empty() {
		writeError(w, http.StatusBadRequest, "minutes or deep_breath_enabled is required")
		return
	}
	if req.Minutes != nil {
		if err := s.session.SetMinutes(r.Context(), *req.Minutes); err != nil {
			s.engineError(w, err)
			return
		}
	}
	if req.DeepBreathEnabled != nil {
		if err := s.session.SetDeepBreathEnabled(r.Context(), *req.DeepBreathEnabled); err != nil {
			s.engineError(w, err)
			return
		}
	}
	s.writeStatus(w, r, http.StatusOK)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if s.cmds == nil {
		writeError(w, http.StatusServiceUnavailable, "widget commands are not configured")
		return
	}
	var req contract.CommandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	action := strings.ToLower(strings.TrimSpace(req.Action))
	if !domain.ValidCommandActions[action] {
		writeError(w, http.StatusBadRequest, "action must be start or stop")
		return
	}
	cmd, err := s.cmds.Enqueue(r.Context(), domain.CommandAction(action), "http")
	if err != nil {
		s.logger.Error("enqueueing command", "error", err)
		writeError(w, http.StatusInternalServerError, "enqueueing command failed")
		return
	}
	writeJSON(w, http.StatusAccepted, contract.CommandResponse{
		ID:       cmd.ID,
		Action:   string(cmd.Action),
		IssuedAt: cmd.IssuedAt,
	})
}

func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, status int) {
	v, err := s.session.View(r.Context())
	if err != nil {
		s.engineError(w, err)
		return
	}
	writeJSON(w, status, contract.NewSessionStatus(v))
}

func (s *Server) engineError(w http.ResponseWriter, err error) {
	s.logger.Warn("session engine unavailable", "error", err)
	writeError(w, http.StatusServiceUnavailable, "session engine unavailable")
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, contract.ErrorResponse{Error: msg})
}
