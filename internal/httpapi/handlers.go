// SPDX-License-Identifier: GPL-3.0-or-later

package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dialtonehq/callcheck/internal/pbx"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCheckConnection(w http.ResponseWriter, r *http.Request) {
	dialed := r.URL.Query().Get("dialed_number")
	if dialed == "" {
		writeError(w, http.StatusBadRequest, "dialed_number is required")
		return
	}
	callerID := r.URL.Query().Get("caller_id")

	res, err := s.checker.Check(r.Context(), dialed, callerID)
	if err != nil {
		s.Errorf("check connection for '%s': %v", dialed, err)
		s.writeSwitchError(w, err)
		return
	}

	s.Debugf("check '%s': connected=%v channel='%s'", dialed, res.Connected, res.ChannelID)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDisconnectCall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channel_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChannelID == "" {
		writeError(w, http.StatusBadRequest, "channel_id is required")
		return
	}

	ok, msg, err := s.checker.Disconnect(r.Context(), req.ChannelID)
	if err != nil {
		s.Errorf("disconnect call '%s': %v", req.ChannelID, err)
		s.writeSwitchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": msg, "success": ok})
}

func (s *Server) handleMockConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Numbers []string `json:"numbers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Numbers) == 0 {
		writeError(w, http.StatusBadRequest, "numbers is required")
		return
	}

	added := make([]string, 0, len(req.Numbers))
	for _, token := range req.Numbers {
		keys, err := s.registry.Put(token)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		added = append(added, keys...)
	}

	s.Infof("added %d mock connections", len(added))
	writeJSON(w, http.StatusOK, map[string]any{
		"message":            fmt.Sprintf("Mock connections added for %d numbers", len(added)),
		"numbers":            added,
		"expires_in_minutes": int(s.registry.TTL().Minutes()),
	})
}

func (s *Server) handleClearMocks(w http.ResponseWriter, _ *http.Request) {
	count := s.registry.Clear()

	s.Infof("cleared %d mock connections", count)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Cleared %d mock connections", count),
	})
}

func (s *Server) handleMockStatus(w http.ResponseWriter, _ *http.Request) {
	entries := s.registry.Status()

	writeJSON(w, http.StatusOK, map[string]any{
		"active_mocks":    len(entries),
		"mocks":           entries,
		"timeout_minutes": int(s.registry.TTL().Minutes()),
	})
}

// writeSwitchError maps transport errors to responses: connect failures are
// service-unavailable, anything else is an opaque internal error.
func (s *Server) writeSwitchError(w http.ResponseWriter, err error) {
	if errors.Is(err, pbx.ErrConnect) {
		writeError(w, http.StatusServiceUnavailable, "Failed to connect to Asterisk")
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
