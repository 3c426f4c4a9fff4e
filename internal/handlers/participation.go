package handlers

import (
	"time"

	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/piparkaq/hackboard/internal/app"
	"github.com/piparkaq/hackboard/internal/metrics"
	"github.com/piparkaq/hackboard/internal/store"
)

type ParticipationHandler struct {
	service *app.Service
}

func NewParticipationHandler(service *app.Service) *ParticipationHandler {
	return &ParticipationHandler{
		service: service,
	}
}

// resolveUserID prefers the authenticated identity; with auth disabled
// the caller supplies the user id in the body.
func (h *ParticipationHandler) resolveUserID(r *http.Request, bodyUserID string) (string, error) {
	if !h.service.Config.Server.EnableAuth {
		return bodyUserID, nil
	}
	user, err := h.service.IdentityFromRequest(r)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (h *ParticipationHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			"200",
		).Observe(duration)
	}()
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	contestID := r.PathValue("contest_id")
	if contestID == "" {
		logger.Error.Printf("Failed to extract contest from path: %s", r.URL.Path)
		http.Error(w, "Invalid contest", http.StatusBadRequest)
		return
	}

	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, err := h.resolveUserID(r, body.UserID)
	if err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if userID == "" {
		http.Error(w, "Invalid user id specified", http.StatusBadRequest)
		return
	}

	participant, err := h.service.JoinContest(userID, contestID, time.Now())
	if err != nil {
		if store.IsConflict(err) {
			metrics.JoinsTotal.WithLabelValues(contestID, "conflict").Inc()
		}
		writeError(w, err)
		return
	}

	metrics.JoinsTotal.WithLabelValues(contestID, "joined").Inc()

	writeJSON(w, http.StatusCreated, participant)
}

func (h *ParticipationHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	participantID := r.PathValue("participant_id")
	if participantID == "" {
		http.Error(w, "Invalid participant", http.StatusBadRequest)
		return
	}

	if err := h.service.LeaveContest(participantID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *ParticipationHandler) HandleUserParticipations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	userID := r.PathValue("user_id")
	if userID == "" {
		http.Error(w, "Invalid user", http.StatusBadRequest)
		return
	}

	participations, err := h.service.Store.ListUserParticipations(userID)
	if err != nil {
		logger.Error.Printf("Failed to list participations: %v", err)
		http.Error(w, "Failed to list participations", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": participations,
	})
}

func (h *ParticipationHandler) HandleContestParticipants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	contestID := r.PathValue("contest_id")
	if contestID == "" {
		http.Error(w, "Invalid contest", http.StatusBadRequest)
		return
	}

	participants, err := h.service.Store.ListContestParticipants(contestID)
	if err != nil {
		logger.Error.Printf("Failed to list participants: %v", err)
		http.Error(w, "Failed to list participants", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": participants,
	})
}
