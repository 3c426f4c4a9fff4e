package handlers

import (
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/piparkaq/hackboard/internal/app"
)

type LeaderboardHandler struct {
	service *app.Service
}

func NewLeaderboardHandler(service *app.Service) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
	}
}

func (h *LeaderboardHandler) HandlePrizes(w http.ResponseWriter, r *http.Request) {
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
		logger.Error.Printf("Failed to extract contest from path: %s", r.URL.Path)
		http.Error(w, "Invalid contest", http.StatusBadRequest)
		return
	}

	prizes, err := h.service.ContestPrizes(contestID)
	if err != nil {
		logger.Error.Printf("Failed to fetch prizes for contest %s: %v", contestID, err)
		http.Error(w, "Failed to fetch prizes", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prizes": prizes,
	})
}

func (h *LeaderboardHandler) HandleWinners(w http.ResponseWriter, r *http.Request) {
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

	winners, err := h.service.ContestWinners(contestID)
	if err != nil {
		logger.Error.Printf("Failed to fetch winners for contest %s: %v", contestID, err)
		http.Error(w, "Failed to fetch winners", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"winners": winners,
	})
}

func (h *LeaderboardHandler) HandleSeasonLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	seasonID := r.PathValue("season_id")
	if seasonID == "" {
		http.Error(w, "Invalid season", http.StatusBadRequest)
		return
	}

	name, err := h.service.SeasonName(seasonID)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.service.SeasonLeaderboard(seasonID)
	if err != nil {
		logger.Error.Printf("Failed to fetch leaderboard for season %s: %v", seasonID, err)
		http.Error(w, "Failed to fetch leaderboard", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"season": name,
		"rows":   entries,
	})
}

func (h *LeaderboardHandler) HandleSeasonRebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	seasonID := r.PathValue("season_id")
	if seasonID == "" {
		http.Error(w, "Invalid season", http.StatusBadRequest)
		return
	}

	written, err := h.service.RebuildSeasonLeaderboard(seasonID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows_written": written,
	})
}
