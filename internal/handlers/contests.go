package handlers

import (
	"strconv"
	"time"

	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/piparkaq/hackboard/internal/app"
	"github.com/piparkaq/hackboard/internal/metrics"
	"github.com/piparkaq/hackboard/internal/models"
)

type ContestHandler struct {
	service *app.Service
}

func NewContestHandler(service *app.Service) *ContestHandler {
	return &ContestHandler{
		service: service,
	}
}

type contestListRow struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Subtitle         string `json:"subtitle"`
	BannerURL        string `json:"banner_url"`
	Difficulty       string `json:"difficulty"`
	Status           string `json:"status"`
	Phase            string `json:"phase"`
	StartDate        int64  `json:"start_date"`
	EndDate          int64  `json:"end_date"`
	ParticipantCount int64  `json:"participant_count"`
	PrizeTotal       int64  `json:"prize_total"`
}

func (h *ContestHandler) HandleContestList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			"200",
		).Observe(duration)
	}()
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	stats, err := h.service.Store.ListContestStats()
	if err != nil {
		logger.Error.Printf("Failed to list contests: %v", err)
		http.Error(w, "Failed to list contests", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	rows := make([]contestListRow, 0, len(stats))
	for _, s := range stats {
		contest := models.Contest{StartDate: s.StartDate, EndDate: s.EndDate}
		rows = append(rows, contestListRow{
			ID:               s.ID,
			Title:            s.Title,
			Subtitle:         s.Subtitle,
			BannerURL:        s.BannerURL,
			Difficulty:       s.Difficulty,
			Status:           s.Status,
			Phase:            string(contest.PhaseAt(now)),
			StartDate:        s.StartDate,
			EndDate:          s.EndDate,
			ParticipantCount: s.ParticipantCount,
			PrizeTotal:       s.PrizeTotal,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": rows,
	})
}

func (h *ContestHandler) HandleContestCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	var contest models.Contest
	if err := json.NewDecoder(r.Body).Decode(&contest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.CreateContest(&contest); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &contest)
}

func (h *ContestHandler) HandleContestGet(w http.ResponseWriter, r *http.Request) {
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

	contest, err := h.service.Store.GetContest(contestID)
	if err != nil {
		writeError(w, err)
		return
	}

	prizes, err := h.service.ContestPrizes(contestID)
	if err != nil {
		writeError(w, err)
		return
	}

	pages, err := h.service.Store.ListContestPages(contestID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contest": contest,
		"phase":   contest.PhaseAt(time.Now()),
		"prizes":  prizes,
		"pages":   pages,
	})
}

func (h *ContestHandler) HandleContestUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	contestID := r.PathValue("contest_id")
	if contestID == "" {
		http.Error(w, "Invalid contest", http.StatusBadRequest)
		return
	}

	var contest models.Contest
	if err := json.NewDecoder(r.Body).Decode(&contest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	contest.ID = contestID

	if err := h.service.UpdateContest(&contest); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &contest)
}

func (h *ContestHandler) HandleContestArchive(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "Invalid contest", http.StatusBadRequest)
		return
	}

	if err := h.service.ArchiveContest(contestID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *ContestHandler) HandlePageCreate(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "Invalid contest", http.StatusBadRequest)
		return
	}

	// The contest must exist and not be soft-deleted.
	if _, err := h.service.Store.GetContest(contestID); err != nil {
		writeError(w, err)
		return
	}

	var page models.ContestPage
	if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	page.ContestID = contestID

	if err := page.Validate(); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Store.CreateContestPage(&page); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &page)
}

func (h *ContestHandler) HandlePageDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	pageID, err := strconv.ParseInt(r.PathValue("page_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid page id", http.StatusBadRequest)
		return
	}

	if err := h.service.Store.DeleteContestPage(pageID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *ContestHandler) HandleContestDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	contestID := r.PathValue("contest_id")
	if contestID == "" {
		http.Error(w, "Invalid contest", http.StatusBadRequest)
		return
	}

	if err := h.service.RemoveContest(contestID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
