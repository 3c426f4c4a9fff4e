package handlers

import (
	"bytes"
	"io"
	"time"

	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/piparkaq/hackboard/internal/app"
	"github.com/piparkaq/hackboard/internal/metrics"
	"github.com/piparkaq/hackboard/internal/models"
)

type SubmissionHandler struct {
	service *app.Service
}

func NewSubmissionHandler(service *app.Service) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
	}
}

func (h *SubmissionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error.Printf("Failed to read request body: %v", err)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	logger.Debug.Printf("Received request body: %s", string(body))

	r.Body = io.NopCloser(bytes.NewBuffer(body))

	var submission models.Submission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	submission.ContestID = contestID

	if h.service.Config.Server.EnableAuth {
		user, err := h.service.IdentityFromRequest(r)
		if err != nil {
			logger.Error.Printf("Auth failed: %v", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		submission.UserID = user.ID
	}
	if submission.UserID == "" {
		http.Error(w, "Invalid user id specified", http.StatusBadRequest)
		return
	}

	if err := h.service.CreateSubmission(&submission); err != nil {
		writeError(w, err)
		return
	}

	metrics.SubmissionsTotal.WithLabelValues(
		submission.ContestID,
		string(submission.Status),
	).Inc()

	writeJSON(w, http.StatusCreated, &submission)
}

func (h *SubmissionHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	submissionID := r.PathValue("submission_id")
	if submissionID == "" {
		http.Error(w, "Invalid submission", http.StatusBadRequest)
		return
	}

	var body struct {
		Description    *string                  `json:"description"`
		TeamMembers    []string                 `json:"team_members"`
		SourceCodeLink *string                  `json:"source_code_link"`
		DeploymentLink *string                  `json:"deployment_link"`
		Status         *models.SubmissionStatus `json:"submission_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	submission, err := h.service.EditSubmission(submissionID, app.SubmissionEdit{
		Description:    body.Description,
		TeamMembers:    body.TeamMembers,
		SourceCodeLink: body.SourceCodeLink,
		DeploymentLink: body.DeploymentLink,
		Status:         body.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, submission)
}

func (h *SubmissionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	submissionID := r.PathValue("submission_id")
	if submissionID == "" {
		http.Error(w, "Invalid submission", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteSubmission(submissionID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *SubmissionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	submissionID := r.PathValue("submission_id")
	if submissionID == "" {
		http.Error(w, "Invalid submission", http.StatusBadRequest)
		return
	}

	detail, err := h.service.Store.GetSubmission(submissionID)
	if err != nil {
		writeError(w, err)
		return
	}

	var teamMembers []string
	if err := json.Unmarshal([]byte(detail.TeamMembersRaw), &teamMembers); err != nil {
		teamMembers = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"submission":   detail,
		"team_members": teamMembers,
	})
}

func (h *SubmissionHandler) HandleUserSubmissions(w http.ResponseWriter, r *http.Request) {
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

	submissions, err := h.service.Store.ListUserSubmissions(userID)
	if err != nil {
		logger.Error.Printf("Failed to list user submissions: %v", err)
		http.Error(w, "Failed to list submissions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": submissions,
	})
}

func (h *SubmissionHandler) HandleContestSubmissions(w http.ResponseWriter, r *http.Request) {
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

	submissions, err := h.service.Store.ListContestSubmissions(contestID)
	if err != nil {
		logger.Error.Printf("Failed to list contest submissions: %v", err)
		http.Error(w, "Failed to list submissions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": submissions,
	})
}
