package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/consultport/backend/internal/middleware"
	"github.com/consultport/backend/pkg/tracker"
)

// Tracker connection handlers

func (h *Handler) GetTrackerAuthorizeURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// The user ID doubles as the OAuth state; the frontend sends it back on
	// the callback and Connect verifies it against the session.
	url := h.trackerUsecase.AuthorizationURL(userID.String())
	writeJSON(w, http.StatusOK, map[string]string{"authorize_url": url})
}

type connectRequest struct {
	Code string `json:"code" validate:"required"`
}

func (h *Handler) ConnectTracker(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req connectRequest
	if !decodeValid(w, r, &req) {
		return
	}

	if err := h.trackerUsecase.Connect(r.Context(), userID, req.Code); err != nil {
		writeTrackerError(w, err)
		return
	}

	status, err := h.trackerUsecase.Status(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get connection status")
		return
	}
	writeJSON(w, http.StatusCreated, status)
}

func (h *Handler) GetTrackerStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	status, err := h.trackerUsecase.Status(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get connection status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) DisconnectTracker(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.trackerUsecase.Disconnect(userID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to disconnect tracker")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Time entry handlers

func (h *Handler) ListTimeEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	projectID, _ := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	result, err := h.trackerUsecase.ListTimeEntries(r.Context(), userID, tracker.TimeEntryListOptions{
		From:      r.URL.Query().Get("from"),
		To:        r.URL.Query().Get("to"),
		ProjectID: projectID,
		State:     r.URL.Query().Get("state"),
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GetTimeEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	entry, uerr := h.trackerUsecase.GetTimeEntry(r.Context(), userID, id)
	if uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type createTimeEntryRequest struct {
	SpentDate string  `json:"spent_date" validate:"required,datetime=2006-01-02"`
	Hours     float64 `json:"hours" validate:"required,gt=0,lte=24"`
	Notes     string  `json:"notes"`
	ProjectID int64   `json:"project_id" validate:"required"`
	Billable  bool    `json:"billable"`
}

func (h *Handler) CreateTimeEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createTimeEntryRequest
	if !decodeValid(w, r, &req) {
		return
	}

	entry, err := h.trackerUsecase.CreateTimeEntry(r.Context(), userID, tracker.CreateTimeEntryInput{
		SpentDate: req.SpentDate,
		Hours:     req.Hours,
		Notes:     req.Notes,
		ProjectID: req.ProjectID,
		Billable:  req.Billable,
	})
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) UpdateTimeEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	var input tracker.UpdateTimeEntryInput
	if !decodeValid(w, r, &input) {
		return
	}

	entry, uerr := h.trackerUsecase.UpdateTimeEntry(r.Context(), userID, id, input)
	if uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if uerr := h.trackerUsecase.DeleteTimeEntry(r.Context(), userID, id); uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SubmitTimeEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	entry, uerr := h.trackerUsecase.SubmitTimeEntry(r.Context(), userID, id)
	if uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Expense handlers

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	projectID, _ := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	result, err := h.trackerUsecase.ListExpenses(r.Context(), userID, tracker.ExpenseListOptions{
		From:      r.URL.Query().Get("from"),
		To:        r.URL.Query().Get("to"),
		ProjectID: projectID,
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	expense, uerr := h.trackerUsecase.GetExpense(r.Context(), userID, id)
	if uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

type createExpenseRequest struct {
	SpentDate string  `json:"spent_date" validate:"required,datetime=2006-01-02"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Category  string  `json:"category"`
	Notes     string  `json:"notes"`
	ProjectID int64   `json:"project_id" validate:"required"`
	Billable  bool    `json:"billable"`
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createExpenseRequest
	if !decodeValid(w, r, &req) {
		return
	}

	expense, err := h.trackerUsecase.CreateExpense(r.Context(), userID, tracker.CreateExpenseInput{
		SpentDate: req.SpentDate,
		Amount:    req.Amount,
		Category:  req.Category,
		Notes:     req.Notes,
		ProjectID: req.ProjectID,
		Billable:  req.Billable,
	})
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	var input tracker.UpdateExpenseInput
	if !decodeValid(w, r, &input) {
		return
	}

	expense, uerr := h.trackerUsecase.UpdateExpense(r.Context(), userID, id, input)
	if uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	if uerr := h.trackerUsecase.DeleteExpense(r.Context(), userID, id); uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
