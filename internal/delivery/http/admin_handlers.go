package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/consultport/backend/internal/domain"
	"github.com/consultport/backend/internal/middleware"
	"github.com/consultport/backend/pkg/tracker"
)

// Customer handlers (exposed as /clients, matching the tracker API naming)

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	result, err := h.trackerUsecase.ListCustomers(r.Context(), userID, page, perPage)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
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

	customer, uerr := h.trackerUsecase.GetCustomer(r.Context(), userID, id)
	if uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

type createClientRequest struct {
	Name     string `json:"name" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
	Address  string `json:"address"`
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createClientRequest
	if !decodeValid(w, r, &req) {
		return
	}

	customer, err := h.trackerUsecase.CreateCustomer(r.Context(), userID, tracker.CreateCustomerInput{
		Name:     req.Name,
		Currency: req.Currency,
		Address:  req.Address,
	})
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
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

	var input tracker.UpdateCustomerInput
	if !decodeValid(w, r, &input) {
		return
	}

	customer, uerr := h.trackerUsecase.UpdateCustomer(r.Context(), userID, id, input)
	if uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) ArchiveClient(w http.ResponseWriter, r *http.Request) {
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

	customer, uerr := h.trackerUsecase.ArchiveCustomer(r.Context(), userID, id)
	if uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Project handlers

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	result, err := h.trackerUsecase.ListProjects(r.Context(), userID, page, perPage)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
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

	project, uerr := h.trackerUsecase.GetProject(r.Context(), userID, id)
	if uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

type createProjectRequest struct {
	Name       string  `json:"name" validate:"required"`
	ClientID   int64   `json:"client_id" validate:"required"`
	HourlyRate float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
	Notes      string  `json:"notes"`
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createProjectRequest
	if !decodeValid(w, r, &req) {
		return
	}

	project, err := h.trackerUsecase.CreateProject(r.Context(), userID, tracker.CreateProjectInput{
		Name:       req.Name,
		ClientID:   req.ClientID,
		HourlyRate: req.HourlyRate,
		Notes:      req.Notes,
	})
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
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

	var input tracker.UpdateProjectInput
	if !decodeValid(w, r, &input) {
		return
	}

	project, uerr := h.trackerUsecase.UpdateProject(r.Context(), userID, id, input)
	if uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *Handler) ArchiveProject(w http.ResponseWriter, r *http.Request) {
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

	project, uerr := h.trackerUsecase.ArchiveProject(r.Context(), userID, id)
	if uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Approval handlers (admin only)

func (h *Handler) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	result, err := h.trackerUsecase.ListSubmittedTimeEntries(r.Context(), adminID, page, perPage)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ApproveTimeEntry(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	entry, uerr := h.trackerUsecase.ApproveTimeEntry(r.Context(), adminID, id)
	if uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) RejectTimeEntry(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}

	entry, uerr := h.trackerUsecase.RejectTimeEntry(r.Context(), adminID, id)
	if uerr != nil {
		writeTrackerError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Admin user handlers

type adminUserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toAdminUser(u *domain.User) adminUserResponse {
	return adminUserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	if limit == 0 {
		limit = 50
	}

	users, total, err := h.userRepo.ListAll(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	var resp []adminUserResponse
	for _, u := range users {
		resp = append(resp, toAdminUser(u))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users":  resp,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=consultant admin"`
}

func (h *Handler) AdminUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req updateRoleRequest
	if !decodeValid(w, r, &req) {
		return
	}

	user, err := h.userRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := h.userRepo.UpdateRole(id, req.Role); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update role")
		return
	}

	user.Role = req.Role
	writeJSON(w, http.StatusOK, toAdminUser(user))
}

func (h *Handler) AdminGetStats(w http.ResponseWriter, r *http.Request) {
	_, total, err := h.userRepo.ListAll(1, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_users": total,
	})
}
