package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/consultport/backend/internal/domain"
	"github.com/consultport/backend/internal/middleware"
	"github.com/consultport/backend/internal/usecase"
	"github.com/consultport/backend/pkg/oauth"
	"github.com/consultport/backend/pkg/tracker"
)

type Handler struct {
	authUsecase    *usecase.AuthUsecase
	trackerUsecase *usecase.TrackerUsecase
	userRepo       domain.UserRepository
}

func NewHandler(auth *usecase.AuthUsecase, trackerUC *usecase.TrackerUsecase, userRepo domain.UserRepository) *Handler {
	return &Handler{
		authUsecase:    auth,
		trackerUsecase: trackerUC,
		userRepo:       userRepo,
	}
}

var validate = validator.New()

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeValid decodes the request body into req and runs struct validation.
// It writes the error response itself and reports whether the request was
// usable.
func decodeValid(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("Invalid field: %s", strings.ToLower(verrs[0].Field()))
	}
	return "Invalid request body"
}

// writeTrackerError maps tracker usecase failures onto portal responses.
func writeTrackerError(w http.ResponseWriter, err error) {
	var oauthErr *oauth.Error
	var apiErr *tracker.APIError

	switch {
	case errors.Is(err, usecase.ErrTrackerNotConnected):
		writeError(w, http.StatusConflict, "Tracker account not connected")
	case errors.Is(err, usecase.ErrReauthRequired):
		writeError(w, http.StatusUnauthorized, "Tracker authorization expired, please reconnect your account")
	case errors.As(err, &oauthErr) && oauthErr.Kind == oauth.KindConfiguration:
		writeError(w, http.StatusInternalServerError, "Tracker integration is not configured")
	case errors.As(err, &apiErr):
		writeError(w, apiErr.StatusCode, apiErr.Message)
	default:
		writeError(w, http.StatusBadGateway, "Tracker request failed")
	}
}

// Auth handlers

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"`
}

type authResponse struct {
	User   interface{} `json:"user"`
	Tokens interface{} `json:"tokens"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeValid(w, r, &req) {
		return
	}

	user, tokens, err := h.authUsecase.Register(req.Email, req.Password, req.Name)
	if err == usecase.ErrEmailExists {
		writeError(w, http.StatusConflict, "Email already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: user, Tokens: tokens})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeValid(w, r, &req) {
		return
	}

	user, tokens, err := h.authUsecase.Login(req.Email, req.Password)
	if err == usecase.ErrInvalidCredentials {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeValid(w, r, &req) {
		return
	}

	tokens, err := h.authUsecase.RefreshToken(req.RefreshToken)
	if err == usecase.ErrInvalidToken || err == usecase.ErrTokenExpired {
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to refresh token")
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeValid(w, r, &req) {
		return
	}

	h.authUsecase.Logout(req.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authUsecase.GetUserByID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
