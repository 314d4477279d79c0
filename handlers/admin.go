package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"teamhub/database"
	"teamhub/logger"
	"teamhub/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminHandler struct {
	log *logger.Logger
}

func NewAdminHandler(log *logger.Logger) *AdminHandler {
	return &AdminHandler{log: log}
}

type userListResponse struct {
	Users      []models.User `json:"users"`
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
}

type toggleUserActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// ListUsers returns a page of users ordered by creation time.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 20)
	if perPage > 100 {
		perPage = 100
	}

	db := database.GetDB().WithContext(r.Context())

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		h.log.Errorw("user count failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong!")
		return
	}

	var users []models.User
	err := db.Order("created_at ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error
	if err != nil {
		h.log.Errorw("user list failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong!")
		return
	}

	respondWithJSON(w, http.StatusOK, userListResponse{
		Users:      users,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
	})
}

// ToggleUserActive flips a user's active flag. Deactivated users fail
// authentication on their next request.
func (h *AdminHandler) ToggleUserActive(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req toggleUserActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	db := database.GetDB().WithContext(r.Context())

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.Errorw("user lookup failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong!")
		return
	}

	if err := db.Model(&user).Update("is_active", req.IsActive).Error; err != nil {
		h.log.Errorw("user update failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong!")
		return
	}

	h.log.Infow("user active flag toggled", "user_id", userID, "is_active", req.IsActive)
	respondWithSuccess(w)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
