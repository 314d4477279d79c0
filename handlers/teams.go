package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"teamhub/logger"
	"teamhub/middleware"
	"teamhub/models"
	"teamhub/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type TeamHandler struct {
	service *services.TeamService
	log     *logger.Logger
}

func NewTeamHandler(service *services.TeamService, log *logger.Logger) *TeamHandler {
	return &TeamHandler{service: service, log: log}
}

type createTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type toggleActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type joinTeamRequest struct {
	TeamCode string `json:"team_code"`
}

type reviewJoinRequest struct {
	Action models.JoinRequestStatus `json:"action"`
}

// writeServiceError maps business failures onto their HTTP status;
// anything else is logged and hidden behind a generic 500.
func (h *TeamHandler) writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		respondWithError(w, svcErr.Status, svcErr.Message)
		return
	}
	h.log.Errorw("unexpected service error", "error", err)
	respondWithError(w, http.StatusInternalServerError, "Something went wrong!")
}

func pathUUID(r *http.Request, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	return id, err == nil
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	team, err := h.service.CreateTeam(r.Context(), user, req.Name, req.Description)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	teams, err := h.service.ListMyTeams(r.Context(), user)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, teams)
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	teamID, ok := pathUUID(r, "teamID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	team, err := h.service.GetTeam(r.Context(), teamID, user)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	teamID, ok := pathUUID(r, "teamID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	var req updateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	team, err := h.service.UpdateTeam(r.Context(), teamID, user, req.Name, req.Description)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	teamID, ok := pathUUID(r, "teamID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	var req toggleActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	if err := h.service.ToggleTeamActive(r.Context(), teamID, user, req.IsActive); err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithSuccess(w)
}

func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	teamID, ok := pathUUID(r, "teamID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	if err := h.service.DeleteTeam(r.Context(), teamID, user); err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithSuccess(w)
}

func (h *TeamHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	teamID, ok := pathUUID(r, "teamID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	members, err := h.service.ListTeamMembers(r.Context(), teamID, user)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, members)
}

func (h *TeamHandler) Promote(w http.ResponseWriter, r *http.Request) {
	h.changeMemberRole(w, r, h.service.PromoteToAdmin)
}

func (h *TeamHandler) Demote(w http.ResponseWriter, r *http.Request) {
	h.changeMemberRole(w, r, h.service.DemoteToMember)
}

func (h *TeamHandler) changeMemberRole(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, teamID uuid.UUID, caller *models.User, targetUserID uuid.UUID) error) {
	user := middleware.GetUserFromContext(r.Context())
	teamID, ok := pathUUID(r, "teamID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid team id")
		return
	}
	targetID, ok := pathUUID(r, "userID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := op(r.Context(), teamID, user, targetID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithSuccess(w)
}

func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	h.changeMemberRole(w, r, h.service.RemoveMember)
}

func (h *TeamHandler) CreateJoinRequest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req joinTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TeamCode == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	request, err := h.service.CreateJoinRequest(r.Context(), user, req.TeamCode)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, request)
}

func (h *TeamHandler) ListTeamJoinRequests(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	teamID, ok := pathUUID(r, "teamID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid team id")
		return
	}

	var statusFilter *models.JoinRequestStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.JoinRequestStatus(raw)
		switch status {
		case models.JoinRequestPending, models.JoinRequestApproved, models.JoinRequestDeclined:
			statusFilter = &status
		default:
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	requests, err := h.service.ListTeamJoinRequests(r.Context(), teamID, user, statusFilter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, requests)
}

func (h *TeamHandler) ReviewJoinRequest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	requestID, ok := pathUUID(r, "requestID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	var req reviewJoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request.")
		return
	}

	request, err := h.service.ReviewJoinRequest(r.Context(), requestID, user, req.Action)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, request)
}

func (h *TeamHandler) ListMyJoinRequests(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	requests, err := h.service.ListMyJoinRequests(r.Context(), user)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, requests)
}

func (h *TeamHandler) GetJoinRequest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	requestID, ok := pathUUID(r, "requestID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	request, err := h.service.GetJoinRequest(r.Context(), requestID, user)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, request)
}
