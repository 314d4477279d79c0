package services

import (
	"time"

	"teamhub/models"

	"github.com/google/uuid"
)

// TeamResponse is the projection returned by team lifecycle
// operations. CreatedBy is "You" when the caller owns the team,
// otherwise the owner's display name.
type TeamResponse struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	TeamCode    string          `json:"team_code"`
	IsActive    bool            `json:"is_active"`
	Role        models.TeamRole `json:"role"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	MemberCount int64           `json:"member_count"`
}

type TeamMemberResponse struct {
	UserID   uuid.UUID       `json:"user_id"`
	Name     string          `json:"name"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Role     models.TeamRole `json:"role"`
}

type JoinRequestResponse struct {
	ID             uuid.UUID                `json:"id"`
	TeamID         uuid.UUID                `json:"team_id"`
	TeamName       string                   `json:"team_name"`
	RequestedBy    uuid.UUID                `json:"requested_by"`
	RequesterName  string                   `json:"requester_name"`
	RequesterEmail string                   `json:"requester_email"`
	Status         models.JoinRequestStatus `json:"status"`
	ReviewedBy     *uuid.UUID               `json:"reviewed_by"`
	ReviewerName   *string                  `json:"reviewer_name"`
	ReviewedAt     *time.Time               `json:"reviewed_at"`
	CreatedAt      time.Time                `json:"created_at"`
}

func teamResponse(team *models.Team, role models.TeamRole, createdBy string, memberCount int64) *TeamResponse {
	return &TeamResponse{
		ID:          team.ID,
		OwnerID:     team.OwnerID,
		Name:        team.Name,
		Description: team.Description,
		TeamCode:    team.TeamCode,
		IsActive:    team.IsActive,
		Role:        role,
		CreatedBy:   createdBy,
		CreatedAt:   team.CreatedAt,
		MemberCount: memberCount,
	}
}

func joinRequestResponse(req *models.JoinRequest, teamName string, requester *models.User, reviewer *models.User) *JoinRequestResponse {
	resp := &JoinRequestResponse{
		ID:          req.ID,
		TeamID:      req.TeamID,
		TeamName:    teamName,
		RequestedBy: req.RequestedBy,
		Status:      req.Status,
		ReviewedBy:  req.ReviewedBy,
		ReviewedAt:  req.ReviewedAt,
		CreatedAt:   req.CreatedAt,
	}
	if requester != nil {
		resp.RequesterName = requester.Name
		resp.RequesterEmail = requester.Email
	}
	if reviewer != nil {
		resp.ReviewerName = &reviewer.Name
	}
	return resp
}
