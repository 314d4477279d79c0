package services

import (
	"context"
	"errors"
	"time"

	"teamhub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateJoinRequest submits a PENDING request for the team behind the
// given code. The checks run in a fixed order that is part of the
// contract: a stale PENDING row wins over an existing membership,
// because a double-submitted form is the common case.
//
// The pre-checks are not race-safe on their own; the partial unique
// index on PENDING rows is the authority, and a duplicate-key failure
// from the insert is reported as a duplicate request.
func (s *TeamService) CreateJoinRequest(ctx context.Context, caller *models.User, teamCode string) (*JoinRequestResponse, error) {
	var resp *JoinRequestResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team models.Team
		err := tx.First(&team, "team_code = ?", teamCode).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidTeamCode
		}
		if err != nil {
			return err
		}
		// Deleted teams read as an invalid code.
		if team.IsDeleted() {
			return ErrInvalidTeamCode
		}

		var pending int64
		err = tx.Model(&models.JoinRequest{}).
			Where("team_id = ? AND requested_by = ? AND status = ?",
				team.ID, caller.ID, models.JoinRequestPending).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return ErrDuplicateJoinRequest
		}

		var membership int64
		err = tx.Model(&models.TeamMember{}).
			Where("team_id = ? AND user_id = ?", team.ID, caller.ID).
			Count(&membership).Error
		if err != nil {
			return err
		}
		if membership > 0 {
			return ErrUserAlreadyMember
		}

		request := models.JoinRequest{
			TeamID:      team.ID,
			RequestedBy: caller.ID,
			Status:      models.JoinRequestPending,
		}
		if err := tx.Create(&request).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateJoinRequest
			}
			return err
		}

		s.log.Infow("join request created", "team_id", team.ID, "requested_by", caller.ID)
		resp = joinRequestResponse(&request, team.Name, caller, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListTeamJoinRequests returns the team's requests, newest first,
// optionally filtered by status. Owner only.
func (s *TeamService) ListTeamJoinRequests(ctx context.Context, teamID uuid.UUID, caller *models.User, statusFilter *models.JoinRequestStatus) ([]*JoinRequestResponse, error) {
	responses := []*JoinRequestResponse{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := s.loadTeam(tx, teamID)
		if err != nil {
			return err
		}
		if _, err := s.requireRole(tx, teamID, caller.ID, models.TeamRoleOwner); err != nil {
			return err
		}

		query := tx.Preload("Requester").Preload("Reviewer").
			Where("team_id = ?", teamID).
			Order("created_at DESC")
		if statusFilter != nil {
			query = query.Where("status = ?", *statusFilter)
		}

		var requests []models.JoinRequest
		if err := query.Find(&requests).Error; err != nil {
			return err
		}

		for i := range requests {
			req := &requests[i]
			responses = append(responses, joinRequestResponse(req, team.Name, req.Requester, req.Reviewer))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// ReviewJoinRequest resolves a PENDING request. Approval inserts the
// MEMBER row in the same transaction as the status write, so either
// both land or neither does. A request whose user already holds a
// membership (double approval, independent join) fails without
// touching the request.
func (s *TeamService) ReviewJoinRequest(ctx context.Context, requestID uuid.UUID, caller *models.User, action models.JoinRequestStatus) (*JoinRequestResponse, error) {
	if action != models.JoinRequestApproved && action != models.JoinRequestDeclined {
		return nil, ErrInvalidReviewAction
	}

	var resp *JoinRequestResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.JoinRequest
		err := tx.Preload("Requester").First(&request, "id = ?", requestID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJoinRequestNotFound
		}
		if err != nil {
			return err
		}

		team, err := s.loadTeam(tx, request.TeamID)
		if err != nil {
			return err
		}
		if _, err := s.requireRole(tx, team.ID, caller.ID, models.TeamRoleOwner); err != nil {
			return err
		}

		if action == models.JoinRequestApproved {
			var membership int64
			err = tx.Model(&models.TeamMember{}).
				Where("team_id = ? AND user_id = ?", team.ID, request.RequestedBy).
				Count(&membership).Error
			if err != nil {
				return err
			}
			if membership > 0 {
				return ErrUserAlreadyMember
			}

			member := models.TeamMember{
				TeamID: team.ID,
				UserID: request.RequestedBy,
				Role:   models.TeamRoleMember,
			}
			if err := tx.Create(&member).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrUserAlreadyMember
				}
				return err
			}
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":      action,
			"reviewed_by": caller.ID,
			"reviewed_at": now,
		}
		if err := tx.Model(&request).Updates(updates).Error; err != nil {
			return err
		}
		request.Status = action
		request.ReviewedBy = &caller.ID
		request.ReviewedAt = &now

		s.log.Infow("join request reviewed",
			"request_id", requestID, "team_id", team.ID, "action", action)
		resp = joinRequestResponse(&request, team.Name, request.Requester, caller)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListMyJoinRequests returns the caller's own requests, newest first.
// Requests survive as the user's history even after the team is gone.
func (s *TeamService) ListMyJoinRequests(ctx context.Context, caller *models.User) ([]*JoinRequestResponse, error) {
	responses := []*JoinRequestResponse{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var requests []models.JoinRequest
		err := tx.Preload("Team").Preload("Reviewer").
			Where("requested_by = ?", caller.ID).
			Order("created_at DESC").
			Find(&requests).Error
		if err != nil {
			return err
		}

		for i := range requests {
			req := &requests[i]
			teamName := ""
			if req.Team != nil {
				teamName = req.Team.Name
			}
			responses = append(responses, joinRequestResponse(req, teamName, caller, req.Reviewer))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetJoinRequest returns a single request. Visible to the requester
// and to the team's owner; a deleted team masks the request entirely.
func (s *TeamService) GetJoinRequest(ctx context.Context, requestID uuid.UUID, caller *models.User) (*JoinRequestResponse, error) {
	var resp *JoinRequestResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.JoinRequest
		err := tx.Preload("Team").Preload("Requester").Preload("Reviewer").
			First(&request, "id = ?", requestID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJoinRequestNotFound
		}
		if err != nil {
			return err
		}
		if request.Team == nil || request.Team.IsDeleted() {
			return ErrJoinRequestNotFound
		}

		if request.RequestedBy != caller.ID {
			if _, err := s.requireRole(tx, request.TeamID, caller.ID, models.TeamRoleOwner); err != nil {
				return err
			}
		}

		resp = joinRequestResponse(&request, request.Team.Name, request.Requester, request.Reviewer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
