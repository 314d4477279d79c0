package services

import (
	"context"
	"errors"

	"teamhub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListTeamMembers returns every member of the team. Any member may
// call it, regardless of role.
func (s *TeamService) ListTeamMembers(ctx context.Context, teamID uuid.UUID, caller *models.User) ([]*TeamMemberResponse, error) {
	responses := []*TeamMemberResponse{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadTeam(tx, teamID); err != nil {
			return err
		}
		if _, err := s.requireMembership(tx, teamID, caller.ID); err != nil {
			return err
		}

		var members []models.TeamMember
		err := tx.Preload("User").
			Where("team_id = ?", teamID).
			Order("created_at ASC").
			Find(&members).Error
		if err != nil {
			return err
		}

		for _, m := range members {
			resp := &TeamMemberResponse{UserID: m.UserID, Role: m.Role}
			if m.User != nil {
				resp.Name = m.User.Name
				resp.Username = m.User.Username
				resp.Email = m.User.Email
			}
			responses = append(responses, resp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// PromoteToAdmin sets the target's role to ADMIN. Promoting an
// existing admin is a no-op success.
func (s *TeamService) PromoteToAdmin(ctx context.Context, teamID uuid.UUID, caller *models.User, targetUserID uuid.UUID) error {
	return s.setMemberRole(ctx, teamID, caller, targetUserID, models.TeamRoleAdmin)
}

// DemoteToMember sets the target's role to MEMBER.
func (s *TeamService) DemoteToMember(ctx context.Context, teamID uuid.UUID, caller *models.User, targetUserID uuid.UUID) error {
	return s.setMemberRole(ctx, teamID, caller, targetUserID, models.TeamRoleMember)
}

func (s *TeamService) setMemberRole(ctx context.Context, teamID uuid.UUID, caller *models.User, targetUserID uuid.UUID, role models.TeamRole) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.resolveTarget(tx, teamID, caller, targetUserID)
		if err != nil {
			return err
		}
		if member.Role == role {
			return nil
		}
		if err := tx.Model(member).Update("role", role).Error; err != nil {
			return err
		}
		s.log.Infow("member role changed", "team_id", teamID, "user_id", targetUserID, "role", role)
		return nil
	})
}

// RemoveMember deletes the target's membership row and purges any
// APPROVED join requests for the pair, so a later re-join starts from
// a clean slate instead of colliding with the stale record.
func (s *TeamService) RemoveMember(ctx context.Context, teamID uuid.UUID, caller *models.User, targetUserID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.resolveTarget(tx, teamID, caller, targetUserID)
		if err != nil {
			return err
		}

		err = tx.Where("team_id = ? AND requested_by = ? AND status = ?",
			teamID, targetUserID, models.JoinRequestApproved).
			Delete(&models.JoinRequest{}).Error
		if err != nil {
			return err
		}

		if err := tx.Delete(member).Error; err != nil {
			return err
		}
		s.log.Infow("member removed", "team_id", teamID, "user_id", targetUserID)
		return nil
	})
}

// resolveTarget runs the shared guard chain for member mutations:
// team must exist, caller must be OWNER, and the target must be a
// non-owner member. The owner can never be modified or removed.
func (s *TeamService) resolveTarget(tx *gorm.DB, teamID uuid.UUID, caller *models.User, targetUserID uuid.UUID) (*models.TeamMember, error) {
	if _, err := s.loadTeam(tx, teamID); err != nil {
		return nil, err
	}
	if _, err := s.requireRole(tx, teamID, caller.ID, models.TeamRoleOwner); err != nil {
		return nil, err
	}
	if targetUserID == caller.ID {
		return nil, ErrCannotModifyOwner
	}

	var member models.TeamMember
	err := tx.Where("team_id = ? AND user_id = ?", teamID, targetUserID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	if member.Role == models.TeamRoleOwner {
		return nil, ErrCannotModifyOwner
	}
	return &member, nil
}
