package services

import (
	"errors"

	"teamhub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// requireMembership resolves the caller's membership row for a team.
func (s *TeamService) requireMembership(tx *gorm.DB, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	var member models.TeamMember
	err := tx.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorizedTeamAccess
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// requireRole resolves the caller's membership and checks it against
// the allowed role set. Callers pass the set explicitly per operation;
// there is no ambient authorization.
func (s *TeamService) requireRole(tx *gorm.DB, teamID, userID uuid.UUID, allowed ...models.TeamRole) (*models.TeamMember, error) {
	member, err := s.requireMembership(tx, teamID, userID)
	if err != nil {
		return nil, err
	}
	for _, role := range allowed {
		if member.Role == role {
			return member, nil
		}
	}
	return nil, ErrUnauthorizedTeamAccess
}
