package services

import (
	"errors"

	"teamhub/config"
	"teamhub/logger"
	"teamhub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamService owns the team lifecycle, membership, and join-request
// workflow. Every entry point runs inside a single transaction;
// business failures surface as *Error values.
type TeamService struct {
	db           *gorm.DB
	log          *logger.Logger
	codeLength   int
	codeAttempts int
}

func NewTeamService(db *gorm.DB, cfg *config.Config, log *logger.Logger) *TeamService {
	return &TeamService{
		db:           db,
		log:          log,
		codeLength:   cfg.TeamCodeLength,
		codeAttempts: cfg.TeamCodeAttempts,
	}
}

// loadTeam resolves a team by id, masking soft-deleted teams as not
// found so deletion is indistinguishable from absence.
func (s *TeamService) loadTeam(tx *gorm.DB, teamID uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := tx.First(&team, "id = ?", teamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	if team.IsDeleted() {
		return nil, ErrTeamNotFound
	}
	return &team, nil
}

func (s *TeamService) memberCount(tx *gorm.DB, teamID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}

// ownerDisplayName computes the created_by field: "You" for the owner
// themselves, the owner's name for everyone else.
func (s *TeamService) ownerDisplayName(tx *gorm.DB, team *models.Team, callerRole models.TeamRole) (string, error) {
	if callerRole == models.TeamRoleOwner {
		return "You", nil
	}
	var owner models.User
	err := tx.Select("id", "name").First(&owner, "id = ?", team.OwnerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return owner.Name, nil
}
