package services

import (
	"context"
	"errors"

	"teamhub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTeam inserts the team and its OWNER membership atomically. The
// team code is random; a collision aborts the transaction and the
// whole insert retries with a fresh code, up to the configured bound.
func (s *TeamService) CreateTeam(ctx context.Context, owner *models.User, name, description string) (*TeamResponse, error) {
	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		code, err := models.GenerateTeamCode(s.codeLength)
		if err != nil {
			return nil, err
		}

		team := models.Team{
			OwnerID:     owner.ID,
			Name:        name,
			Description: description,
			TeamCode:    code,
			IsActive:    true,
			Status:      models.TeamStatusActive,
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&team).Error; err != nil {
				return err
			}
			member := models.TeamMember{
				TeamID: team.ID,
				UserID: owner.ID,
				Role:   models.TeamRoleOwner,
			}
			return tx.Create(&member).Error
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.log.Infow("team created", "team_id", team.ID, "owner_id", owner.ID)
		return teamResponse(&team, models.TeamRoleOwner, "You", 1), nil
	}
	return nil, ErrTeamAlreadyExists
}

// GetTeam returns the team as seen by the caller. Deleted teams read
// as not found; deactivated teams stay visible to OWNER and ADMIN but
// are blocked for plain members.
func (s *TeamService) GetTeam(ctx context.Context, teamID uuid.UUID, caller *models.User) (*TeamResponse, error) {
	var resp *TeamResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := s.loadTeam(tx, teamID)
		if err != nil {
			return err
		}
		member, err := s.requireMembership(tx, teamID, caller.ID)
		if err != nil {
			return err
		}
		if !team.IsActive && member.Role == models.TeamRoleMember {
			return ErrTeamDeactivated
		}

		createdBy, err := s.ownerDisplayName(tx, team, member.Role)
		if err != nil {
			return err
		}
		count, err := s.memberCount(tx, teamID)
		if err != nil {
			return err
		}

		resp = teamResponse(team, member.Role, createdBy, count)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListMyTeams returns every visible team the caller belongs to,
// ordered by team creation time. Owner names and member counts are
// fetched with one IN query each regardless of how many teams the
// caller is in.
func (s *TeamService) ListMyTeams(ctx context.Context, caller *models.User) ([]*TeamResponse, error) {
	responses := []*TeamResponse{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var memberships []models.TeamMember
		err := tx.Preload("Team").
			Joins("JOIN teams ON teams.id = team_members.team_id").
			Where("team_members.user_id = ?", caller.ID).
			Order("teams.created_at ASC").
			Find(&memberships).Error
		if err != nil {
			return err
		}

		visible := make([]models.TeamMember, 0, len(memberships))
		ownerIDs := make([]uuid.UUID, 0, len(memberships))
		teamIDs := make([]uuid.UUID, 0, len(memberships))
		seenOwners := make(map[uuid.UUID]bool)
		for _, m := range memberships {
			team := m.Team
			if team == nil || team.IsDeleted() {
				continue
			}
			// Deactivated teams are listed only for their owner.
			if !team.IsActive && m.Role != models.TeamRoleOwner {
				continue
			}
			visible = append(visible, m)
			teamIDs = append(teamIDs, team.ID)
			if !seenOwners[team.OwnerID] {
				seenOwners[team.OwnerID] = true
				ownerIDs = append(ownerIDs, team.OwnerID)
			}
		}
		if len(visible) == 0 {
			return nil
		}

		var owners []models.User
		if err := tx.Select("id", "name").Where("id IN ?", ownerIDs).Find(&owners).Error; err != nil {
			return err
		}
		ownerNames := make(map[uuid.UUID]string, len(owners))
		for _, owner := range owners {
			ownerNames[owner.ID] = owner.Name
		}

		type teamCount struct {
			TeamID uuid.UUID
			Count  int64
		}
		var counts []teamCount
		err = tx.Model(&models.TeamMember{}).
			Select("team_id, COUNT(*) AS count").
			Where("team_id IN ?", teamIDs).
			Group("team_id").
			Scan(&counts).Error
		if err != nil {
			return err
		}
		memberCounts := make(map[uuid.UUID]int64, len(counts))
		for _, c := range counts {
			memberCounts[c.TeamID] = c.Count
		}

		for _, m := range visible {
			team := m.Team
			createdBy := "You"
			if m.Role != models.TeamRoleOwner {
				createdBy = ownerNames[team.OwnerID]
			}
			responses = append(responses, teamResponse(team, m.Role, createdBy, memberCounts[team.ID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// UpdateTeam overwrites only the provided fields; a nil pointer means
// "leave unchanged", which is distinct from setting an empty string.
func (s *TeamService) UpdateTeam(ctx context.Context, teamID uuid.UUID, caller *models.User, name, description *string) (*TeamResponse, error) {
	var resp *TeamResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := s.loadTeam(tx, teamID)
		if err != nil {
			return err
		}
		member, err := s.requireRole(tx, teamID, caller.ID, models.TeamRoleOwner, models.TeamRoleAdmin)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if name != nil {
			updates["name"] = *name
			team.Name = *name
		}
		if description != nil {
			updates["description"] = *description
			team.Description = *description
		}
		if len(updates) > 0 {
			if err := tx.Model(team).Updates(updates).Error; err != nil {
				return err
			}
		}

		createdBy, err := s.ownerDisplayName(tx, team, member.Role)
		if err != nil {
			return err
		}
		count, err := s.memberCount(tx, teamID)
		if err != nil {
			return err
		}

		resp = teamResponse(team, member.Role, createdBy, count)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ToggleTeamActive flips the reversible visibility flag. Owner only.
func (s *TeamService) ToggleTeamActive(ctx context.Context, teamID uuid.UUID, caller *models.User, isActive bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := s.loadTeam(tx, teamID)
		if err != nil {
			return err
		}
		if _, err := s.requireRole(tx, teamID, caller.ID, models.TeamRoleOwner); err != nil {
			return err
		}

		if err := tx.Model(team).Update("is_active", isActive).Error; err != nil {
			return err
		}
		s.log.Infow("team active flag toggled", "team_id", teamID, "is_active", isActive)
		return nil
	})
}

// DeleteTeam soft-deletes the team. The deleted-state check runs
// before authorization, so a repeat delete reads as not found for
// every caller, the owner included. There is no undelete path.
func (s *TeamService) DeleteTeam(ctx context.Context, teamID uuid.UUID, caller *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := s.loadTeam(tx, teamID)
		if err != nil {
			return err
		}
		if _, err := s.requireRole(tx, teamID, caller.ID, models.TeamRoleOwner); err != nil {
			return err
		}

		if err := tx.Model(team).Update("status", models.TeamStatusDeleted).Error; err != nil {
			return err
		}
		s.log.Infow("team deleted", "team_id", teamID, "owner_id", caller.ID)
		return nil
	})
}
