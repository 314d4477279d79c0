package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamRole string

const (
	TeamRoleOwner  TeamRole = "OWNER"
	TeamRoleAdmin  TeamRole = "ADMIN"
	TeamRoleMember TeamRole = "MEMBER"
)

// TeamMember joins a user to a team with a role. Exactly one OWNER row
// exists per team, created with the team and never reassigned.
type TeamMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TeamID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_team_members_team_user,priority:1;index" json:"team_id"`
	Team      *Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_team_members_team_user,priority:2;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      TeamRole  `gorm:"not null;size:20;index" json:"role"`
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
