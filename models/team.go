package models

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamStatus string

const (
	TeamStatusActive  TeamStatus = "ACTIVE"
	TeamStatusDeleted TeamStatus = "DELETED"
)

// Team is soft-deleted: status=DELETED hides it from every read path
// while is_active=false is a reversible toggle controlled by the owner.
type Team struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner       *User      `gorm:"foreignKey:OwnerID" json:"-"`
	Name        string     `gorm:"not null;size:100;index" json:"name"`
	Description string     `gorm:"size:500" json:"description"`
	TeamCode    string     `gorm:"uniqueIndex;not null;size:16" json:"team_code"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	Status      TeamStatus `gorm:"not null;size:20;index" json:"status"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Team) IsDeleted() bool {
	return t.Status == TeamStatusDeleted
}

// Excludes 0/O/1/I/L to keep codes unambiguous when read aloud.
const teamCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateTeamCode returns a random short code. Uniqueness is enforced
// by the team_code index; callers retry on collision.
func GenerateTeamCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = teamCodeAlphabet[int(b)%len(teamCodeAlphabet)]
	}
	return string(buf), nil
}
