package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "PENDING"
	JoinRequestApproved JoinRequestStatus = "APPROVED"
	JoinRequestDeclined JoinRequestStatus = "DECLINED"
)

// JoinRequest records a user's intent to join a team via its code.
// The partial unique index allows at most one PENDING row per
// (team, requester) pair while permitting historical APPROVED/DECLINED
// duplicates. It is the authoritative race-breaker for concurrent
// submissions; the application-level pre-check alone is not.
type JoinRequest struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	TeamID      uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:uq_join_requests_team_user_pending,priority:1,where:status = 'PENDING'" json:"team_id"`
	Team        *Team             `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	RequestedBy uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:uq_join_requests_team_user_pending,priority:2" json:"requested_by"`
	Requester   *User             `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	Status      JoinRequestStatus `gorm:"not null;size:20;index;default:'PENDING'" json:"status"`
	ReviewedBy  *uuid.UUID        `gorm:"type:uuid" json:"reviewed_by"`
	Reviewer    *User             `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt  *time.Time        `json:"reviewed_at"`
}

func (r *JoinRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
