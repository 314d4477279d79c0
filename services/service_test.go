package services

import (
	"context"
	"fmt"
	"testing"

	"teamhub/config"
	"teamhub/database"
	"teamhub/logger"
	"teamhub/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// newTestService builds a service over an in-memory database with the
// production migration, so the composite and partial unique indexes
// are live in every test.
func newTestService(t *testing.T) (*TeamService, *gorm.DB) {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap database: %v", err)
	}
	// A single connection keeps the shared in-memory database visible
	// to every transaction.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{TeamCodeLength: 8, TeamCodeAttempts: 5}
	return NewTeamService(db, cfg, logger.New("test")), db
}

var userSeq int

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	userSeq++
	user := &models.User{
		Name:         name,
		Username:     fmt.Sprintf("%s%d", name, userSeq),
		Email:        fmt.Sprintf("%s%d@example.com", name, userSeq),
		Phone:        fmt.Sprintf("+1555%07d", userSeq),
		PasswordHash: "not-a-real-hash",
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

func createTeam(t *testing.T, s *TeamService, owner *models.User, name string) *TeamResponse {
	t.Helper()
	team, err := s.CreateTeam(context.Background(), owner, name, "")
	if err != nil {
		t.Fatalf("create team %s: %v", name, err)
	}
	return team
}

// joinTeam walks a user through the full request/approve flow.
func joinTeam(t *testing.T, s *TeamService, owner, user *models.User, team *TeamResponse) {
	t.Helper()
	req, err := s.CreateJoinRequest(context.Background(), user, team.TeamCode)
	if err != nil {
		t.Fatalf("create join request: %v", err)
	}
	if _, err := s.ReviewJoinRequest(context.Background(), req.ID, owner, models.JoinRequestApproved); err != nil {
		t.Fatalf("approve join request: %v", err)
	}
}
