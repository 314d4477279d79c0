package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"teamhub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestCreateJoinRequest(t *testing.T) {
	s, db := newTestService(t)
	owner := createUser(t, db, "alice")
	user := createUser(t, db, "bob")
	team := createTeam(t, s, owner, "Widgets")

	req, err := s.CreateJoinRequest(context.Background(), user, team.TeamCode)
	if err != nil {
		t.Fatalf("CreateJoinRequest: %v", err)
	}
	if req.Status != models.JoinRequestPending {
		t.Errorf("status = %s, want PENDING", req.Status)
	}
	if req.TeamID != team.ID || req.TeamName != "Widgets" {
		t.Errorf("team fields wrong: %+v", req)
	}
	if req.RequesterName != "bob" {
		t.Errorf("requester_name = %q, want bob", req.RequesterName)
	}
	if req.ReviewedBy != nil || req.ReviewedAt != nil {
		t.Errorf("fresh request already reviewed: %+v", req)
	}
}

func TestCreateJoinRequestInvalidCode(t *testing.T) {
	s, db := newTestService(t)
	user := createUser(t, db, "bob")

	if _, err := s.CreateJoinRequest(context.Background(), user, "NOPE1234"); !errors.Is(err, ErrInvalidTeamCode) {
		t.Errorf("err = %v, want ErrInvalidTeamCode", err)
	}
}

func TestCreateJoinRequestDuplicatePending(t *testing.T) {
	s, db := newTestService(t)
	owner := createUser(t, db, "alice")
	user := createUser(t, db, "bob")
	team := createTeam(t, s, owner, "Widgets")

	if _, err := s.CreateJoinRequest(context.Background(), user, team.TeamCode); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := s.CreateJoinRequest(context.Background(), user, team.TeamCode); !errors.Is(err, ErrDuplicateJoinRequest) {
		t.Errorf("err = %v, want ErrDuplicateJoinRequest", err)
	}
}

func TestCreateJoinRequestAlreadyMember(t *testing.T) {
	s, db := newTestService(t)
	owner := createUser(t, db, "alice")
	team := createTeam(t, s, owner, "Widgets")

	if _, err := s.CreateJoinRequest(context.Background(), owner, team.TeamCode); !errors.Is(err, ErrUserAlreadyMember) {
		t.Errorf("err = %v, want ErrUserAlreadyMember", err)
	}
}

// When a stale PENDING row and a membership both exist, the duplicate
// check wins: it runs first and that ordering is part of the contract.
func TestCreateJoinRequestCheckOrdering(t *testing.T) {
	s, db := newTestService(t)
	owner := createUser(t, db, "alice")
	user := createUser(t, db, "bob")
	team := createTeam(t, s, owner, "Widgets")

	// Contrived state set up directly in the store: member AND a
	// stale PENDING request at the same time.
	member := models.TeamMember{TeamID: team.ID, UserID: user.ID, Role: models.TeamRoleMember}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("insert membership: %v", err)
	}
	stale := models.JoinRequest{TeamID: team.ID, RequestedBy: user.ID, Status: models.JoinRequestPending}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("insert stale request: %v", err)
	}

	if _, err := s.CreateJoinRequest(context.Background(), user, team.TeamCode); !errors.Is(err, ErrDuplicateJoinRequest) {
		t.Errorf("err = %v, want ErrDuplicateJoinRequest (not ErrUserAlreadyMember)", err)
	}
}

// The partial unique index is the authoritative race-breaker: a second
// PENDING insert for the same pair fails at the store even when the
// application pre-check is bypassed, while resolved duplicates remain
// legal.
func TestPendingPartialUniqueIndex(t *testing.T) {
	s, db := newTestService(t)
	owner := createUser(t, db, "alice")
	user := createUser(t, db, "bob")
	team := createTeam(t, s, owner, "Widgets")

	first := models.JoinRequest{TeamID: team.ID, RequestedBy: user.ID, Status: models.JoinRequestPending}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("first PENDING: %v", err)
	}

	second := models.JoinRequest{TeamID: team.ID, RequestedBy: user.ID, Status: models.JoinRequestPending}
	if err := db.Create(&second).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("second PENDING err = %v, want gorm.ErrDuplicatedKey", err)
	}

	// Historical duplicates are allowed once resolved.
	declined := models.JoinRequest{TeamID: team.ID, RequestedBy: user.ID, Status: models.JoinRequestDeclined}
	if err := db.Create(&declined).Error; err != nil {
		t.Errorf("DECLINED duplicate err = %v, want nil", err)
	}
	approved := models.JoinRequest{TeamID: team.ID, RequestedBy: user.ID, Status: models.JoinRequestApproved}
	if err := db.Create(&approved).Error; err != nil {
		t.Errorf("APPROVED duplicate err = %v, want nil", err)
	}
}

// Two concurrent submissions for the same pair: exactly one PENDING
// row lands, the loser gets the duplicate error.
func TestCreateJoinRequestRace(t *testing.T) {
	s, db := newTestService(t)
	owner := createUser(t, db, "alice")
	user := createUser(t, db, "bob")
	team := createTeam(t, s, owner, "Widgets")

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.CreateJoinRequest(context.Background(), user, team.TeamCode)
		}(i)
	}
	wg.Wait()

	var succeeded, duplicates int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrDuplicateJoinRequest):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || duplicates != 1 {
		t.Errorf("succeeded=%d duplicates=%d, want 1 and 1", succeeded, duplicates)
	}

	var count int64
	db.Model(&models.JoinRequest{}).
		Where("team_id = ? AND requested_by = ? AND status = ?", team.ID, user.ID, models.JoinRequestPending).
		Count(&count)
	if count != 1 {
		t.Errorf("PENDING rows = %d, want exactly 1", count)
	}
}

func TestReviewJoinRequestApprove(t *testing.T) {
	s, db := newTestService(t)
	owner := createUser(t, db, "alice")
	user := createUser(t, db, "bob")
	team := createTeam(t, s, owner, "Widgets")

	req, err := s.CreateJoinRequest(context.Background(), user, team.TeamCode)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	resp, err := s.ReviewJoinRequest(context.Background(), req.ID, owner, models.JoinRequestApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if resp.Status != models.JoinRequestApproved {
		t.Errorf("status = %s, want APPROVED", resp.Status)
	}
	if resp.ReviewedBy == nil || *resp.ReviewedBy != owner.ID {
		t.Errorf("reviewed_by = %v, want owner", resp.ReviewedBy)
	}
	if resp.ReviewerName == nil || *resp.ReviewerName != "alice" {
		t.Errorf("reviewer_name = %v, want alice", resp.ReviewerName)
	}
	if resp.ReviewedAt == nil {
		t.Error("reviewed_at not set")
	}

	var member models.TeamMember
	if err := db.Where("team_id = ? AND user_id = ?", team.ID, user.ID).First(&member).Error; err != nil {
		t.Fatalf("membership missing after approval: %v", err)
	}
	if member.Role != models.TeamRoleMember {
		t.Errorf("role = %s, want MEMBER", member.Role)
	}
}

func TestReviewJoinRequestDecline(t *testing.T) {
	s, db := newTestService(t)
	owner := createUser(t, db, "alice")
	user := createUser(t, db, "bob")
	team := createTeam(t, s, owner, "Widgets")

	req, err := s.CreateJoinRequest(context.Background(), user, team.TeamCode)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	resp, err := s.ReviewJoinRequest(context.Background(), req.ID, owner, models.JoinRequestDeclined)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if resp.Status != models.JoinRequestDeclined {
		t.Errorf("status = %s, want DECLINED", resp.Status)
	}

	var count int64
	db.Model(&models.TeamMember{}).Where("team_id = ? AND user_id = ?", team.ID, user.ID).Count(&count)
	if count != 0 {
		t.Error("membership created by a decline")
	}
}

// A second approval of the same request finds the membership already
// in place and fails without inserting another row.
func TestReviewJoinRequestDoubleApprove(t *testing.T) {
	s, db := newTestService(t)
	owner := createUser(t, db, "alice")
	user := createUser(t, db, "bob")
	team := createTeam(t, s, owner, "Widgets")

	req, err := s.CreateJoinRequest(context.Background(), user, team.TeamCode)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if _, err := s.ReviewJoinRequest(context.Background(), req.ID, owner, models.JoinRequestApproved); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	if _, err := s.ReviewJoinRequest(context.Background(), req.ID, owner, models.JoinRequestApproved); !errors.Is(err, ErrUserAlreadyMember) {
		t.Errorf("second approve err = %v, want ErrUserAlreadyMember", err)
	}

	var count int64
	db.Model(&models.TeamMember{}).Where("team_id = ? AND user_id = ?", team.ID, user.ID).Count(&count)
	if count != 1 {
		t.Errorf("membership rows = %d, want exactly 1", count)
	}
}

func TestReviewJoinRequestGuards(t *testing.T) {
	s, db := newTestService(t)
	owner := createUser(t, db, "alice")
	user := createUser(t, db, "bob")
	stranger := createUser(t, db, "carol")
	team := createTeam(t, s, owner, "Widgets")

	req, err := s.CreateJoinRequest(context.Background(), user, team.TeamCode)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	if _, err := s.ReviewJoinRequest(context.Background(), req.ID, owner, models.JoinRequestPending); !errors.Is(err, ErrInvalidReviewAction) {
		t.Errorf("PENDING action err = %v, want ErrInvalidReviewAction", err)
	}
	if _, err := s.ReviewJoinRequest(context.Background(), uuid.New(), owner, models.JoinRequestApproved); !errors.Is(err, ErrJoinRequestNotFound) {
		t.Errorf("unknown request err = %v, want ErrJoinRequestNotFound", err)
	}
	if _, err := s.ReviewJoinRequest(context.Background(), req.ID, stranger, models.JoinRequestApproved); !errors.Is(err, ErrUnauthorizedTeamAccess) {
		t.Errorf("stranger review err = %v, want ErrUnauthorizedTeamAccess", err)
	}

	if err := s.DeleteTeam(context.Background(), team.ID, owner); err != nil {
		t.Fatalf("delete team: %v", err)
	}
	if _, err := s.ReviewJoinRequest(context.Background(), req.ID, owner, models.JoinRequestApproved); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("deleted-team review err = %v, want ErrTeamNotFound", err)
	}
}

func TestListTeamJoinRequests(t *testing.T) {
	s, db := newTestService(t)
	owner := createUser(t, db, "alice")
	first := createUser(t, db, "bob")
	second := createUser(t, db, "carol")
	team := createTeam(t, s, owner, "Widgets")
	ctx := context.Background()

	reqA, err := s.CreateJoinRequest(ctx, first, team.TeamCode)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	reqB, err := s.CreateJoinRequest(ctx, second, team.TeamCode)
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if _, err := s.ReviewJoinRequest(ctx, reqA.ID, owner, models.JoinRequestDeclined); err != nil {
		t.Fatalf("decline: %v", err)
	}

	all, err := s.ListTeamJoinRequests(ctx, team.ID, owner, nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d requests, want 2", len(all))
	}
	if all[0].ID != reqB.ID {
		t.Errorf("newest first violated: first is %s", all[0].ID)
	}
	if all[1].RequesterName != "bob" {
		t.Errorf("requester_name = %q, want bob", all[1].RequesterName)
	}

	pending := models.JoinRequestPending
	filtered, err := s.ListTeamJoinRequests(ctx, team.ID, owner, &pending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != reqB.ID {
		t.Errorf("pending filter returned %+v", filtered)
	}

	if _, err := s.ListTeamJoinRequests(ctx, team.ID, first, nil); !errors.Is(err, ErrUnauthorizedTeamAccess) {
		t.Errorf("non-owner list err = %v, want ErrUnauthorizedTeamAccess", err)
	}
}

func TestListMyJoinRequests(t *testing.T) {
	s, db := newTestService(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	teamA := createTeam(t, s, alice, "Alpha")
	teamB := createTeam(t, s, alice, "Beta")
	ctx := context.Background()

	reqA, err := s.CreateJoinRequest(ctx, bob, teamA.TeamCode)
	if err != nil {
		t.Fatalf("request alpha: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	reqB, err := s.CreateJoinRequest(ctx, bob, teamB.TeamCode)
	if err != nil {
		t.Fatalf("request beta: %v", err)
	}
	if _, err := s.ReviewJoinRequest(ctx, reqA.ID, alice, models.JoinRequestApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	mine, err := s.ListMyJoinRequests(ctx, bob)
	if err != nil {
		t.Fatalf("ListMyJoinRequests: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("got %d requests, want 2", len(mine))
	}
	if mine[0].ID != reqB.ID {
		t.Errorf("newest first violated: first is %s", mine[0].TeamName)
	}
	if mine[1].Status != models.JoinRequestApproved {
		t.Errorf("approved request status = %s", mine[1].Status)
	}
	if mine[1].ReviewerName == nil || *mine[1].ReviewerName != "alice" {
		t.Errorf("reviewer_name = %v, want alice", mine[1].ReviewerName)
	}
}

func TestGetJoinRequestVisibility(t *testing.T) {
	s, db := newTestService(t)
	owner := createUser(t, db, "alice")
	user := createUser(t, db, "bob")
	stranger := createUser(t, db, "carol")
	team := createTeam(t, s, owner, "Widgets")
	ctx := context.Background()

	req, err := s.CreateJoinRequest(ctx, user, team.TeamCode)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	if _, err := s.GetJoinRequest(ctx, req.ID, user); err != nil {
		t.Errorf("requester view err = %v", err)
	}
	if _, err := s.GetJoinRequest(ctx, req.ID, owner); err != nil {
		t.Errorf("owner view err = %v", err)
	}
	if _, err := s.GetJoinRequest(ctx, req.ID, stranger); !errors.Is(err, ErrUnauthorizedTeamAccess) {
		t.Errorf("stranger view err = %v, want ErrUnauthorizedTeamAccess", err)
	}
	if _, err := s.GetJoinRequest(ctx, uuid.New(), user); !errors.Is(err, ErrJoinRequestNotFound) {
		t.Errorf("unknown id err = %v, want ErrJoinRequestNotFound", err)
	}

	if err := s.DeleteTeam(ctx, team.ID, owner); err != nil {
		t.Fatalf("delete team: %v", err)
	}
	if _, err := s.GetJoinRequest(ctx, req.ID, user); !errors.Is(err, ErrJoinRequestNotFound) {
		t.Errorf("deleted-team view err = %v, want ErrJoinRequestNotFound", err)
	}
}

// The full lifecycle: create, join, approve, promote, demote, remove.
func TestTeamLifecycleEndToEnd(t *testing.T) {
	s, db := newTestService(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	ctx := context.Background()

	team, err := s.CreateTeam(ctx, alice, "Widgets", "")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if team.MemberCount != 1 || team.Role != models.TeamRoleOwner || team.CreatedBy != "You" {
		t.Fatalf("fresh team view: %+v", team)
	}

	req, err := s.CreateJoinRequest(ctx, bob, team.TeamCode)
	if err != nil {
		t.Fatalf("join request: %v", err)
	}
	if req.Status != models.JoinRequestPending {
		t.Fatalf("status = %s, want PENDING", req.Status)
	}

	if _, err := s.ReviewJoinRequest(ctx, req.ID, alice, models.JoinRequestApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	bobTeams, err := s.ListMyTeams(ctx, bob)
	if err != nil {
		t.Fatalf("list bob's teams: %v", err)
	}
	if len(bobTeams) != 1 || bobTeams[0].CreatedBy != "alice" || bobTeams[0].Role != models.TeamRoleMember {
		t.Fatalf("bob's view: %+v", bobTeams)
	}

	if err := s.PromoteToAdmin(ctx, team.ID, alice, bob.ID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	var row models.TeamMember
	db.Where("team_id = ? AND user_id = ?", team.ID, bob.ID).First(&row)
	if row.Role != models.TeamRoleAdmin {
		t.Fatalf("role after promote = %s", row.Role)
	}

	if err := s.DemoteToMember(ctx, team.ID, alice, bob.ID); err != nil {
		t.Fatalf("demote: %v", err)
	}
	db.Where("team_id = ? AND user_id = ?", team.ID, bob.ID).First(&row)
	if row.Role != models.TeamRoleMember {
		t.Fatalf("role after demote = %s", row.Role)
	}

	if err := s.RemoveMember(ctx, team.ID, alice, bob.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	members, err := s.ListTeamMembers(ctx, team.ID, alice)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].UserID != alice.ID {
		t.Fatalf("members after removal: %+v", members)
	}
}
