package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sikshyahq/sikshya-backend/internal/nptime"
	"github.com/sikshyahq/sikshya-backend/internal/repos"
	"github.com/sikshyahq/sikshya-backend/internal/repos/testutil"
	"github.com/sikshyahq/sikshya-backend/internal/services"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

type leaderboardEnv struct {
	tx          *gorm.DB
	leaderboard services.LeaderboardService
}

func newLeaderboardEnv(t *testing.T) (*leaderboardEnv, context.Context) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)

	env := &leaderboardEnv{
		tx: tx,
		leaderboard: services.NewLeaderboardService(
			tx,
			log,
			repos.NewStudySessionRepo(tx, log),
			repos.NewNoteCompletionRepo(tx, log),
			repos.NewEnrollmentRepo(tx, log),
			repos.NewUserRepo(tx, log),
			nil,
		),
	}
	return env, context.Background()
}

func (env *leaderboardEnv) seedSession(t *testing.T, ctx context.Context, userID, noteID uuid.UUID, day string, points int) {
	t.Helper()
	s := &types.StudySession{
		ID:            uuid.New(),
		UserID:        userID,
		NoteID:        noteID,
		DayDate:       day,
		PointsAwarded: points,
	}
	if err := env.tx.WithContext(ctx).Create(s).Error; err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func (env *leaderboardEnv) seedCompletion(t *testing.T, ctx context.Context, userID, noteID uuid.UUID, at time.Time) {
	t.Helper()
	c := &types.NoteCompletion{
		ID:        uuid.New(),
		UserID:    userID,
		NoteID:    noteID,
		CreatedAt: at,
	}
	if err := env.tx.WithContext(ctx).Create(c).Error; err != nil {
		t.Fatalf("seed completion: %v", err)
	}
}

func TestGetWeeklyGlobalRanksSessionsAndCompletions(t *testing.T) {
	env, ctx := newLeaderboardEnv(t)

	teacher := testutil.SeedUser(t, ctx, env.tx, "lb-teacher@test.local", types.RoleTeacher)
	alice := testutil.SeedUser(t, ctx, env.tx, "alice@test.local", types.RoleStudent)
	bob := testutil.SeedUser(t, ctx, env.tx, "bob@test.local", types.RoleStudent)
	course := testutil.SeedCourse(t, ctx, env.tx, teacher.ID)
	note := testutil.SeedNote(t, ctx, env.tx, course.ID, teacher.ID)

	today := nptime.DayString(testNow)
	env.seedSession(t, ctx, alice.ID, note.ID, today, 6)
	env.seedSession(t, ctx, bob.ID, note.ID, nptime.DayString(nptime.AddDays(testNow, -4)), 3)
	env.seedCompletion(t, ctx, bob.ID, note.ID, testNow.Add(-time.Hour))

	// Outside the 7-day window: must not count.
	env.seedSession(t, ctx, alice.ID, note.ID, nptime.DayString(nptime.AddDays(testNow, -7)), 500)

	// Teachers never appear no matter how many points they hold.
	env.seedSession(t, ctx, teacher.ID, note.ID, today, 999)

	entries, err := env.leaderboard.GetWeekly(ctx, services.LeaderboardScopeGlobal, nil, testNow)
	if err != nil {
		t.Fatalf("get weekly: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Bob: 3 session points + 50 completion bonus.
	if entries[0].UserID != bob.ID || entries[0].Points != 53 {
		t.Fatalf("expected bob first with 53, got %s with %d", entries[0].UserID, entries[0].Points)
	}
	if entries[1].UserID != alice.ID || entries[1].Points != 6 {
		t.Fatalf("expected alice second with 6, got %s with %d", entries[1].UserID, entries[1].Points)
	}
	if entries[0].User == nil || entries[0].User.Name == "" {
		t.Fatal("expected hydrated display info")
	}
}

func TestGetWeeklyClassScopesToEnrollment(t *testing.T) {
	env, ctx := newLeaderboardEnv(t)

	teacher := testutil.SeedUser(t, ctx, env.tx, "lb-teacher2@test.local", types.RoleTeacher)
	alice := testutil.SeedUser(t, ctx, env.tx, "alice2@test.local", types.RoleStudent)
	bob := testutil.SeedUser(t, ctx, env.tx, "bob2@test.local", types.RoleStudent)
	course := testutil.SeedCourse(t, ctx, env.tx, teacher.ID)
	note := testutil.SeedNote(t, ctx, env.tx, course.ID, teacher.ID)
	testutil.SeedEnrollment(t, ctx, env.tx, course.ID, alice.ID)

	today := nptime.DayString(testNow)
	env.seedSession(t, ctx, alice.ID, note.ID, today, 6)
	env.seedSession(t, ctx, bob.ID, note.ID, today, 40)

	entries, err := env.leaderboard.GetWeekly(ctx, services.LeaderboardScopeClass, &course.ID, testNow)
	if err != nil {
		t.Fatalf("get weekly: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the enrolled student, got %d entries", len(entries))
	}
	if entries[0].UserID != alice.ID {
		t.Fatalf("expected alice, got %s", entries[0].UserID)
	}
}

func TestGetWeeklyClassEmptyCourse(t *testing.T) {
	env, ctx := newLeaderboardEnv(t)

	teacher := testutil.SeedUser(t, ctx, env.tx, "lb-teacher3@test.local", types.RoleTeacher)
	course := testutil.SeedCourse(t, ctx, env.tx, teacher.ID)

	entries, err := env.leaderboard.GetWeekly(ctx, services.LeaderboardScopeClass, &course.ID, testNow)
	if err != nil {
		t.Fatalf("get weekly: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected an empty board, got %d entries", len(entries))
	}
}

func TestGetWeeklyValidatesScope(t *testing.T) {
	env, ctx := newLeaderboardEnv(t)

	if _, err := env.leaderboard.GetWeekly(ctx, "monthly", nil, testNow); err == nil {
		t.Fatal("expected an error for an unknown scope")
	}
	if _, err := env.leaderboard.GetWeekly(ctx, services.LeaderboardScopeClass, nil, testNow); err == nil {
		t.Fatal("expected an error for class scope without a course")
	}
}

func TestGetWeeklyTruncatesToTopTen(t *testing.T) {
	env, ctx := newLeaderboardEnv(t)

	teacher := testutil.SeedUser(t, ctx, env.tx, "lb-teacher4@test.local", types.RoleTeacher)
	course := testutil.SeedCourse(t, ctx, env.tx, teacher.ID)
	note := testutil.SeedNote(t, ctx, env.tx, course.ID, teacher.ID)

	today := nptime.DayString(testNow)
	for i := 0; i < 12; i++ {
		u := testutil.SeedUser(t, ctx, env.tx, "ranked"+uuid.New().String()+"@test.local", types.RoleStudent)
		env.seedSession(t, ctx, u.ID, note.ID, today, i+1)
	}

	entries, err := env.leaderboard.GetWeekly(ctx, services.LeaderboardScopeGlobal, nil, testNow)
	if err != nil {
		t.Fatalf("get weekly: %v", err)
	}
	if len(entries) != services.LeaderboardSize {
		t.Fatalf("expected %d entries, got %d", services.LeaderboardSize, len(entries))
	}
	if entries[0].Points != 12 {
		t.Fatalf("expected the top entry at 12 points, got %d", entries[0].Points)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Points > entries[i-1].Points {
			t.Fatalf("expected descending order at index %d", i)
		}
	}
}
