package services_test

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sikshyahq/sikshya-backend/internal/repos"
	"github.com/sikshyahq/sikshya-backend/internal/repos/testutil"
	"github.com/sikshyahq/sikshya-backend/internal/services"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

// A fixed instant: 12:00 UTC is 17:45 in Kathmandu, safely inside the same
// Nepal calendar day, so tests are deterministic regardless of wall clock.
var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type gamificationEnv struct {
	tx        *gorm.DB
	statsRepo repos.UserStatsRepo
	sessions  repos.StudySessionRepo
	stats     services.StatsService
	activity  services.ActivityService
	chat      services.ChatRewardService

	student *types.User
	course  *types.Course
	note    *types.Note
}

// newGamificationEnv builds the gamification services over a single rolled-back
// transaction. Repos receive the tx as their base db, so service calls that
// pass a nil tx still land inside the test transaction, and service-level
// Transaction blocks become savepoints.
func newGamificationEnv(t *testing.T) (*gamificationEnv, context.Context) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	statsRepo := repos.NewUserStatsRepo(tx, log)
	sessionRepo := repos.NewStudySessionRepo(tx, log)
	messageRepo := repos.NewMessageRepo(tx, log)
	noteRepo := repos.NewNoteRepo(tx, log)

	statsService := services.NewStatsService(tx, log, statsRepo)

	env := &gamificationEnv{
		tx:        tx,
		statsRepo: statsRepo,
		sessions:  sessionRepo,
		stats:     statsService,
		activity:  services.NewActivityService(tx, log, statsService, statsRepo, sessionRepo),
		chat:      services.NewChatRewardService(tx, log, statsService, statsRepo, sessionRepo, messageRepo, noteRepo),
	}

	env.student = testutil.SeedUser(t, ctx, tx, "student@test.local", types.RoleStudent)
	teacher := testutil.SeedUser(t, ctx, tx, "teacher@test.local", types.RoleTeacher)
	env.course = testutil.SeedCourse(t, ctx, tx, teacher.ID)
	env.note = testutil.SeedNote(t, ctx, tx, env.course.ID, teacher.ID)
	return env, ctx
}

func (env *gamificationEnv) mustStats(t *testing.T, ctx context.Context) *types.UserStats {
	t.Helper()
	stats, err := env.statsRepo.GetByUserID(ctx, nil, env.student.ID)
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if stats == nil {
		t.Fatal("expected a user_stats row")
	}
	return stats
}

func (env *gamificationEnv) seedStats(t *testing.T, ctx context.Context, stats *types.UserStats) {
	t.Helper()
	stats.UserID = env.student.ID
	if err := env.statsRepo.Insert(ctx, nil, stats); err != nil {
		t.Fatalf("seed stats: %v", err)
	}
}

func (env *gamificationEnv) ping(t *testing.T, ctx context.Context, at time.Time) *services.PingResult {
	t.Helper()
	res, err := env.activity.RecordPing(ctx, env.student.ID, env.note.ID, services.PingEventScroll, at)
	if err != nil {
		t.Fatalf("record ping: %v", err)
	}
	return res
}
