package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sikshyahq/sikshya-backend/internal/nptime"
	"github.com/sikshyahq/sikshya-backend/internal/repos"
	"github.com/sikshyahq/sikshya-backend/internal/repos/testutil"
	"github.com/sikshyahq/sikshya-backend/internal/services"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

// Concurrent pings need real, separate transactions, so this test runs
// against the shared database directly and cleans its rows up afterwards
// instead of using the rollback wrapper.
func TestRecordPingConcurrentNotesSerializeOnStatsLock(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	statsRepo := repos.NewUserStatsRepo(db, log)
	sessionRepo := repos.NewStudySessionRepo(db, log)
	statsService := services.NewStatsService(db, log, statsRepo)
	activity := services.NewActivityService(db, log, statsService, statsRepo, sessionRepo)

	student := testutil.SeedUser(t, ctx, db, "concurrent-"+uuid.New().String()+"@test.local", types.RoleStudent)
	owner := testutil.SeedUser(t, ctx, db, "concurrent-owner-"+uuid.New().String()+"@test.local", types.RoleTeacher)
	course := testutil.SeedCourse(t, ctx, db, owner.ID)
	noteA := testutil.SeedNote(t, ctx, db, course.ID, owner.ID)
	noteB := testutil.SeedNote(t, ctx, db, course.ID, owner.ID)
	t.Cleanup(func() {
		db.Exec(`DELETE FROM study_session WHERE user_id = ?`, student.ID)
		db.Exec(`DELETE FROM user_stats WHERE user_id = ?`, student.ID)
		db.Exec(`DELETE FROM note WHERE id IN ?`, []uuid.UUID{noteA.ID, noteB.ID})
		db.Exec(`DELETE FROM course WHERE id = ?`, course.ID)
		db.Exec(`DELETE FROM "user" WHERE id IN ?`, []uuid.UUID{student.ID, owner.ID})
	})

	// Keep the whole ping window inside one Nepal calendar day.
	start := time.Now().UTC().Truncate(time.Second)
	for nptime.DayString(start) != nptime.DayString(start.Add(3*time.Minute)) {
		start = start.Add(time.Minute)
	}

	// Establish both sessions.
	if _, err := activity.RecordPing(ctx, student.ID, noteA.ID, services.PingEventScroll, start); err != nil {
		t.Fatalf("ping note A: %v", err)
	}
	if _, err := activity.RecordPing(ctx, student.ID, noteB.ID, services.PingEventScroll, start); err != nil {
		t.Fatalf("ping note B: %v", err)
	}

	concurrentPings := func(at time.Time) (int, int) {
		t.Helper()
		results := make([]*services.PingResult, 2)
		errs := make([]error, 2)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			results[0], errs[0] = activity.RecordPing(ctx, student.ID, noteA.ID, services.PingEventScroll, at)
		}()
		go func() {
			defer wg.Done()
			results[1], errs[1] = activity.RecordPing(ctx, student.ID, noteB.ID, services.PingEventScroll, at)
		}()
		wg.Wait()
		for i, err := range errs {
			if err != nil {
				t.Fatalf("concurrent ping %d: %v", i, err)
			}
		}
		maxMinutes := results[0].TodayActiveMinutes
		if results[1].TodayActiveMinutes > maxMinutes {
			maxMinutes = results[1].TodayActiveMinutes
		}
		return results[0].PointsAwarded + results[1].PointsAwarded, maxMinutes
	}

	// Both transactions race to add their 60 seconds. The stats lock must
	// serialize them: two minute points total, the streak day bonus exactly
	// once, no minute awarded twice.
	awarded, minutes := concurrentPings(start.Add(60 * time.Second))
	if awarded != 2+services.StreakDayBonus {
		t.Fatalf("expected %d points across concurrent pings, got %d", 2+services.StreakDayBonus, awarded)
	}
	if minutes != 2 {
		t.Fatalf("expected 2 active minutes, got %d", minutes)
	}

	stats, err := statsRepo.GetByUserID(ctx, nil, student.ID)
	if err != nil || stats == nil {
		t.Fatalf("load stats: %v", err)
	}
	if stats.TotalPoints != 2+services.StreakDayBonus {
		t.Fatalf("expected total %d, got %d", 2+services.StreakDayBonus, stats.TotalPoints)
	}
	if stats.TodayActiveMinutes != 2 || stats.CurrentStreak != 1 {
		t.Fatalf("expected minutes=2 streak=1, got minutes=%d streak=%d", stats.TodayActiveMinutes, stats.CurrentStreak)
	}

	// Inflate both sessions far past the cap, then race again: exactly the
	// remaining headroom up to 60 minutes may be paid out, once.
	if err := db.Exec(`UPDATE study_session SET active_seconds = 7200 WHERE user_id = ?`, student.ID).Error; err != nil {
		t.Fatalf("inflate sessions: %v", err)
	}
	awarded, minutes = concurrentPings(start.Add(120 * time.Second))
	if awarded != services.MaxActiveMinutesPerDay-2 {
		t.Fatalf("expected %d points up to the cap, got %d", services.MaxActiveMinutesPerDay-2, awarded)
	}
	if minutes != services.MaxActiveMinutesPerDay {
		t.Fatalf("expected minutes pinned at %d, got %d", services.MaxActiveMinutesPerDay, minutes)
	}

	stats, err = statsRepo.GetByUserID(ctx, nil, student.ID)
	if err != nil || stats == nil {
		t.Fatalf("reload stats: %v", err)
	}
	if stats.TodayActiveMinutes != services.MaxActiveMinutesPerDay {
		t.Fatalf("expected stored minutes at the cap, got %d", stats.TodayActiveMinutes)
	}
	if stats.TotalPoints != services.MaxActiveMinutesPerDay+services.StreakDayBonus {
		t.Fatalf("expected total %d, got %d", services.MaxActiveMinutesPerDay+services.StreakDayBonus, stats.TotalPoints)
	}
}
