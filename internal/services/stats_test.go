package services_test

import (
	"testing"
	"time"

	"github.com/sikshyahq/sikshya-backend/internal/nptime"
	"github.com/sikshyahq/sikshya-backend/internal/requestdata"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

func TestEnsureUserStatsCreatesRowOnce(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	stats, err := env.stats.EnsureUserStats(ctx, env.tx, env.student.ID, testNow)
	if err != nil {
		t.Fatalf("ensure stats: %v", err)
	}
	if stats.UserID != env.student.ID {
		t.Fatalf("expected row for %s, got %s", env.student.ID, stats.UserID)
	}
	if stats.TotalPoints != 0 || stats.CurrentStreak != 0 || stats.LastStudyDate != "" {
		t.Fatalf("expected a zeroed row, got %+v", stats)
	}

	again, err := env.stats.EnsureUserStats(ctx, env.tx, env.student.ID, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("ensure stats again: %v", err)
	}
	if again.CreatedAt.Unix() != stats.CreatedAt.Unix() {
		t.Fatal("expected the existing row, not a new one")
	}
}

func TestEnsureTodayCountersResetsOnNewDay(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	yesterday := testNow.Add(-24 * time.Hour)
	env.seedStats(t, ctx, &types.UserStats{
		TotalPoints:        120,
		TodayActiveMinutes: 45,
		TodayChatCount:     7,
		CurrentStreak:      4,
		LongestStreak:      9,
		LastStudyDate:      nptime.DayString(yesterday),
		CreatedAt:          yesterday,
		UpdatedAt:          yesterday,
	})

	stats, err := env.stats.EnsureTodayCounters(ctx, env.tx, env.student.ID, testNow)
	if err != nil {
		t.Fatalf("ensure counters: %v", err)
	}
	if stats.TodayActiveMinutes != 0 || stats.TodayChatCount != 0 {
		t.Fatalf("expected daily counters reset, got minutes=%d chats=%d", stats.TodayActiveMinutes, stats.TodayChatCount)
	}
	if stats.TotalPoints != 120 || stats.CurrentStreak != 4 || stats.LongestStreak != 9 {
		t.Fatalf("expected lifetime fields preserved, got %+v", stats)
	}
	if stats.LastStudyDate != nptime.DayString(yesterday) {
		t.Fatalf("expected last study date untouched, got %s", stats.LastStudyDate)
	}
}

func TestEnsureTodayCountersSameDayNoReset(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	env.seedStats(t, ctx, &types.UserStats{
		TodayActiveMinutes: 12,
		TodayChatCount:     3,
		CreatedAt:          testNow,
		UpdatedAt:          testNow,
	})

	stats, err := env.stats.EnsureTodayCounters(ctx, env.tx, env.student.ID, testNow.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("ensure counters: %v", err)
	}
	if stats.TodayActiveMinutes != 12 || stats.TodayChatCount != 3 {
		t.Fatalf("expected counters preserved within the day, got minutes=%d chats=%d", stats.TodayActiveMinutes, stats.TodayChatCount)
	}
}

// A write at 18:10 UTC and one at 18:20 UTC straddle the Kathmandu midnight,
// so the second write must reset even though both share a UTC date.
func TestEnsureTodayCountersResetsAtKathmanduMidnight(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	before := time.Date(2025, 3, 10, 18, 10, 0, 0, time.UTC)
	after := time.Date(2025, 3, 10, 18, 20, 0, 0, time.UTC)
	env.seedStats(t, ctx, &types.UserStats{
		TodayActiveMinutes: 30,
		TodayChatCount:     2,
		CreatedAt:          before,
		UpdatedAt:          before,
	})

	stats, err := env.stats.EnsureTodayCounters(ctx, env.tx, env.student.ID, after)
	if err != nil {
		t.Fatalf("ensure counters: %v", err)
	}
	if stats.TodayActiveMinutes != 0 || stats.TodayChatCount != 0 {
		t.Fatalf("expected reset across Kathmandu midnight, got minutes=%d chats=%d", stats.TodayActiveMinutes, stats.TodayChatCount)
	}
}

func TestGetMyStatsReturnsDefaultsWithoutCreating(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	ctx = requestdata.WithRequestData(ctx, &requestdata.RequestData{
		UserID: env.student.ID,
		Role:   types.RoleStudent,
	})
	stats, err := env.stats.GetMyStats(ctx)
	if err != nil {
		t.Fatalf("get my stats: %v", err)
	}
	if stats.UserID != env.student.ID || stats.TotalPoints != 0 {
		t.Fatalf("expected zeroed defaults, got %+v", stats)
	}

	row, err := env.statsRepo.GetByUserID(ctx, nil, env.student.ID)
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if row != nil {
		t.Fatal("expected no row created by a read")
	}
}

func TestGetMyStatsRequiresIdentity(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	if _, err := env.stats.GetMyStats(ctx); err == nil {
		t.Fatal("expected an error without request identity")
	}
}
