package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sikshyahq/sikshya-backend/internal/nptime"
	"github.com/sikshyahq/sikshya-backend/internal/services"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

func TestRecordPingRejectsUnknownEvent(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	_, err := env.activity.RecordPing(ctx, env.student.ID, env.note.ID, "typing", testNow)
	if err == nil {
		t.Fatal("expected an error for an unknown event type")
	}
}

func TestRecordPingFirstPingCreatesSessionWithoutCredit(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	res := env.ping(t, ctx, testNow)
	if res.PointsAwarded != 0 {
		t.Fatalf("expected 0 points on first ping, got %d", res.PointsAwarded)
	}
	if res.TodayActiveMinutes != 0 {
		t.Fatalf("expected 0 active minutes, got %d", res.TodayActiveMinutes)
	}

	session, err := env.sessions.GetForUpdate(ctx, env.tx, env.student.ID, env.note.ID, nptime.DayString(testNow))
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session == nil {
		t.Fatal("expected a study session row")
	}
	if session.ActiveSeconds != 0 {
		t.Fatalf("expected 0 active seconds, got %d", session.ActiveSeconds)
	}
	if session.LastActivityAt == nil || !session.LastActivityAt.Equal(testNow) {
		t.Fatalf("expected last activity at %v, got %v", testNow, session.LastActivityAt)
	}
}

func TestRecordPingBelowMinuteAwardsNothing(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	env.ping(t, ctx, testNow)
	res := env.ping(t, ctx, testNow.Add(30*time.Second))
	if res.PointsAwarded != 0 {
		t.Fatalf("expected 0 points under one minute, got %d", res.PointsAwarded)
	}

	stats := env.mustStats(t, ctx)
	if stats.TotalPoints != 0 || stats.CurrentStreak != 0 {
		t.Fatalf("expected untouched stats, got points=%d streak=%d", stats.TotalPoints, stats.CurrentStreak)
	}
}

func TestRecordPingMinuteCrossAwardsPointAndStreak(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	env.ping(t, ctx, testNow)
	res := env.ping(t, ctx, testNow.Add(60*time.Second))

	// 1 minute point + 5 streak day bonus.
	if res.PointsAwarded != 6 {
		t.Fatalf("expected 6 points, got %d", res.PointsAwarded)
	}
	if res.TodayActiveMinutes != 1 {
		t.Fatalf("expected 1 active minute, got %d", res.TodayActiveMinutes)
	}

	stats := env.mustStats(t, ctx)
	if stats.TotalPoints != 6 {
		t.Fatalf("expected total 6, got %d", stats.TotalPoints)
	}
	if stats.CurrentStreak != 1 || stats.LongestStreak != 1 {
		t.Fatalf("expected streak 1/1, got %d/%d", stats.CurrentStreak, stats.LongestStreak)
	}
	if stats.LastStudyDate != nptime.DayString(testNow) {
		t.Fatalf("expected last study date %s, got %s", nptime.DayString(testNow), stats.LastStudyDate)
	}
}

func TestRecordPingSameMinuteIsIdempotent(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	env.ping(t, ctx, testNow)
	env.ping(t, ctx, testNow.Add(60*time.Second))

	// 30 more seconds: still 1 whole minute, nothing new to award.
	res := env.ping(t, ctx, testNow.Add(90*time.Second))
	if res.PointsAwarded != 0 {
		t.Fatalf("expected 0 points inside the same minute, got %d", res.PointsAwarded)
	}
	if res.TodayActiveMinutes != 1 {
		t.Fatalf("expected 1 active minute, got %d", res.TodayActiveMinutes)
	}
}

func TestRecordPingIdleGapCreditsNothingButRefreshesClock(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	env.ping(t, ctx, testNow)
	resumed := testNow.Add(91 * time.Second)
	res := env.ping(t, ctx, resumed)
	if res.PointsAwarded != 0 {
		t.Fatalf("expected 0 points after an idle gap, got %d", res.PointsAwarded)
	}

	session, err := env.sessions.GetForUpdate(ctx, env.tx, env.student.ID, env.note.ID, nptime.DayString(testNow))
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.ActiveSeconds != 0 {
		t.Fatalf("expected idle gap to credit 0 seconds, got %d", session.ActiveSeconds)
	}
	if session.LastActivityAt == nil || !session.LastActivityAt.Equal(resumed) {
		t.Fatalf("expected session clock refreshed to %v, got %v", resumed, session.LastActivityAt)
	}

	// The next in-window ping measures from the refreshed clock.
	res = env.ping(t, ctx, resumed.Add(60*time.Second))
	if res.PointsAwarded != 6 {
		t.Fatalf("expected 6 points after resuming, got %d", res.PointsAwarded)
	}
}

func TestRecordPingDailyCapStopsCredit(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	env.seedStats(t, ctx, &types.UserStats{
		TotalPoints:        65,
		TodayActiveMinutes: 60,
		CurrentStreak:      1,
		LongestStreak:      1,
		LastStudyDate:      nptime.DayString(testNow),
		CreatedAt:          testNow,
		UpdatedAt:          testNow,
	})
	last := testNow
	session := &types.StudySession{
		ID:             uuid.New(),
		UserID:         env.student.ID,
		NoteID:         env.note.ID,
		DayDate:        nptime.DayString(testNow),
		ActiveSeconds:  3600,
		PointsAwarded:  65,
		LastActivityAt: &last,
	}
	if err := env.sessions.Create(ctx, nil, session); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	res := env.ping(t, ctx, testNow.Add(60*time.Second))
	if res.PointsAwarded != 0 {
		t.Fatalf("expected 0 points at the daily cap, got %d", res.PointsAwarded)
	}
	if res.TodayActiveMinutes != 60 {
		t.Fatalf("expected minutes pinned at 60, got %d", res.TodayActiveMinutes)
	}

	stats := env.mustStats(t, ctx)
	if stats.TotalPoints != 65 {
		t.Fatalf("expected total unchanged at 65, got %d", stats.TotalPoints)
	}
}

func TestRecordPingStreakContinuesAndWeekBonusFires(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	yesterday := nptime.DayString(nptime.AddDays(testNow, -1))
	env.seedStats(t, ctx, &types.UserStats{
		TotalPoints:   100,
		CurrentStreak: 6,
		LongestStreak: 6,
		LastStudyDate: yesterday,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	})

	env.ping(t, ctx, testNow)
	res := env.ping(t, ctx, testNow.Add(60*time.Second))

	// 1 minute point + 5 day bonus + 50 week bonus.
	if res.PointsAwarded != 56 {
		t.Fatalf("expected 56 points at the 7-day milestone, got %d", res.PointsAwarded)
	}

	stats := env.mustStats(t, ctx)
	if stats.CurrentStreak != 7 || stats.LongestStreak != 7 {
		t.Fatalf("expected streak 7/7, got %d/%d", stats.CurrentStreak, stats.LongestStreak)
	}
	if stats.TotalPoints != 156 {
		t.Fatalf("expected total 156, got %d", stats.TotalPoints)
	}
}

func TestRecordPingMonthBonusFiresAtThirty(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	env.seedStats(t, ctx, &types.UserStats{
		CurrentStreak: 29,
		LongestStreak: 29,
		LastStudyDate: nptime.DayString(nptime.AddDays(testNow, -1)),
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	})

	env.ping(t, ctx, testNow)
	res := env.ping(t, ctx, testNow.Add(60*time.Second))

	// 1 minute point + 5 day bonus + 250 month bonus.
	if res.PointsAwarded != 256 {
		t.Fatalf("expected 256 points at the 30-day milestone, got %d", res.PointsAwarded)
	}
	if stats := env.mustStats(t, ctx); stats.CurrentStreak != 30 {
		t.Fatalf("expected streak 30, got %d", stats.CurrentStreak)
	}
}

func TestRecordPingStreakResetsAfterMissedDay(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	env.seedStats(t, ctx, &types.UserStats{
		CurrentStreak: 6,
		LongestStreak: 6,
		LastStudyDate: nptime.DayString(nptime.AddDays(testNow, -3)),
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	})

	env.ping(t, ctx, testNow)
	res := env.ping(t, ctx, testNow.Add(60*time.Second))
	if res.PointsAwarded != 6 {
		t.Fatalf("expected 6 points after a broken streak, got %d", res.PointsAwarded)
	}

	stats := env.mustStats(t, ctx)
	if stats.CurrentStreak != 1 {
		t.Fatalf("expected streak back to 1, got %d", stats.CurrentStreak)
	}
	if stats.LongestStreak != 6 {
		t.Fatalf("expected longest streak preserved at 6, got %d", stats.LongestStreak)
	}
}

func TestRecordPingStreakBonusOncePerDay(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	env.ping(t, ctx, testNow)
	env.ping(t, ctx, testNow.Add(60*time.Second))

	// Crossing the second minute pays the minute point only.
	res := env.ping(t, ctx, testNow.Add(120*time.Second))
	if res.PointsAwarded != 1 {
		t.Fatalf("expected 1 point on the second minute, got %d", res.PointsAwarded)
	}
	if stats := env.mustStats(t, ctx); stats.CurrentStreak != 1 {
		t.Fatalf("expected streak still 1, got %d", stats.CurrentStreak)
	}
}

func TestRecordPingSessionLedgerTracksPoints(t *testing.T) {
	env, ctx := newGamificationEnv(t)

	env.ping(t, ctx, testNow)
	env.ping(t, ctx, testNow.Add(60*time.Second))

	session, err := env.sessions.GetForUpdate(ctx, env.tx, env.student.ID, env.note.ID, nptime.DayString(testNow))
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	// Minute point + base day bonus; milestone bonuses never hit the ledger.
	if session.PointsAwarded != 1+services.StreakDayBonus {
		t.Fatalf("expected session ledger %d, got %d", 1+services.StreakDayBonus, session.PointsAwarded)
	}
	if session.ActiveSeconds != 60 {
		t.Fatalf("expected 60 active seconds, got %d", session.ActiveSeconds)
	}
}
