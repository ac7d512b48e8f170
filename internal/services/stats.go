package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/nptime"
	"github.com/sikshyahq/sikshya-backend/internal/repos"
	"github.com/sikshyahq/sikshya-backend/internal/requestdata"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

// StatsService owns the user_stats row: lazy creation, the once-per-day
// counter reset, and the read-only projection. There is no scheduled
// rollover job; a new day is detected on the next write by comparing the
// Nepal day of `now` against the day of the row's UpdatedAt.
type StatsService interface {
	// EnsureUserStats creates the row if missing and returns it locked FOR
	// UPDATE within tx, serializing concurrent writers for the same user.
	EnsureUserStats(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) (*types.UserStats, error)
	// EnsureTodayCounters additionally zeroes TodayActiveMinutes and
	// TodayChatCount when a new calendar day has begun since the last touch.
	// Streak fields are untouched by the reset.
	EnsureTodayCounters(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) (*types.UserStats, error)
	// GetMyStats returns the caller's row, or zeroed defaults without
	// creating one.
	GetMyStats(ctx context.Context) (*types.UserStats, error)
}

type statsService struct {
	db        *gorm.DB
	log       *logger.Logger
	statsRepo repos.UserStatsRepo
}

func NewStatsService(db *gorm.DB, baseLog *logger.Logger, statsRepo repos.UserStatsRepo) StatsService {
	return &statsService{
		db:        db,
		log:       baseLog.With("service", "StatsService"),
		statsRepo: statsRepo,
	}
}

func (ss *statsService) EnsureUserStats(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) (*types.UserStats, error) {
	stats, err := ss.statsRepo.GetByUserIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user stats: %w", err)
	}
	if stats != nil {
		return stats, nil
	}

	fresh := &types.UserStats{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ss.statsRepo.Insert(ctx, tx, fresh); err != nil {
		return nil, fmt.Errorf("insert user stats: %w", err)
	}

	// A concurrent insert may have won the race; re-read under the lock
	// either way so the caller holds the authoritative row.
	stats, err = ss.statsRepo.GetByUserIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user stats: %w", err)
	}
	if stats == nil {
		return nil, fmt.Errorf("user stats row missing after insert for user %s", userID)
	}
	return stats, nil
}

func (ss *statsService) EnsureTodayCounters(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) (*types.UserStats, error) {
	stats, err := ss.EnsureUserStats(ctx, tx, userID, now)
	if err != nil {
		return nil, err
	}

	if nptime.DayString(now) == nptime.DayString(stats.UpdatedAt) {
		return stats, nil
	}

	stats.TodayActiveMinutes = 0
	stats.TodayChatCount = 0
	stats.UpdatedAt = now
	if err := ss.statsRepo.Save(ctx, tx, stats); err != nil {
		return nil, fmt.Errorf("reset daily counters: %w", err)
	}
	ss.log.Debug("Daily counters reset", "user_id", userID, "day", nptime.DayString(now))
	return stats, nil
}

func (ss *statsService) GetMyStats(ctx context.Context) (*types.UserStats, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	stats, err := ss.statsRepo.GetByUserID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user stats: %w", err)
	}
	if stats == nil {
		return &types.UserStats{UserID: rd.UserID}, nil
	}
	return stats, nil
}
