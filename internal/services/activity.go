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
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

// Ping event tags. They are accepted for analytics but never change the
// point math.
const (
	PingEventScroll     = "scroll"
	PingEventPageChange = "page_change"
	PingEventChat       = "chat"
	PingEventFocus      = "focus"
)

type PingResult struct {
	PointsAwarded      int `json:"points_awarded"`
	TodayActiveMinutes int `json:"today_active_minutes"`
}

// ActivityService converts the client's throttled "still active" signal
// into bounded study-time credit. The client promises at least 12 seconds
// between pings but is untrusted: the server accepts an elapsed interval
// only when 0 < elapsed <= PingIdleCeilingSeconds, which discards clock
// skew and idle gaps while still refreshing the session clock.
//
// Minute credit is marginal: each ping recomputes the user's total active
// seconds for the day across all notes, converts to capped whole minutes,
// and awards only the positive delta against the stored
// TodayActiveMinutes. Re-pinging inside the same minute awards nothing,
// and parallel sessions on different notes cannot double-count because the
// user_stats row is locked FOR UPDATE before the total is read.
type ActivityService interface {
	RecordPing(ctx context.Context, userID, noteID uuid.UUID, eventType string, now time.Time) (*PingResult, error)
}

type activityService struct {
	db        *gorm.DB
	log       *logger.Logger
	stats     StatsService
	statsRepo repos.UserStatsRepo
	sessions  repos.StudySessionRepo
}

func NewActivityService(
	db *gorm.DB,
	baseLog *logger.Logger,
	statsService StatsService,
	statsRepo repos.UserStatsRepo,
	sessionRepo repos.StudySessionRepo,
) ActivityService {
	return &activityService{
		db:        db,
		log:       baseLog.With("service", "ActivityService"),
		stats:     statsService,
		statsRepo: statsRepo,
		sessions:  sessionRepo,
	}
}

func validPingEvent(eventType string) bool {
	switch eventType {
	case PingEventScroll, PingEventPageChange, PingEventChat, PingEventFocus:
		return true
	default:
		return false
	}
}

func (as *activityService) RecordPing(ctx context.Context, userID, noteID uuid.UUID, eventType string, now time.Time) (*PingResult, error) {
	if !validPingEvent(eventType) {
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	todayDate := nptime.DayString(now)
	yesterdayDate := nptime.DayString(nptime.AddDays(now, -1))

	var result PingResult
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats, err := as.stats.EnsureTodayCounters(ctx, tx, userID, now)
		if err != nil {
			return err
		}

		session, err := as.sessions.GetForUpdate(ctx, tx, userID, noteID, todayDate)
		if err != nil {
			return fmt.Errorf("load study session: %w", err)
		}
		if session == nil {
			lastActivity := now
			session = &types.StudySession{
				ID:             uuid.New(),
				UserID:         userID,
				NoteID:         noteID,
				DayDate:        todayDate,
				LastActivityAt: &lastActivity,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := as.sessions.Create(ctx, tx, session); err != nil {
				return fmt.Errorf("create study session: %w", err)
			}
		} else {
			deltaSeconds := 0
			if session.LastActivityAt != nil {
				elapsed := int(now.Sub(*session.LastActivityAt) / time.Second)
				if elapsed > 0 && elapsed <= PingIdleCeilingSeconds {
					deltaSeconds = elapsed
				}
			}
			lastActivity := now
			session.LastActivityAt = &lastActivity
			if deltaSeconds > 0 {
				session.ActiveSeconds += deltaSeconds
			}
			session.UpdatedAt = now
			// Persist before aggregating so the day total includes the
			// seconds accepted on this ping.
			if err := as.sessions.Save(ctx, tx, session); err != nil {
				return fmt.Errorf("save study session: %w", err)
			}
		}

		totalSeconds, err := as.sessions.SumActiveSecondsForDay(ctx, tx, userID, todayDate)
		if err != nil {
			return fmt.Errorf("sum active seconds: %w", err)
		}
		cappedMinutes := totalSeconds / 60
		if cappedMinutes > MaxActiveMinutesPerDay {
			cappedMinutes = MaxActiveMinutesPerDay
		}

		awarded := 0
		if deltaMinutes := cappedMinutes - stats.TodayActiveMinutes; deltaMinutes > 0 {
			stats.TotalPoints += deltaMinutes
			stats.TodayActiveMinutes = cappedMinutes
			session.PointsAwarded += deltaMinutes
			awarded += deltaMinutes
		}

		if cappedMinutes >= StreakMinMinutes && stats.LastStudyDate != todayDate {
			nextStreak := 1
			if stats.LastStudyDate == yesterdayDate {
				nextStreak = stats.CurrentStreak + 1
			}
			bonus := StreakDayBonus
			if nextStreak == 7 {
				bonus += StreakWeekBonus
			}
			if nextStreak == 30 {
				bonus += StreakMonthBonus
			}
			stats.CurrentStreak = nextStreak
			if nextStreak > stats.LongestStreak {
				stats.LongestStreak = nextStreak
			}
			stats.LastStudyDate = todayDate
			stats.TotalPoints += bonus
			// Milestone bonuses go to the user total only; the session
			// ledger records just the base day bonus.
			session.PointsAwarded += StreakDayBonus
			awarded += bonus
			as.log.Debug("Streak advanced", "user_id", userID, "streak", nextStreak, "bonus", bonus)
		}

		stats.UpdatedAt = now
		if err := as.statsRepo.Save(ctx, tx, stats); err != nil {
			return fmt.Errorf("save user stats: %w", err)
		}
		if awarded > 0 {
			if err := as.sessions.Save(ctx, tx, session); err != nil {
				return fmt.Errorf("save study session: %w", err)
			}
		}

		result = PingResult{
			PointsAwarded:      awarded,
			TodayActiveMinutes: cappedMinutes,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
