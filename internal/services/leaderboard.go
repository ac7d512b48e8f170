package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sikshyahq/sikshya-backend/internal/clients/redis"
	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/nptime"
	"github.com/sikshyahq/sikshya-backend/internal/repos"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

const (
	LeaderboardScopeGlobal = "global"
	LeaderboardScopeClass  = "class"

	leaderboardCacheTTL = time.Minute
)

type LeaderboardUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image"`
}

type LeaderboardEntry struct {
	UserID uuid.UUID        `json:"user_id"`
	Points int              `json:"points"`
	User   *LeaderboardUser `json:"user"`
}

// LeaderboardService ranks students by points earned in the trailing 7-day
// window (inclusive of today): study-session points bucketed by Nepal day
// string, plus CompletionBonus per note completion bucketed by the
// equivalent UTC instant range. Reads are untransacted and may be served
// from a short-TTL Redis snapshot; staleness is acceptable here.
type LeaderboardService interface {
	GetWeekly(ctx context.Context, scope string, courseID *uuid.UUID, now time.Time) ([]LeaderboardEntry, error)
}

type leaderboardService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessions    repos.StudySessionRepo
	completions repos.NoteCompletionRepo
	enrollments repos.EnrollmentRepo
	users       repos.UserRepo
	cache       redis.Cache
}

func NewLeaderboardService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessionRepo repos.StudySessionRepo,
	completionRepo repos.NoteCompletionRepo,
	enrollmentRepo repos.EnrollmentRepo,
	userRepo repos.UserRepo,
	cache redis.Cache,
) LeaderboardService {
	return &leaderboardService{
		db:          db,
		log:         baseLog.With("service", "LeaderboardService"),
		sessions:    sessionRepo,
		completions: completionRepo,
		enrollments: enrollmentRepo,
		users:       userRepo,
		cache:       cache,
	}
}

func (ls *leaderboardService) GetWeekly(ctx context.Context, scope string, courseID *uuid.UUID, now time.Time) ([]LeaderboardEntry, error) {
	var scopedUserIDs []uuid.UUID
	cacheKey := "leaderboard:weekly:global"

	switch scope {
	case LeaderboardScopeGlobal:
	case LeaderboardScopeClass:
		if courseID == nil || *courseID == uuid.Nil {
			return nil, fmt.Errorf("class scope requires a course id")
		}
		userIDs, err := ls.enrollments.GetUserIDsByCourse(ctx, nil, *courseID)
		if err != nil {
			return nil, fmt.Errorf("load enrollments: %w", err)
		}
		if len(userIDs) == 0 {
			return []LeaderboardEntry{}, nil
		}
		scopedUserIDs = userIDs
		cacheKey = "leaderboard:weekly:course:" + courseID.String()
	default:
		return nil, fmt.Errorf("unknown leaderboard scope %q", scope)
	}

	if entries, ok := ls.fromCache(ctx, cacheKey); ok {
		return entries, nil
	}

	todayDate := nptime.DayString(now)
	startDate := nptime.DayString(nptime.AddDays(now, -6))

	sessionPoints, err := ls.sessions.SumPointsByUserInDayRange(ctx, nil, startDate, todayDate, scopedUserIDs)
	if err != nil {
		return nil, fmt.Errorf("sum session points: %w", err)
	}

	from, err := nptime.StartOfDayUTC(startDate)
	if err != nil {
		return nil, err
	}
	to, err := nptime.EndOfDayUTCExclusive(todayDate)
	if err != nil {
		return nil, err
	}
	completionCounts, err := ls.completions.CountByUserInRange(ctx, nil, from, to, scopedUserIDs)
	if err != nil {
		return nil, fmt.Errorf("count completions: %w", err)
	}

	totals := make(map[uuid.UUID]int, len(sessionPoints))
	for _, sp := range sessionPoints {
		totals[sp.UserID] += sp.Points
	}
	for _, cc := range completionCounts {
		totals[cc.UserID] += cc.Count * CompletionBonus
	}
	if len(totals) == 0 {
		return []LeaderboardEntry{}, nil
	}

	ranked := make([]LeaderboardEntry, 0, len(totals))
	for userID, points := range totals {
		ranked = append(ranked, LeaderboardEntry{UserID: userID, Points: points})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		return ranked[i].UserID.String() < ranked[j].UserID.String()
	})
	if len(ranked) > LeaderboardSize {
		ranked = ranked[:LeaderboardSize]
	}

	entries, err := ls.hydrateStudents(ctx, ranked)
	if err != nil {
		return nil, err
	}

	ls.toCache(ctx, cacheKey, entries)
	return entries, nil
}

// hydrateStudents attaches display info and silently drops entries whose
// user is missing or not a student. Dropped slots are not backfilled.
func (ls *leaderboardService) hydrateStudents(ctx context.Context, ranked []LeaderboardEntry) ([]LeaderboardEntry, error) {
	userIDs := make([]uuid.UUID, 0, len(ranked))
	for _, e := range ranked {
		userIDs = append(userIDs, e.UserID)
	}
	users, err := ls.users.GetByIDs(ctx, nil, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	byID := make(map[uuid.UUID]*types.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	entries := make([]LeaderboardEntry, 0, len(ranked))
	for _, e := range ranked {
		u, ok := byID[e.UserID]
		if !ok || u.Role != types.RoleStudent {
			continue
		}
		e.User = &LeaderboardUser{
			ID:    u.ID,
			Name:  u.FullName(),
			Image: u.AvatarURL,
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (ls *leaderboardService) fromCache(ctx context.Context, key string) ([]LeaderboardEntry, bool) {
	if ls.cache == nil {
		return nil, false
	}
	raw, hit, err := ls.cache.Get(ctx, key)
	if err != nil {
		ls.log.Warn("Leaderboard cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		ls.log.Warn("Leaderboard cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return entries, true
}

func (ls *leaderboardService) toCache(ctx context.Context, key string, entries []LeaderboardEntry) {
	if ls.cache == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := ls.cache.Set(ctx, key, raw, leaderboardCacheTTL); err != nil {
		ls.log.Warn("Leaderboard cache write failed", "key", key, "error", err)
	}
}
