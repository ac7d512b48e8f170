package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

// UserPoints is one row of a per-user points aggregate.
type UserPoints struct {
	UserID uuid.UUID `gorm:"column:user_id"`
	Points int       `gorm:"column:points"`
}

type StudySessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.StudySession) error
	Save(ctx context.Context, tx *gorm.DB, session *types.StudySession) error
	// GetForUpdate locks the (user, note, day) row for the duration of the
	// enclosing transaction. Returns nil when no row exists yet.
	GetForUpdate(ctx context.Context, tx *gorm.DB, userID, noteID uuid.UUID, dayDate string) (*types.StudySession, error)
	// SumActiveSecondsForDay totals active seconds across all of a user's
	// sessions for one day (all notes combined).
	SumActiveSecondsForDay(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dayDate string) (int, error)
	// SumPointsByUserInDayRange groups points_awarded by user over an
	// inclusive day-string range, optionally restricted to a user set.
	SumPointsByUserInDayRange(ctx context.Context, tx *gorm.DB, startDay, endDay string, userIDs []uuid.UUID) ([]UserPoints, error)
}

type studySessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudySessionRepo(db *gorm.DB, baseLog *logger.Logger) StudySessionRepo {
	return &studySessionRepo{db: db, log: baseLog.With("repo", "StudySessionRepo")}
}

func (ssr *studySessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.StudySession) error {
	transaction := tx
	if transaction == nil {
		transaction = ssr.db
	}
	return transaction.WithContext(ctx).Create(session).Error
}

func (ssr *studySessionRepo) Save(ctx context.Context, tx *gorm.DB, session *types.StudySession) error {
	transaction := tx
	if transaction == nil {
		transaction = ssr.db
	}
	return transaction.WithContext(ctx).Save(session).Error
}

func (ssr *studySessionRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, userID, noteID uuid.UUID, dayDate string) (*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = ssr.db
	}
	var result types.StudySession
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND note_id = ? AND day_date = ?", userID, noteID, dayDate).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (ssr *studySessionRepo) SumActiveSecondsForDay(ctx context.Context, tx *gorm.DB, userID uuid.UUID, dayDate string) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = ssr.db
	}
	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.StudySession{}).
		Where("user_id = ? AND day_date = ?", userID, dayDate).
		Select("COALESCE(SUM(active_seconds), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

func (ssr *studySessionRepo) SumPointsByUserInDayRange(ctx context.Context, tx *gorm.DB, startDay, endDay string, userIDs []uuid.UUID) ([]UserPoints, error) {
	transaction := tx
	if transaction == nil {
		transaction = ssr.db
	}
	query := transaction.WithContext(ctx).
		Model(&types.StudySession{}).
		Select("user_id, COALESCE(SUM(points_awarded), 0) AS points").
		Where("day_date >= ? AND day_date <= ?", startDay, endDay).
		Group("user_id")
	if userIDs != nil {
		query = query.Where("user_id IN ?", userIDs)
	}
	var results []UserPoints
	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
