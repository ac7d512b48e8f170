package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

// UserCompletionCount is one row of a per-user completion aggregate.
type UserCompletionCount struct {
	UserID uuid.UUID `gorm:"column:user_id"`
	Count  int       `gorm:"column:count"`
}

type NoteCompletionRepo interface {
	// Create is idempotent on (user_id, note_id); completing twice is a no-op.
	Create(ctx context.Context, tx *gorm.DB, completion *types.NoteCompletion) error
	// CountByUserInRange groups completions by user over a UTC instant range
	// [from, to), optionally restricted to a user set.
	CountByUserInRange(ctx context.Context, tx *gorm.DB, from, to time.Time, userIDs []uuid.UUID) ([]UserCompletionCount, error)
}

type noteCompletionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteCompletionRepo(db *gorm.DB, baseLog *logger.Logger) NoteCompletionRepo {
	return &noteCompletionRepo{db: db, log: baseLog.With("repo", "NoteCompletionRepo")}
}

func (ncr *noteCompletionRepo) Create(ctx context.Context, tx *gorm.DB, completion *types.NoteCompletion) error {
	transaction := tx
	if transaction == nil {
		transaction = ncr.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "note_id"}},
			DoNothing: true,
		}).
		Create(completion).Error
}

func (ncr *noteCompletionRepo) CountByUserInRange(ctx context.Context, tx *gorm.DB, from, to time.Time, userIDs []uuid.UUID) ([]UserCompletionCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = ncr.db
	}
	query := transaction.WithContext(ctx).
		Model(&types.NoteCompletion{}).
		Select("user_id, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("user_id")
	if userIDs != nil {
		query = query.Where("user_id IN ?", userIDs)
	}
	var results []UserCompletionCount
	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
