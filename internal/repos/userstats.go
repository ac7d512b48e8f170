package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

type UserStatsRepo interface {
	// Insert creates the row if absent; a concurrent insert loses the race
	// silently (ON CONFLICT DO NOTHING on the user_id key).
	Insert(ctx context.Context, tx *gorm.DB, stats *types.UserStats) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error)
	// GetByUserIDForUpdate takes a row-level lock so concurrent pings for the
	// same user serialize before reading today's totals.
	GetByUserIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error)
	Save(ctx context.Context, tx *gorm.DB, stats *types.UserStats) error
}

type userStatsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserStatsRepo(db *gorm.DB, baseLog *logger.Logger) UserStatsRepo {
	return &userStatsRepo{db: db, log: baseLog.With("repo", "UserStatsRepo")}
}

func (sr *userStatsRepo) Insert(ctx context.Context, tx *gorm.DB, stats *types.UserStats) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(stats).Error
}

func (sr *userStatsRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var result types.UserStats
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *userStatsRepo) GetByUserIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var result types.UserStats
	err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *userStatsRepo) Save(ctx context.Context, tx *gorm.DB, stats *types.UserStats) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Save(stats).Error
}
