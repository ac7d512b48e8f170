package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

type EnrollmentRepo interface {
	// Create is idempotent on (course_id, user_id); re-enrolling is a no-op.
	Create(ctx context.Context, tx *gorm.DB, enrollments []*types.Enrollment) error
	GetUserIDsByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]uuid.UUID, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Enrollment, error)
	Exists(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID) (bool, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (er *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, enrollments []*types.Enrollment) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if len(enrollments) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&enrollments).Error
}

func (er *enrollmentRepo) GetUserIDsByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var userIDs []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("course_id = ?", courseID).
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (er *enrollmentRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var results []*types.Enrollment
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *enrollmentRepo) Exists(ctx context.Context, tx *gorm.DB, courseID, userID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
