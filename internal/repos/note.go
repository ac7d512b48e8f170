package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

type NoteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, notes []*types.Note) ([]*types.Note, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, noteIDs []uuid.UUID) ([]*types.Note, error)
	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Note, error)
	Delete(ctx context.Context, tx *gorm.DB, noteID uuid.UUID) error
}

type noteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return &noteRepo{db: db, log: baseLog.With("repo", "NoteRepo")}
}

func (nr *noteRepo) Create(ctx context.Context, tx *gorm.DB, notes []*types.Note) ([]*types.Note, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	if len(notes) == 0 {
		return []*types.Note{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (nr *noteRepo) GetByIDs(ctx context.Context, tx *gorm.DB, noteIDs []uuid.UUID) ([]*types.Note, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	var results []*types.Note
	if len(noteIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", noteIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (nr *noteRepo) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Note, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	var results []*types.Note
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (nr *noteRepo) Delete(ctx context.Context, tx *gorm.DB, noteID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", noteID).
		Delete(&types.Note{}).Error
}
