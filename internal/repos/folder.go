package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/types"
)

type FolderRepo interface {
	Create(ctx context.Context, tx *gorm.DB, folders []*types.Folder) ([]*types.Folder, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, folderIDs []uuid.UUID) ([]*types.Folder, error)
	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Folder, error)
	Delete(ctx context.Context, tx *gorm.DB, folderID uuid.UUID) error
}

type folderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFolderRepo(db *gorm.DB, baseLog *logger.Logger) FolderRepo {
	return &folderRepo{db: db, log: baseLog.With("repo", "FolderRepo")}
}

func (fr *folderRepo) Create(ctx context.Context, tx *gorm.DB, folders []*types.Folder) ([]*types.Folder, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	if len(folders) == 0 {
		return []*types.Folder{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

func (fr *folderRepo) GetByIDs(ctx context.Context, tx *gorm.DB, folderIDs []uuid.UUID) ([]*types.Folder, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.Folder
	if len(folderIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", folderIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *folderRepo) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Folder, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.Folder
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *folderRepo) Delete(ctx context.Context, tx *gorm.DB, folderID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", folderID).
		Delete(&types.Folder{}).Error
}
