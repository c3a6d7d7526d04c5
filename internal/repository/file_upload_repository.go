package repository

import (
	"context"
	"jobprep_backend/internal/model"

	"gorm.io/gorm"
)

type FileUploadRepository struct {
	DB *gorm.DB
}

func NewFileUploadRepository(db *gorm.DB) *FileUploadRepository {
	return &FileUploadRepository{DB: db}
}

func (r *FileUploadRepository) Create(ctx context.Context, upload *model.FileUpload) error {
	return Insert(ctx, r.DB, upload.TableName(), upload)
}

func (r *FileUploadRepository) FindByID(ctx context.Context, id uint) (*model.FileUpload, error) {
	var upload model.FileUpload
	err := r.DB.WithContext(ctx).First(&upload, id).Error
	return &upload, err
}

func (r *FileUploadRepository) FindByFileName(ctx context.Context, fileName string) (*model.FileUpload, error) {
	var upload model.FileUpload
	err := r.DB.WithContext(ctx).Where("file_name = ?", fileName).First(&upload).Error
	return &upload, err
}

// ListByUser 按上传时间倒序
func (r *FileUploadRepository) ListByUser(ctx context.Context, userID uint) ([]model.FileUpload, error) {
	uploads := make([]model.FileUpload, 0)
	err := r.DB.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("created_at desc, id desc").
		Find(&uploads).Error
	return uploads, err
}
