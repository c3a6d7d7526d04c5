package repository

import (
	"context"
	"jobprep_backend/internal/model"

	"gorm.io/gorm"
)

type CVRepository struct {
	DB *gorm.DB
}

func NewCVRepository(db *gorm.DB) *CVRepository {
	return &CVRepository{DB: db}
}

func (r *CVRepository) Create(ctx context.Context, cv *model.CV) error {
	return r.DB.WithContext(ctx).Create(cv).Error
}

func (r *CVRepository) FindByID(ctx context.Context, id uint) (*model.CV, error) {
	var cv model.CV
	err := r.DB.WithContext(ctx).First(&cv, id).Error
	return &cv, err
}

func (r *CVRepository) FindByIDAndOwner(ctx context.Context, id, userID uint) (*model.CV, error) {
	var cv model.CV
	err := r.DB.WithContext(ctx).Where("id = ? AND created_by = ?", id, userID).First(&cv).Error
	return &cv, err
}

// ListByOwner 列表不返回原文和完整结构
func (r *CVRepository) ListByOwner(ctx context.Context, userID uint) ([]model.CV, error) {
	cvs := make([]model.CV, 0)
	err := r.DB.WithContext(ctx).
		Select("id", "full_name", "email", "phone", "location", "summary", "created_by", "created_at", "updated_at").
		Where("created_by = ?", userID).
		Order("created_at desc, id desc").
		Find(&cvs).Error
	return cvs, err
}

func (r *CVRepository) Update(ctx context.Context, cv *model.CV) error {
	return r.DB.WithContext(ctx).Model(cv).Select(
		"original_content", "full_name", "email", "phone", "location", "summary", "document",
	).Updates(cv).Error
}

func (r *CVRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&model.CV{}, id).Error
}
