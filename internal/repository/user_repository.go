package repository

import (
	"context"
	"jobprep_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return Insert(ctx, r.DB, user.TableName(), user)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return &user, err
}

// ListSafe 只读取白名单列，密码不会被查询
func (r *UserRepository) ListSafe(ctx context.Context) ([]model.UserSummary, error) {
	return SelectAll[model.UserSummary](ctx, r.DB, model.User{}.TableName(), model.UserSummaryColumns...)
}

func (r *UserRepository) ListEmails(ctx context.Context) ([]string, error) {
	return SelectColumn[string](ctx, r.DB, model.User{}.TableName(), "email")
}
