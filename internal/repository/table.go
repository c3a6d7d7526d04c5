package repository

import (
	"context"

	"gorm.io/gorm"
)

// 通用表操作。table 和 column 只能来自代码常量，不能来自用户输入

func SelectAll[T any](ctx context.Context, db *gorm.DB, table string, columns ...string) ([]T, error) {
	rows := make([]T, 0)
	query := db.WithContext(ctx).Table(table)
	if len(columns) > 0 {
		query = query.Select(columns)
	}
	err := query.Order("id asc").Find(&rows).Error
	return rows, err
}

func SelectColumn[T any](ctx context.Context, db *gorm.DB, table, column string) ([]T, error) {
	values := make([]T, 0)
	err := db.WithContext(ctx).Table(table).Order("id asc").Pluck(column, &values).Error
	return values, err
}

func Insert[T any](ctx context.Context, db *gorm.DB, table string, row *T) error {
	return db.WithContext(ctx).Table(table).Create(row).Error
}
