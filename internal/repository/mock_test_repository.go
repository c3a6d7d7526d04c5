package repository

import (
	"context"
	"jobprep_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MockTestRepository struct {
	DB *gorm.DB
}

func NewMockTestRepository(db *gorm.DB) *MockTestRepository {
	return &MockTestRepository{DB: db}
}

// CreateTestWithQuestions 在同一事务中写入测试和全部题目
func (r *MockTestRepository) CreateTestWithQuestions(ctx context.Context, test *model.MockTest, questions []model.TestQuestion) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(test).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].TestID = test.ID
			questions[i].Order = i + 1
		}
		if len(questions) == 0 {
			return nil
		}
		return tx.CreateInBatches(questions, childBatchSize).Error
	})
}

// ListWithCounts 所有测试按创建时间倒序，附带题目数和当前用户的作答次数
func (r *MockTestRepository) ListWithCounts(ctx context.Context, userID uint) ([]model.MockTestSummary, error) {
	rows := make([]model.MockTestSummary, 0)
	err := r.DB.WithContext(ctx).Table("mock_tests t").
		Select("t.id, t.title, t.description, t.difficulty, t.duration, t.topic, t.created_at, "+
			"(SELECT COUNT(*) FROM test_questions q WHERE q.test_id = t.id) AS question_count, "+
			"(SELECT COUNT(*) FROM test_results tr WHERE tr.test_id = t.id AND tr.user_id = ?) AS attempt_count", userID).
		Order("t.created_at desc, t.id desc").
		Scan(&rows).Error
	return rows, err
}

func (r *MockTestRepository) FindTest(ctx context.Context, id uint) (*model.MockTest, error) {
	var test model.MockTest
	err := r.DB.WithContext(ctx).First(&test, id).Error
	return &test, err
}

func (r *MockTestRepository) ListQuestions(ctx context.Context, testID uint) ([]model.TestQuestion, error) {
	questions := make([]model.TestQuestion, 0)
	err := r.DB.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("order_index asc").
		Find(&questions).Error
	return questions, err
}

func (r *MockTestRepository) CreateResult(ctx context.Context, result *model.TestResult) error {
	return Insert(ctx, r.DB, result.TableName(), result)
}

func (r *MockTestRepository) FindResult(ctx context.Context, id uint) (*model.TestResult, error) {
	var result model.TestResult
	err := r.DB.WithContext(ctx).First(&result, id).Error
	return &result, err
}

// ListResults 用户的全部作答记录，最新的在前
func (r *MockTestRepository) ListResults(ctx context.Context, userID uint) ([]model.TestResultRow, error) {
	rows := make([]model.TestResultRow, 0)
	err := r.DB.WithContext(ctx).Table("test_results tr").
		Select("tr.id, tr.test_id, t.title, t.topic, t.difficulty, tr.score, tr.total_questions, tr.time_taken, tr.completed_at").
		Joins("JOIN mock_tests t ON t.id = tr.test_id").
		Where("tr.user_id = ?", userID).
		Order("tr.completed_at desc, tr.id desc").
		Scan(&rows).Error
	for i := range rows {
		rows[i].Percentage = model.Percentage(rows[i].Score, rows[i].TotalQuestions)
	}
	return rows, err
}
