package repository

import (
	"context"
	"jobprep_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const childBatchSize = 100

type InterviewRepository struct {
	DB *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) *InterviewRepository {
	return &InterviewRepository{DB: db}
}

// CreateSessionWithQuestions 在同一事务中写入面试和全部问题，任意一条失败整体回滚
func (r *InterviewRepository) CreateSessionWithQuestions(ctx context.Context, session *model.InterviewSession, questions []model.InterviewQuestion) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(session).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].SessionID = session.ID
			questions[i].Order = i + 1
		}
		if len(questions) == 0 {
			return nil
		}
		return tx.CreateInBatches(questions, childBatchSize).Error
	})
}

func (r *InterviewRepository) FindSession(ctx context.Context, id uint) (*model.InterviewSession, error) {
	var session model.InterviewSession
	err := r.DB.WithContext(ctx).First(&session, id).Error
	return &session, err
}

// ListSessions 返回用户的面试列表，附带已回答题数
func (r *InterviewRepository) ListSessions(ctx context.Context, userID uint) ([]model.InterviewSessionSummary, error) {
	rows := make([]model.InterviewSessionSummary, 0)
	err := r.DB.WithContext(ctx).Table("interview_sessions s").
		Select("s.id, s.job_role, s.experience_level, s.question_count, s.created_at, "+
			"(SELECT COUNT(*) FROM interview_responses r WHERE r.session_id = s.id AND r.user_id = ?) AS answered_count", userID).
		Where("s.created_by = ?", userID).
		Order("s.created_at desc, s.id desc").
		Scan(&rows).Error
	return rows, err
}

func (r *InterviewRepository) ListQuestions(ctx context.Context, sessionID uint) ([]model.InterviewQuestion, error) {
	questions := make([]model.InterviewQuestion, 0)
	err := r.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("order_index asc").
		Find(&questions).Error
	return questions, err
}

func (r *InterviewRepository) FindQuestion(ctx context.Context, id uint) (*model.InterviewQuestion, error) {
	var question model.InterviewQuestion
	err := r.DB.WithContext(ctx).First(&question, id).Error
	return &question, err
}

// UpsertResponse 依赖 (question_id, user_id) 唯一索引，重复提交只更新答案
func (r *InterviewRepository) UpsertResponse(ctx context.Context, response *model.InterviewResponse) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"session_id", "user_answer", "completed_at"}),
	}).Create(response).Error
}

func (r *InterviewRepository) FindResponse(ctx context.Context, questionID, userID uint) (*model.InterviewResponse, error) {
	var response model.InterviewResponse
	err := r.DB.WithContext(ctx).
		Where("question_id = ? AND user_id = ?", questionID, userID).
		First(&response).Error
	return &response, err
}

// ListQuestionsWithResponses 面试的全部问题左连接当前用户的回答
func (r *InterviewRepository) ListQuestionsWithResponses(ctx context.Context, sessionID, userID uint) ([]model.QuestionWithResponse, error) {
	rows := make([]model.QuestionWithResponse, 0)
	err := r.DB.WithContext(ctx).Table("interview_questions q").
		Select("q.id AS question_id, q.question, q.question_type, q.sample_answer, q.tips, q.order_index, "+
			"r.user_answer, r.completed_at").
		Joins("LEFT JOIN interview_responses r ON r.question_id = q.id AND r.user_id = ?", userID).
		Where("q.session_id = ?", sessionID).
		Order("q.order_index asc").
		Scan(&rows).Error
	return rows, err
}
