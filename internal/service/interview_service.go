package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobprep_backend/internal/model"
	"jobprep_backend/internal/repository"
	"jobprep_backend/internal/util"
	"jobprep_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InterviewService struct {
	Repo *repository.InterviewRepository
	AI   *AIService
}

func NewInterviewService(repo *repository.InterviewRepository, ai *AIService) *InterviewService {
	return &InterviewService{Repo: repo, AI: ai}
}

type GenerateInterviewInput struct {
	JobRole         string `json:"jobRole"`
	ExperienceLevel string `json:"experienceLevel"`
	QuestionCount   int    `json:"questionCount"`
}

type GenerateInterviewResult struct {
	SessionID       uint   `json:"sessionId"`
	JobRole         string `json:"jobRole"`
	ExperienceLevel string `json:"experienceLevel"`
	QuestionCount   int    `json:"questionCount"`
}

// PublicQuestion 练习时展示的问题，不含参考答案和提示
type PublicQuestion struct {
	ID           uint               `json:"id"`
	Question     string             `json:"question"`
	QuestionType model.QuestionType `json:"questionType"`
	Order        int                `json:"order"`
}

type SessionDetail struct {
	Session   *model.InterviewSession `json:"session"`
	Questions []PublicQuestion        `json:"questions"`
}

type QuestionDetail struct {
	Question *model.InterviewQuestion `json:"question"`
	Response *model.InterviewResponse `json:"response"`
}

type SubmitAnswerInput struct {
	SessionID  uint   `json:"sessionId"`
	QuestionID uint   `json:"questionId"`
	UserAnswer string `json:"userAnswer"`
}

func (in *GenerateInterviewInput) validate(op string) error {
	in.JobRole = strings.TrimSpace(in.JobRole)
	in.ExperienceLevel = strings.TrimSpace(in.ExperienceLevel)
	if in.JobRole == "" || in.ExperienceLevel == "" {
		return util.E(util.CodeMissingRequiredFields, op, "jobRole and experienceLevel are required", nil)
	}
	if in.QuestionCount == 0 {
		in.QuestionCount = util.DefaultInterviewQuestions
	}
	if in.QuestionCount < 1 || in.QuestionCount > util.MaxInterviewQuestions {
		return util.InvalidInput(op, "questionCount must be between 1 and 50")
	}
	return nil
}

// Generate 生成面试问题，并在一个事务中写入面试和全部问题
func (s *InterviewService) Generate(ctx context.Context, userID uint, in GenerateInterviewInput) (*GenerateInterviewResult, error) {
	const op = "InterviewService.Generate"

	if err := in.validate(op); err != nil {
		return nil, err
	}

	generated, err := s.AI.GenerateInterview(ctx, in.JobRole, in.ExperienceLevel, in.QuestionCount)
	if err != nil {
		return nil, err
	}

	questions := make([]model.InterviewQuestion, len(generated.Questions))
	for i, q := range generated.Questions {
		questions[i] = model.InterviewQuestion{
			Question:     strings.TrimSpace(q.Question),
			QuestionType: q.QuestionType,
			SampleAnswer: q.SampleAnswer,
			Tips:         q.Tips,
		}
	}
	session := &model.InterviewSession{
		JobRole:         in.JobRole,
		ExperienceLevel: in.ExperienceLevel,
		QuestionCount:   len(questions),
		CreatedBy:       userID,
	}
	if err := s.Repo.CreateSessionWithQuestions(ctx, session, questions); err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to save interview session", err)
	}

	logger.Log.Info("Interview session created",
		zap.Uint("session_id", session.ID),
		zap.Uint("user_id", userID),
		zap.Int("questions", len(questions)),
	)
	return &GenerateInterviewResult{
		SessionID:       session.ID,
		JobRole:         session.JobRole,
		ExperienceLevel: session.ExperienceLevel,
		QuestionCount:   session.QuestionCount,
	}, nil
}

func (s *InterviewService) List(ctx context.Context, userID uint) ([]model.InterviewSessionSummary, error) {
	sessions, err := s.Repo.ListSessions(ctx, userID)
	if err != nil {
		return nil, util.E(util.CodeInternal, "InterviewService.List", "Failed to list interview sessions", err)
	}
	return sessions, nil
}

// ownedSession 不存在或不属于当前用户的面试都返回 404
func (s *InterviewService) ownedSession(ctx context.Context, op string, id, userID uint) (*model.InterviewSession, error) {
	session, err := s.Repo.FindSession(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFound(op, "Interview session not found")
		}
		return nil, util.E(util.CodeInternal, op, "Failed to load interview session", err)
	}
	if session.CreatedBy != userID {
		return nil, util.NotFound(op, "Interview session not found")
	}
	return session, nil
}

func (s *InterviewService) Get(ctx context.Context, id, userID uint) (*SessionDetail, error) {
	const op = "InterviewService.Get"

	session, err := s.ownedSession(ctx, op, id, userID)
	if err != nil {
		return nil, err
	}
	questions, err := s.Repo.ListQuestions(ctx, session.ID)
	if err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to load questions", err)
	}

	public := make([]PublicQuestion, len(questions))
	for i, q := range questions {
		public[i] = PublicQuestion{ID: q.ID, Question: q.Question, QuestionType: q.QuestionType, Order: q.Order}
	}
	return &SessionDetail{Session: session, Questions: public}, nil
}

// GetQuestion 返回完整问题（含参考答案和提示）以及当前用户的回答
func (s *InterviewService) GetQuestion(ctx context.Context, questionID, userID uint) (*QuestionDetail, error) {
	const op = "InterviewService.GetQuestion"

	question, err := s.Repo.FindQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFound(op, "Question not found")
		}
		return nil, util.E(util.CodeInternal, op, "Failed to load question", err)
	}
	if _, err := s.ownedSession(ctx, op, question.SessionID, userID); err != nil {
		if util.IsCode(err, util.CodeNotFound) {
			return nil, util.NotFound(op, "Question not found")
		}
		return nil, err
	}

	detail := &QuestionDetail{Question: question}
	response, err := s.Repo.FindResponse(ctx, question.ID, userID)
	switch {
	case err == nil:
		detail.Response = response
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, util.E(util.CodeInternal, op, "Failed to load response", err)
	}
	return detail, nil
}

// SubmitAnswer 同一问题重复提交只更新答案
func (s *InterviewService) SubmitAnswer(ctx context.Context, userID uint, in SubmitAnswerInput) (*model.InterviewResponse, error) {
	const op = "InterviewService.SubmitAnswer"

	in.UserAnswer = strings.TrimSpace(in.UserAnswer)
	if in.SessionID == 0 || in.QuestionID == 0 || in.UserAnswer == "" {
		return nil, util.E(util.CodeMissingRequiredFields, op, "sessionId, questionId and userAnswer are required", nil)
	}

	session, err := s.Repo.FindSession(ctx, in.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFound(op, "Interview session not found")
		}
		return nil, util.E(util.CodeInternal, op, "Failed to load interview session", err)
	}
	if session.CreatedBy != userID {
		return nil, util.E(util.CodeForbidden, op, "Unauthorized", util.ErrPermissionDenied)
	}

	question, err := s.Repo.FindQuestion(ctx, in.QuestionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.E(util.CodeInternal, op, "Failed to load question", err)
	}
	if err != nil || question.SessionID != session.ID {
		return nil, util.NotFound(op, "Question not found in this session")
	}

	response := &model.InterviewResponse{
		SessionID:   session.ID,
		UserID:      userID,
		QuestionID:  question.ID,
		UserAnswer:  in.UserAnswer,
		CompletedAt: time.Now(),
	}
	if err := s.Repo.UpsertResponse(ctx, response); err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to save answer", err)
	}
	return response, nil
}

func (s *InterviewService) Responses(ctx context.Context, sessionID, userID uint) ([]model.QuestionWithResponse, error) {
	const op = "InterviewService.Responses"

	if _, err := s.ownedSession(ctx, op, sessionID, userID); err != nil {
		return nil, err
	}
	rows, err := s.Repo.ListQuestionsWithResponses(ctx, sessionID, userID)
	if err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to load responses", err)
	}
	return rows, nil
}
