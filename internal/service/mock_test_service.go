package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"jobprep_backend/internal/model"
	"jobprep_backend/internal/repository"
	"jobprep_backend/internal/util"
	"jobprep_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MockTestService struct {
	Repo *repository.MockTestRepository
	AI   *AIService
}

func NewMockTestService(repo *repository.MockTestRepository, ai *AIService) *MockTestService {
	return &MockTestService{Repo: repo, AI: ai}
}

type GenerateTestInput struct {
	Topic         string `json:"topic"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"questionCount"`
}

type GenerateRoleTestInput struct {
	JobRole         string `json:"jobRole"`
	ExperienceLevel string `json:"experienceLevel"`
	QuestionCount   int    `json:"questionCount"`
}

type GenerateTestResult struct {
	TestID        uint   `json:"testId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Difficulty    string `json:"difficulty"`
	Duration      int    `json:"duration"`
	QuestionCount int    `json:"questionCount"`
	Topic         string `json:"topic"`
}

// PublicTestQuestion 作答时展示的题目，不含正确答案和解析
type PublicTestQuestion struct {
	ID       uint   `json:"id"`
	Question string `json:"question"`
	OptionA  string `json:"optionA"`
	OptionB  string `json:"optionB"`
	OptionC  string `json:"optionC"`
	OptionD  string `json:"optionD"`
	Order    int    `json:"order"`
}

type TestDetail struct {
	Test      *model.MockTest      `json:"test"`
	Questions []PublicTestQuestion `json:"questions"`
}

type SubmitTestInput struct {
	Answers   map[string]string `json:"answers"`
	TimeTaken *int              `json:"timeTaken"`
}

type QuestionResult struct {
	QuestionID    uint   `json:"questionId"`
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
}

type SubmitTestResult struct {
	ResultID       uint             `json:"resultId"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	Percentage     int              `json:"percentage"`
	TimeTaken      int              `json:"timeTaken"`
	Results        []QuestionResult `json:"results"`
}

type ResultStats struct {
	TotalTests   int `json:"totalTests"`
	AverageScore int `json:"averageScore"`
	BestScore    int `json:"bestScore"`
}

type ResultHistory struct {
	Results []model.TestResultRow `json:"results"`
	Stats   ResultStats           `json:"stats"`
}

type ResultDetail struct {
	Result          *model.TestResult `json:"result"`
	Test            *model.MockTest   `json:"test"`
	Percentage      int               `json:"percentage"`
	DetailedResults []QuestionResult  `json:"detailedResults"`
}

// MockTestDuration 每题 1.5 分钟，向上取整
func MockTestDuration(questionCount int) int {
	return int(math.Ceil(float64(questionCount) * 1.5))
}

func validQuestionCount(op string, count int) error {
	if count < util.MinTestQuestions || count > util.MaxTestQuestions {
		return util.InvalidInput(op, "questionCount must be between 5 and 50")
	}
	return nil
}

func (s *MockTestService) Generate(ctx context.Context, userID uint, in GenerateTestInput) (*GenerateTestResult, error) {
	const op = "MockTestService.Generate"

	in.Topic = strings.TrimSpace(in.Topic)
	in.Difficulty = strings.ToLower(strings.TrimSpace(in.Difficulty))
	if in.Topic == "" || in.Difficulty == "" || in.QuestionCount == 0 {
		return nil, util.E(util.CodeMissingRequiredFields, op, "topic, difficulty and questionCount are required", nil)
	}
	if _, ok := difficultyHints[in.Difficulty]; !ok {
		return nil, util.InvalidInput(op, "difficulty must be easy, medium or hard")
	}
	if err := validQuestionCount(op, in.QuestionCount); err != nil {
		return nil, err
	}

	generated, err := s.AI.GenerateMockTest(ctx, in.Topic, in.Difficulty, in.QuestionCount)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, op, userID, generated, in.Topic, in.Difficulty)
}

// GenerateForRole 按岗位生成测试，topic 记为岗位名，难度固定为 medium
func (s *MockTestService) GenerateForRole(ctx context.Context, userID uint, in GenerateRoleTestInput) (*GenerateTestResult, error) {
	const op = "MockTestService.GenerateForRole"

	in.JobRole = strings.TrimSpace(in.JobRole)
	in.ExperienceLevel = strings.TrimSpace(in.ExperienceLevel)
	if in.JobRole == "" || in.ExperienceLevel == "" || in.QuestionCount == 0 {
		return nil, util.E(util.CodeMissingRequiredFields, op, "jobRole, experienceLevel and questionCount are required", nil)
	}
	if err := validQuestionCount(op, in.QuestionCount); err != nil {
		return nil, err
	}

	generated, err := s.AI.GenerateRoleTest(ctx, in.JobRole, in.ExperienceLevel, in.QuestionCount)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, op, userID, generated, in.JobRole, util.DifficultyMedium)
}

func (s *MockTestService) persist(ctx context.Context, op string, userID uint, generated *GeneratedTest, topic, difficulty string) (*GenerateTestResult, error) {
	questions := make([]model.TestQuestion, len(generated.Questions))
	for i, q := range generated.Questions {
		questions[i] = model.TestQuestion{
			Question:      strings.TrimSpace(q.Question),
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
	}

	title := strings.TrimSpace(generated.Title)
	if title == "" {
		title = topic + " Mock Test"
	}
	test := &model.MockTest{
		Title:       title,
		Description: generated.Description,
		Difficulty:  difficulty,
		Duration:    MockTestDuration(len(questions)),
		Topic:       topic,
		CreatedBy:   userID,
	}
	if err := s.Repo.CreateTestWithQuestions(ctx, test, questions); err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to save test", err)
	}

	logger.Log.Info("Mock test created",
		zap.Uint("test_id", test.ID),
		zap.Uint("user_id", userID),
		zap.Int("questions", len(questions)),
	)
	return &GenerateTestResult{
		TestID:        test.ID,
		Title:         test.Title,
		Description:   test.Description,
		Difficulty:    test.Difficulty,
		Duration:      test.Duration,
		QuestionCount: len(questions),
		Topic:         test.Topic,
	}, nil
}

func (s *MockTestService) List(ctx context.Context, userID uint) ([]model.MockTestSummary, error) {
	tests, err := s.Repo.ListWithCounts(ctx, userID)
	if err != nil {
		return nil, util.E(util.CodeInternal, "MockTestService.List", "Failed to list tests", err)
	}
	return tests, nil
}

func (s *MockTestService) findTest(ctx context.Context, op string, id uint) (*model.MockTest, error) {
	test, err := s.Repo.FindTest(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFound(op, "Test not found")
		}
		return nil, util.E(util.CodeInternal, op, "Failed to load test", err)
	}
	return test, nil
}

func (s *MockTestService) Get(ctx context.Context, id uint) (*TestDetail, error) {
	const op = "MockTestService.Get"

	test, err := s.findTest(ctx, op, id)
	if err != nil {
		return nil, err
	}
	questions, err := s.Repo.ListQuestions(ctx, test.ID)
	if err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to load questions", err)
	}

	public := make([]PublicTestQuestion, len(questions))
	for i, q := range questions {
		public[i] = PublicTestQuestion{
			ID:       q.ID,
			Question: q.Question,
			OptionA:  q.OptionA,
			OptionB:  q.OptionB,
			OptionC:  q.OptionC,
			OptionD:  q.OptionD,
			Order:    q.Order,
		}
	}
	return &TestDetail{Test: test, Questions: public}, nil
}

// grade 逐题判分，未作答按错误计
func grade(questions []model.TestQuestion, answers map[string]string) (int, []QuestionResult) {
	score := 0
	results := make([]QuestionResult, len(questions))
	for i, q := range questions {
		answer := strings.ToUpper(strings.TrimSpace(answers[strconv.FormatUint(uint64(q.ID), 10)]))
		correct := answer != "" && answer == q.CorrectAnswer
		if correct {
			score++
		}
		results[i] = QuestionResult{
			QuestionID:    q.ID,
			Question:      q.Question,
			UserAnswer:    answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     correct,
			Explanation:   q.Explanation,
		}
	}
	return score, results
}

func (s *MockTestService) Submit(ctx context.Context, testID, userID uint, in SubmitTestInput) (*SubmitTestResult, error) {
	const op = "MockTestService.Submit"

	if in.TimeTaken == nil {
		return nil, util.E(util.CodeMissingRequiredFields, op, "timeTaken is required", nil)
	}
	if *in.TimeTaken < 0 {
		return nil, util.InvalidInput(op, "timeTaken must not be negative")
	}
	if in.Answers == nil {
		in.Answers = map[string]string{}
	}

	test, err := s.findTest(ctx, op, testID)
	if err != nil {
		return nil, err
	}
	questions, err := s.Repo.ListQuestions(ctx, test.ID)
	if err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to load questions", err)
	}

	score, results := grade(questions, in.Answers)
	answers, err := json.Marshal(in.Answers)
	if err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to save result", err)
	}

	result := &model.TestResult{
		TestID:         test.ID,
		UserID:         userID,
		Score:          score,
		TotalQuestions: len(questions),
		TimeTaken:      *in.TimeTaken,
		Answers:        datatypes.JSON(answers),
	}
	if err := s.Repo.CreateResult(ctx, result); err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to save result", err)
	}

	return &SubmitTestResult{
		ResultID:       result.ID,
		Score:          score,
		TotalQuestions: len(questions),
		Percentage:     result.Percentage(),
		TimeTaken:      result.TimeTaken,
		Results:        results,
	}, nil
}

func (s *MockTestService) Results(ctx context.Context, userID uint) (*ResultHistory, error) {
	rows, err := s.Repo.ListResults(ctx, userID)
	if err != nil {
		return nil, util.E(util.CodeInternal, "MockTestService.Results", "Failed to load results", err)
	}

	history := &ResultHistory{Results: rows, Stats: ResultStats{TotalTests: len(rows)}}
	if len(rows) > 0 {
		sum := 0
		for _, r := range rows {
			sum += r.Percentage
			if r.Percentage > history.Stats.BestScore {
				history.Stats.BestScore = r.Percentage
			}
		}
		history.Stats.AverageScore = int(math.Round(float64(sum) / float64(len(rows))))
	}
	return history, nil
}

// Result 单次作答详情，不是本人的记录按不存在处理
func (s *MockTestService) Result(ctx context.Context, resultID, userID uint) (*ResultDetail, error) {
	const op = "MockTestService.Result"

	result, err := s.Repo.FindResult(ctx, resultID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFound(op, "Result not found")
		}
		return nil, util.E(util.CodeInternal, op, "Failed to load result", err)
	}
	if result.UserID != userID {
		return nil, util.NotFound(op, "Result not found")
	}

	test, err := s.findTest(ctx, op, result.TestID)
	if err != nil {
		return nil, err
	}
	questions, err := s.Repo.ListQuestions(ctx, test.ID)
	if err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to load questions", err)
	}

	answers := map[string]string{}
	if len(result.Answers) > 0 {
		if err := json.Unmarshal(result.Answers, &answers); err != nil {
			return nil, util.E(util.CodeInternal, op, "Failed to read answers", err)
		}
	}
	_, detailed := grade(questions, answers)

	return &ResultDetail{
		Result:          result,
		Test:            test,
		Percentage:      result.Percentage(),
		DetailedResults: detailed,
	}, nil
}
