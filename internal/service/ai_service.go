package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"jobprep_backend/internal/config"
	"jobprep_backend/internal/model"
	"jobprep_backend/internal/util"
	"jobprep_backend/pkg/logger"
	"jobprep_backend/pkg/monitoring"
	"jobprep_backend/pkg/tracing"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultGenerationTimeout = 120 * time.Second
	previewLength            = 500
)

var validAnswers = map[string]bool{"A": true, "B": true, "C": true, "D": true}

// AIService 生成客户端：渲染提示词、调用模型、清洗并解析输出
type AIService struct {
	provider Provider

	mu        sync.RWMutex
	model     string
	maxTokens int
	timeout   time.Duration
}

func NewAIService(cfg config.AIConfig, provider Provider) *AIService {
	s := &AIService{provider: provider}
	s.UpdateConfig(cfg)
	return s
}

// UpdateConfig 配置热更新时调用，只影响之后的请求
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = cfg.Model
	s.maxTokens = cfg.MaxTokens
	s.timeout = cfg.Timeout()
	if s.timeout <= 0 {
		s.timeout = defaultGenerationTimeout
	}
}

func (s *AIService) settings(op string) (string, int, time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	maxTokens := s.maxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxToken
		if n, ok := operationMaxTokens[op]; ok {
			maxTokens = n
		}
	}
	return s.model, maxTokens, s.timeout
}

// CleanGeneratedText 去掉 markdown 代码块标记和首尾空白
func CleanGeneratedText(text string) string {
	for _, fence := range []string{"```json\n", "```json", "```\n", "```"} {
		text = strings.ReplaceAll(text, fence, "")
	}
	return strings.TrimSpace(text)
}

func decodeGenerated[T any](raw string) (T, error) {
	var out T
	cleaned := CleanGeneratedText(raw)
	if !gjson.Valid(cleaned) {
		return out, errors.New("output is not valid JSON")
	}
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return out, err
	}
	return out, nil
}

func preview(s string) string {
	if len(s) <= previewLength {
		return s
	}
	return s[:previewLength]
}

func parseError(op string, err error) error {
	return util.E(util.CodeGenerationParse, op, "Failed to parse generated content", fmt.Errorf("%w: %w", util.ErrGenerationParse, err))
}

// generate 一次完整的生成调用：渲染、调用、解析、校验，只调用一次，不重试
func generate[T any](ctx context.Context, s *AIService, op string, data any, validate func(*T) error) (*T, error) {
	prompt, err := renderPrompt(op, data)
	if err != nil {
		return nil, util.E(util.CodeInternal, op, "Internal server error", err)
	}

	modelName, maxTokens, timeout := s.settings(op)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := tracing.Tracer.Start(ctx, "generation."+op, trace.WithAttributes(
		attribute.String("generation.model", modelName),
		attribute.Int("generation.max_tokens", maxTokens),
	))
	defer span.End()

	start := time.Now()
	raw, err := s.provider.Complete(ctx, Completion{
		Operation: op,
		Model:     modelName,
		Prompt:    prompt,
		MaxTokens: maxTokens,
	})
	if err != nil {
		elapsed := time.Since(start)
		monitoring.ObserveGeneration(op, "failed", elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		logger.Log.Warn("Generation call failed",
			zap.String("operation", op),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, util.E(util.CodeGenerationFailed, op, "Failed to generate content", fmt.Errorf("%w: %w", util.ErrGenerationFailed, err))
	}

	out, err := decodeGenerated[T](raw)
	if err == nil && validate != nil {
		err = validate(&out)
	}
	elapsed := time.Since(start)
	if err != nil {
		monitoring.ObserveGeneration(op, "parse_failed", elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation output rejected")
		logger.Log.Warn("Generation output rejected",
			zap.String("operation", op),
			zap.String("preview", preview(raw)),
			zap.Error(err),
		)
		return nil, parseError(op, err)
	}

	monitoring.ObserveGeneration(op, "ok", elapsed)
	logger.Log.Debug("Generation call succeeded", zap.String("operation", op), zap.Duration("elapsed", elapsed))
	return &out, nil
}

type cvPromptData struct {
	CV       string
	JobBrief string
}

func cvPrompt(cv *model.CVDocument, jobBrief string) (cvPromptData, error) {
	doc, err := prettyJSON(cv)
	if err != nil {
		return cvPromptData{}, err
	}
	return cvPromptData{CV: doc, JobBrief: jobBrief}, nil
}

func normalizeCV(d *model.CVDocument) error {
	d.Normalize()
	return nil
}

func (s *AIService) ParseCV(ctx context.Context, text string) (*model.CVDocument, error) {
	return generate(ctx, s, OpParseCV, struct{ Text string }{text}, normalizeCV)
}

func (s *AIService) ReviewCV(ctx context.Context, cv *model.CVDocument) (*model.ReviewResult, error) {
	data, err := cvPrompt(cv, "")
	if err != nil {
		return nil, util.E(util.CodeInternal, OpReviewCV, "Internal server error", err)
	}
	return generate(ctx, s, OpReviewCV, data, func(r *model.ReviewResult) error {
		r.Normalize()
		return nil
	})
}

func (s *AIService) ImproveCV(ctx context.Context, cv *model.CVDocument) (*model.CVDocument, error) {
	data, err := cvPrompt(cv, "")
	if err != nil {
		return nil, util.E(util.CodeInternal, OpImproveCV, "Internal server error", err)
	}
	return generate(ctx, s, OpImproveCV, data, normalizeCV)
}

func (s *AIService) TailorCV(ctx context.Context, cv *model.CVDocument, jobBrief string) (*model.CVDocument, error) {
	data, err := cvPrompt(cv, jobBrief)
	if err != nil {
		return nil, util.E(util.CodeInternal, OpTailorCV, "Internal server error", err)
	}
	return generate(ctx, s, OpTailorCV, data, normalizeCV)
}

func (s *AIService) GenerateCVQuestions(ctx context.Context, cv *model.CVDocument, jobBrief string) ([]string, error) {
	data, err := cvPrompt(cv, jobBrief)
	if err != nil {
		return nil, util.E(util.CodeInternal, OpCVQuestions, "Internal server error", err)
	}
	questions, err := generate(ctx, s, OpCVQuestions, data, func(qs *[]string) error {
		kept := make([]string, 0, len(*qs))
		for _, q := range *qs {
			if q = strings.TrimSpace(q); q != "" {
				kept = append(kept, q)
			}
		}
		if len(kept) == 0 {
			return errors.New("no questions generated")
		}
		*qs = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return *questions, nil
}

type mockTestPromptData struct {
	Topic          string
	Difficulty     string
	DifficultyHint string
	Count          int
}

type rolePromptData struct {
	JobRole         string
	ExperienceLevel string
	Count           int
}

func (s *AIService) GenerateMockTest(ctx context.Context, topic, difficulty string, count int) (*GeneratedTest, error) {
	data := mockTestPromptData{
		Topic:          topic,
		Difficulty:     difficulty,
		DifficultyHint: difficultyHints[difficulty],
		Count:          count,
	}
	return generate(ctx, s, OpMockTest, data, func(t *GeneratedTest) error {
		return validateGeneratedTest(t, count)
	})
}

func (s *AIService) GenerateRoleTest(ctx context.Context, jobRole, experienceLevel string, count int) (*GeneratedTest, error) {
	data := rolePromptData{JobRole: jobRole, ExperienceLevel: experienceLevel, Count: count}
	return generate(ctx, s, OpRoleTest, data, func(t *GeneratedTest) error {
		return validateGeneratedTest(t, count)
	})
}

func (s *AIService) GenerateInterview(ctx context.Context, jobRole, experienceLevel string, count int) (*GeneratedInterview, error) {
	data := rolePromptData{JobRole: jobRole, ExperienceLevel: experienceLevel, Count: count}
	return generate(ctx, s, OpInterview, data, func(iv *GeneratedInterview) error {
		return validateGeneratedInterview(iv, count)
	})
}

// validateGeneratedTest 校验题目和选项，规范化正确答案，并截断到请求的数量
func validateGeneratedTest(t *GeneratedTest, count int) error {
	if len(t.Questions) == 0 {
		return errors.New("no questions generated")
	}
	if count > 0 && len(t.Questions) > count {
		t.Questions = t.Questions[:count]
	}
	for i := range t.Questions {
		q := &t.Questions[i]
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d is empty", i+1)
		}
		if strings.TrimSpace(q.OptionA) == "" || strings.TrimSpace(q.OptionB) == "" ||
			strings.TrimSpace(q.OptionC) == "" || strings.TrimSpace(q.OptionD) == "" {
			return fmt.Errorf("question %d is missing an option", i+1)
		}
		q.CorrectAnswer = strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
		if !validAnswers[q.CorrectAnswer] {
			return fmt.Errorf("question %d has invalid correct answer %q", i+1, q.CorrectAnswer)
		}
	}
	return nil
}

func validateGeneratedInterview(iv *GeneratedInterview, count int) error {
	if len(iv.Questions) == 0 {
		return errors.New("no questions generated")
	}
	if count > 0 && len(iv.Questions) > count {
		iv.Questions = iv.Questions[:count]
	}
	for i := range iv.Questions {
		q := &iv.Questions[i]
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d is empty", i+1)
		}
		q.QuestionType = normalizeQuestionType(q.QuestionType)
	}
	return nil
}

// normalizeQuestionType 未知类型归为 technical
func normalizeQuestionType(t model.QuestionType) model.QuestionType {
	switch v := model.QuestionType(strings.ToLower(strings.TrimSpace(string(t)))); v {
	case model.QuestionTechnical, model.QuestionBehavioral, model.QuestionSituational, model.QuestionRoleSpecific:
		return v
	case "role_specific", "rolespecific":
		return model.QuestionRoleSpecific
	default:
		return model.QuestionTechnical
	}
}
