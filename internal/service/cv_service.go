package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"jobprep_backend/internal/model"
	"jobprep_backend/internal/repository"
	"jobprep_backend/internal/util"
	"jobprep_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CVService struct {
	CVRepo  *repository.CVRepository
	Uploads *UploadService
	AI      *AIService
	Drafts  CVDraftStore
}

func NewCVService(cvRepo *repository.CVRepository, uploads *UploadService, ai *AIService, drafts CVDraftStore) *CVService {
	return &CVService{
		CVRepo:  cvRepo,
		Uploads: uploads,
		AI:      ai,
		Drafts:  drafts,
	}
}

// CVSource review / improve 的输入，CVJSON 优先于 CacheKey
type CVSource struct {
	CVJSON   json.RawMessage `json:"cvJson"`
	CacheKey string          `json:"cacheKey"`
}

type ParseResult struct {
	ParsedCV        *model.CVDocument `json:"parsedCV"`
	CacheKey        string            `json:"cacheKey"`
	OriginalContent string            `json:"originalContent,omitempty"`
	FileID          uint              `json:"fileId,omitempty"`
}

type ProcessResult struct {
	ParsedCV   *model.CVDocument   `json:"parsedCV"`
	Review     *model.ReviewResult `json:"review"`
	ImprovedCV *model.CVDocument   `json:"improvedCV"`
	TailoredCV *model.CVDocument   `json:"tailoredCV,omitempty"`
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeCV(op string, raw json.RawMessage) (*model.CVDocument, error) {
	var doc model.CVDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, util.E(util.CodeInvalidInput, op, "cvJson must be a CV object", err)
	}
	doc.Normalize()
	return &doc, nil
}

func (s *CVService) Parse(ctx context.Context, text string) (*ParseResult, error) {
	const op = "CVService.Parse"

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, util.E(util.CodeMissingRequiredFields, op, "cvText is required", nil)
	}

	parsed, err := s.AI.ParseCV(ctx, text)
	if err != nil {
		return nil, err
	}

	key := uuid.NewString()
	if err := s.Drafts.Put(ctx, key, parsed); err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to cache parsed CV", err)
	}
	return &ParseResult{ParsedCV: parsed, CacheKey: key}, nil
}

// ParseUpload 从用户上传的文件中提取文本后解析
func (s *CVService) ParseUpload(ctx context.Context, fileID, userID uint) (*ParseResult, error) {
	upload, text, err := s.Uploads.ExtractText(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	result.OriginalContent = text
	result.FileID = upload.ID
	return result, nil
}

// resolve 取得要处理的简历：cacheKey 命中草稿时优先使用，否则回退到请求中的 cvJson；take 为真时读取后删除草稿
func (s *CVService) resolve(ctx context.Context, op string, src CVSource, take bool) (*model.CVDocument, error) {
	hasJSON := !isEmptyJSON(src.CVJSON)
	if src.CacheKey == "" {
		if !hasJSON {
			return nil, util.E(util.CodeMissingRequiredFields, op, "cvJson or cacheKey is required", nil)
		}
		return decodeCV(op, src.CVJSON)
	}

	var (
		doc *model.CVDocument
		err error
	)
	if take {
		doc, err = s.Drafts.Take(ctx, src.CacheKey)
	} else {
		doc, err = s.Drafts.Get(ctx, src.CacheKey)
	}
	switch {
	case err == nil:
		return doc, nil
	case !errors.Is(err, ErrDraftNotFound):
		return nil, util.E(util.CodeInternal, op, "Failed to read cached CV", err)
	case hasJSON:
		return decodeCV(op, src.CVJSON)
	default:
		return nil, util.InvalidInput(op, "CV not found in cache, it may have expired")
	}
}

func (s *CVService) Review(ctx context.Context, src CVSource) (*model.ReviewResult, error) {
	doc, err := s.resolve(ctx, "CVService.Review", src, false)
	if err != nil {
		return nil, err
	}
	return s.AI.ReviewCV(ctx, doc)
}

func (s *CVService) Improve(ctx context.Context, src CVSource) (*model.CVDocument, error) {
	doc, err := s.resolve(ctx, "CVService.Improve", src, true)
	if err != nil {
		return nil, err
	}
	return s.AI.ImproveCV(ctx, doc)
}

func (s *CVService) Tailor(ctx context.Context, raw json.RawMessage, jobBrief string) (*model.CVDocument, error) {
	const op = "CVService.Tailor"

	jobBrief = strings.TrimSpace(jobBrief)
	if isEmptyJSON(raw) || jobBrief == "" {
		return nil, util.E(util.CodeMissingRequiredFields, op, "cvJson and jobBrief are required", nil)
	}
	doc, err := decodeCV(op, raw)
	if err != nil {
		return nil, err
	}
	return s.AI.TailorCV(ctx, doc, jobBrief)
}

// Process 解析后并发执行评审和优化，给出岗位描述时再针对岗位调整优化结果
func (s *CVService) Process(ctx context.Context, text, jobBrief string) (*ProcessResult, error) {
	const op = "CVService.Process"

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, util.E(util.CodeMissingRequiredFields, op, "cvText is required", nil)
	}

	parsed, err := s.AI.ParseCV(ctx, text)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{ParsedCV: parsed}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		review, err := s.AI.ReviewCV(gctx, parsed)
		result.Review = review
		return err
	})
	g.Go(func() error {
		improved, err := s.AI.ImproveCV(gctx, parsed)
		result.ImprovedCV = improved
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if jobBrief = strings.TrimSpace(jobBrief); jobBrief != "" {
		tailored, err := s.AI.TailorCV(ctx, result.ImprovedCV, jobBrief)
		if err != nil {
			return nil, err
		}
		result.TailoredCV = tailored
	}
	return result, nil
}

func (s *CVService) GenerateQuestions(ctx context.Context, raw json.RawMessage, jobBrief string) ([]string, error) {
	const op = "CVService.GenerateQuestions"

	jobBrief = strings.TrimSpace(jobBrief)
	if isEmptyJSON(raw) || jobBrief == "" {
		return nil, util.E(util.CodeMissingRequiredFields, op, "cvJson and jobBrief are required", nil)
	}
	doc, err := decodeCV(op, raw)
	if err != nil {
		return nil, err
	}
	return s.AI.GenerateCVQuestions(ctx, doc, jobBrief)
}

// validateForSave 保存前的必填校验：姓名、邮箱、至少一条教育经历和一项技能
func validateForSave(op string, raw json.RawMessage, originalContent string) (*model.CVDocument, error) {
	if isEmptyJSON(raw) || strings.TrimSpace(originalContent) == "" {
		return nil, util.E(util.CodeMissingRequiredFields, op, "cvJson and originalContent are required", nil)
	}
	doc, err := decodeCV(op, raw)
	if err != nil {
		return nil, err
	}

	var missing []string
	if strings.TrimSpace(doc.PersonalInfo.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(doc.PersonalInfo.Email) == "" {
		missing = append(missing, "email")
	}
	if len(doc.Education) == 0 {
		missing = append(missing, "education")
	}
	if len(doc.Skills) == 0 {
		missing = append(missing, "skills")
	}
	if len(missing) > 0 {
		return nil, util.E(util.CodeMissingRequiredFields, op, "Missing required fields: "+strings.Join(missing, ", "), nil)
	}
	return doc, nil
}

func applyDocument(cv *model.CV, doc *model.CVDocument, originalContent string) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	cv.OriginalContent = originalContent
	cv.FullName = strings.TrimSpace(doc.PersonalInfo.Name)
	cv.Email = strings.TrimSpace(doc.PersonalInfo.Email)
	cv.Phone = doc.PersonalInfo.Phone
	cv.Location = doc.PersonalInfo.Location
	cv.Summary = doc.Summary
	cv.Document = datatypes.JSON(b)
	return nil
}

func (s *CVService) Save(ctx context.Context, userID uint, raw json.RawMessage, originalContent string) (*model.CV, error) {
	const op = "CVService.Save"

	doc, err := validateForSave(op, raw, originalContent)
	if err != nil {
		return nil, err
	}

	cv := &model.CV{CreatedBy: userID}
	if err := applyDocument(cv, doc, originalContent); err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to save CV", err)
	}
	if err := s.CVRepo.Create(ctx, cv); err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to save CV", err)
	}

	logger.Log.Info("CV saved", zap.Uint("cv_id", cv.ID), zap.Uint("user_id", userID))
	return cv, nil
}

func (s *CVService) List(ctx context.Context, userID uint) ([]model.CV, error) {
	cvs, err := s.CVRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, util.E(util.CodeInternal, "CVService.List", "Failed to list CVs", err)
	}
	return cvs, nil
}

// Get 不属于当前用户的简历按不存在处理
func (s *CVService) Get(ctx context.Context, id, userID uint) (*model.CV, error) {
	const op = "CVService.Get"

	cv, err := s.CVRepo.FindByIDAndOwner(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFound(op, "CV not found")
		}
		return nil, util.E(util.CodeInternal, op, "Failed to load CV", err)
	}
	return cv, nil
}

// owned 读取简历并校验归属：不存在返回 404，非本人返回 403
func (s *CVService) owned(ctx context.Context, op string, id, userID uint) (*model.CV, error) {
	cv, err := s.CVRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFound(op, "CV not found")
		}
		return nil, util.E(util.CodeInternal, op, "Failed to load CV", err)
	}
	if cv.CreatedBy != userID {
		return nil, util.E(util.CodeForbidden, op, "Unauthorized", util.ErrPermissionDenied)
	}
	return cv, nil
}

func (s *CVService) Update(ctx context.Context, id, userID uint, raw json.RawMessage, originalContent string) (*model.CV, error) {
	const op = "CVService.Update"

	cv, err := s.owned(ctx, op, id, userID)
	if err != nil {
		return nil, err
	}
	doc, err := validateForSave(op, raw, originalContent)
	if err != nil {
		return nil, err
	}

	if err := applyDocument(cv, doc, originalContent); err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to update CV", err)
	}
	if err := s.CVRepo.Update(ctx, cv); err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to update CV", err)
	}
	return cv, nil
}

func (s *CVService) Delete(ctx context.Context, id, userID uint) error {
	const op = "CVService.Delete"

	if _, err := s.owned(ctx, op, id, userID); err != nil {
		return err
	}
	if err := s.CVRepo.Delete(ctx, id); err != nil {
		return util.E(util.CodeInternal, op, "Failed to delete CV", err)
	}

	logger.Log.Info("CV deleted", zap.Uint("cv_id", id), zap.Uint("user_id", userID))
	return nil
}
