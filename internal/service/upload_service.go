package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"time"

	"jobprep_backend/internal/config"
	"jobprep_backend/internal/model"
	"jobprep_backend/internal/repository"
	"jobprep_backend/internal/util"
	"jobprep_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultMaxUploadBytes 10MB
const DefaultMaxUploadBytes int64 = 10 * 1024 * 1024

type UploadService struct {
	UploadRepo *repository.FileUploadRepository
	UserRepo   *repository.UserRepository
	Storage    *StorageService
	MaxBytes   int64
}

func NewUploadService(uploadRepo *repository.FileUploadRepository, userRepo *repository.UserRepository, storage *StorageService, cfg *config.Config) *UploadService {
	maxBytes := cfg.Upload.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadService{
		UploadRepo: uploadRepo,
		UserRepo:   userRepo,
		Storage:    storage,
		MaxBytes:   maxBytes,
	}
}

// Upload 校验大小和类型，写入存储后记录元数据；元数据写入失败时删除已存储的文件
func (s *UploadService) Upload(ctx context.Context, userID uint, file *multipart.FileHeader) (*model.FileUpload, error) {
	const op = "UploadService.Upload"

	if file.Size > s.MaxBytes {
		return nil, util.E(util.CodeFileTooLarge, op, fmt.Sprintf("File exceeds the %d byte limit", s.MaxBytes), nil)
	}

	declared := util.NormalizeMimeType(file.Header.Get("Content-Type"))
	if !util.IsAllowedDocumentType(declared) {
		return nil, util.E(util.CodeUnsupportedFileType, op, "Only PDF, DOC, DOCX and TXT files are allowed", nil)
	}

	if _, err := s.UserRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFound(op, "User not found")
		}
		return nil, util.E(util.CodeInternal, op, "Failed to upload file", err)
	}

	src, err := file.Open()
	if err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to upload file", err)
	}
	defer src.Close()

	if _, err := util.ValidateMimeType(src, declared); err != nil {
		return nil, util.E(util.CodeUnsupportedFileType, op, "File content does not match its type", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to upload file", err)
	}

	storedName := util.StoredFileName(file.Filename, time.Now().UnixMilli(), rand.IntN(1_000_000_000))
	filePath, err := s.Storage.Upload(ctx, storedName, src, file.Size, declared)
	if err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to upload file", err)
	}

	upload := &model.FileUpload{
		FileName:         storedName,
		OriginalFileName: file.Filename,
		FileSize:         file.Size,
		MimeType:         declared,
		FilePath:         filePath,
		CreatedBy:        userID,
	}
	if err := s.UploadRepo.Create(ctx, upload); err != nil {
		if delErr := s.Storage.Delete(context.WithoutCancel(ctx), storedName); delErr != nil {
			logger.Log.Warn("Failed to remove orphaned upload",
				zap.String("file", storedName),
				zap.Error(delErr),
			)
		}
		return nil, util.E(util.CodeInternal, op, "Failed to save file metadata", err)
	}

	logger.Log.Info("File uploaded",
		zap.Uint("user_id", userID),
		zap.String("file", storedName),
		zap.Int64("size", file.Size),
	)
	return upload, nil
}

func (s *UploadService) ListByUser(ctx context.Context, userID uint) ([]model.FileUpload, error) {
	files, err := s.UploadRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, util.E(util.CodeInternal, "UploadService.ListByUser", "Failed to list files", err)
	}
	return files, nil
}

// Open 按存储文件名打开文件，只能打开有元数据记录的文件
func (s *UploadService) Open(ctx context.Context, fileName string) (*model.FileUpload, io.ReadCloser, error) {
	const op = "UploadService.Open"

	upload, err := s.UploadRepo.FindByFileName(ctx, fileName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.NotFound(op, "File not found")
		}
		return nil, nil, util.E(util.CodeInternal, op, "Failed to open file", err)
	}

	rc, err := s.Storage.Open(ctx, upload.FileName)
	if err != nil {
		if errors.Is(err, ErrStoredFileNotFound) {
			return nil, nil, util.NotFound(op, "File not found")
		}
		return nil, nil, util.E(util.CodeInternal, op, "Failed to open file", err)
	}
	return upload, rc, nil
}

// ExtractText 读取用户自己上传的文件并提取纯文本
func (s *UploadService) ExtractText(ctx context.Context, fileID, userID uint) (*model.FileUpload, string, error) {
	const op = "UploadService.ExtractText"

	upload, err := s.UploadRepo.FindByID(ctx, fileID)
	if err != nil || upload.CreatedBy != userID {
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", util.NotFound(op, "File not found")
		}
		return nil, "", util.E(util.CodeInternal, op, "Failed to read file", err)
	}

	rc, err := s.Storage.Open(ctx, upload.FileName)
	if err != nil {
		if errors.Is(err, ErrStoredFileNotFound) {
			return nil, "", util.NotFound(op, "File not found")
		}
		return nil, "", util.E(util.CodeInternal, op, "Failed to read file", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.MaxBytes+1))
	if err != nil {
		return nil, "", util.E(util.CodeInternal, op, "Failed to read file", err)
	}

	text, err := ExtractDocumentText(data, upload.MimeType)
	if err != nil {
		if errors.Is(err, util.ErrUnsupportedDocument) {
			return nil, "", util.E(util.CodeUnsupportedFileType, op, "Text extraction supports PDF and TXT files only", err)
		}
		return nil, "", util.E(util.CodeInvalidInput, op, "Could not read text from the file", err)
	}
	if text == "" {
		return nil, "", util.InvalidInput(op, "The file contains no readable text")
	}
	return upload, text, nil
}
