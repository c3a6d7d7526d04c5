package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"

	"jobprep_backend/internal/config"
	"jobprep_backend/internal/model"
	"jobprep_backend/internal/repository"
	"jobprep_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

// AuthResult 注册和登录的返回
type AuthResult struct {
	Token string            `json:"token"`
	User  model.UserSummary `json:"user"`
}

func (s *AuthService) bcryptCost() int {
	cost := s.Cfg.Security.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

// dummy 未知邮箱时也做一次同等代价的比较，避免通过耗时区分账号是否存在
func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("jobprep-placeholder-password"), s.bcryptCost())
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "AuthService.Register"

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, util.E(util.CodeMissingRequiredFields, op, "Email and password are required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, util.InvalidInput(op, "Invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, util.InvalidInput(op, "Password must be at least 8 characters")
	}

	_, err := s.UserRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, util.E(util.CodeConflict, op, "Email already registered", util.ErrEmailRegistered)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.E(util.CodeInternal, op, "Failed to create user", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost())
	if err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to create user", err)
	}

	user := &model.User{
		Email:    email,
		Password: string(hashedPassword),
		Username: strings.SplitN(email, "@", 2)[0],
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.E(util.CodeConflict, op, "Email already registered", util.ErrEmailRegistered)
		}
		return nil, util.E(util.CodeInternal, op, "Failed to create user", err)
	}

	return s.issue(op, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "AuthService.Login"

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, util.E(util.CodeMissingRequiredFields, op, "Email and password are required", nil)
	}

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.E(util.CodeInternal, op, "Login failed", err)
		}
		bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, util.E(util.CodeInvalidCredentials, op, "Invalid email or password", util.ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.E(util.CodeInvalidCredentials, op, "Invalid email or password", util.ErrInvalidCredentials)
	}

	return s.issue(op, user)
}

func (s *AuthService) issue(op string, user *model.User) (*AuthResult, error) {
	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, util.E(util.CodeInternal, op, "Failed to issue token", err)
	}
	return &AuthResult{Token: token, User: user.Sanitize()}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*model.UserSummary, error) {
	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.E(util.CodeNotFound, "AuthService.GetUser", "User not found", util.ErrUserNotFound)
		}
		return nil, util.E(util.CodeInternal, "AuthService.GetUser", "Failed to load user", err)
	}
	summary := user.Sanitize()
	return &summary, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.UserRepo.ListSafe(ctx)
	if err != nil {
		return nil, util.E(util.CodeInternal, "AuthService.ListUsers", "Failed to list users", err)
	}
	return users, nil
}

func (s *AuthService) ListEmails(ctx context.Context) ([]string, error) {
	emails, err := s.UserRepo.ListEmails(ctx)
	if err != nil {
		return nil, util.E(util.CodeInternal, "AuthService.ListEmails", "Failed to list emails", err)
	}
	return emails, nil
}
