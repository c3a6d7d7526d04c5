package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"jobprep_backend/internal/config"
	"jobprep_backend/internal/controller"
	"jobprep_backend/internal/repository"
	"jobprep_backend/internal/service"
	"jobprep_backend/pkg/configwatcher"
	"jobprep_backend/pkg/database"
	"jobprep_backend/pkg/logger"
	"jobprep_backend/pkg/monitoring"
	"jobprep_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configReloadDebounce = 500 * time.Millisecond

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services        *services
	configCallbacks []func(*config.Config)
	shutdownTracer  func(context.Context) error
}

type repositories struct {
	user      *repository.UserRepository
	upload    *repository.FileUploadRepository
	cv        *repository.CVRepository
	interview *repository.InterviewRepository
	mockTest  *repository.MockTestRepository
}

type services struct {
	auth      *service.AuthService
	storage   *service.StorageService
	upload    *service.UploadService
	ai        *service.AIService
	cv        *service.CVService
	interview *service.InterviewService
	mockTest  *service.MockTestService
}

type controllers struct {
	auth      *controller.AuthController
	user      *controller.UserController
	upload    *controller.UploadController
	cv        *controller.CVController
	interview *controller.InterviewController
	mockTest  *controller.MockTestController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		upload:    repository.NewFileUploadRepository(db),
		cv:        repository.NewCVRepository(db),
		interview: repository.NewInterviewRepository(db),
		mockTest:  repository.NewMockTestRepository(db),
	}
}

// newDraftStore 启用 Redis 时草稿在实例间共享，否则退回进程内存
func newDraftStore(cfg *config.Config, rdb *redis.Client) service.CVDraftStore {
	ttl := cfg.Cache.CVDraftTTL()
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if rdb != nil {
		return service.NewRedisDraftStore(rdb, ttl)
	}
	return service.NewMemoryDraftStore(ttl, cfg.Cache.CVDraftMaxEntries)
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client, provider service.Provider) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage
	s.auth = service.NewAuthService(repos.user, cfg)
	s.upload = service.NewUploadService(repos.upload, repos.user, s.storage, cfg)
	s.ai = service.NewAIService(cfg.AI, provider)
	s.cv = service.NewCVService(repos.cv, s.upload, s.ai, newDraftStore(cfg, rdb))
	s.interview = service.NewInterviewService(repos.interview, s.ai)
	s.mockTest = service.NewMockTestService(repos.mockTest, s.ai)

	return s, nil
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		user:      controller.NewUserController(s.auth),
		upload:    controller.NewUploadController(s.upload),
		cv:        controller.NewCVController(s.cv),
		interview: controller.NewInterviewController(s.interview),
		mockTest:  controller.NewMockTestController(s.mockTest),
		health:    controller.NewHealthController(a.DB, a.Redis),
	}
}

// New 用已建立的连接组装应用，rdb 可以为 nil
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, provider service.Provider) (*App, error) {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	svcs, err := app.initServices(repos, cfg, rdb, provider)
	if err != nil {
		return nil, err
	}
	app.services = svcs

	monitoring.Init()
	app.Router = app.setupRouter(app.initControllers(svcs))

	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetMode(c.Server.Mode)
	})
	app.RegisterConfigCallback(func(c *config.Config) {
		svcs.ai.UpdateConfig(c.AI)
	})
	return app, nil
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	}

	provider, err := service.NewProvider(context.Background(), cfg.AI)
	if err != nil {
		logger.Log.Fatal("Failed to initialize generation provider", zap.Error(err))
	}

	app, err := New(cfg, db, rdb, provider)
	if err != nil {
		logger.Log.Fatal("Failed to initialize application", zap.Error(err))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.shutdownTracer = tp.Shutdown
	}

	return app
}

func (a *App) reloadConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

// Run 启动 HTTP 服务，收到 SIGINT / SIGTERM 后优雅退出
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.Config.ConfigFile != "" {
		go func() {
			if err := configwatcher.Watch(ctx, a.Config.ConfigFile, configReloadDebounce, a.reloadConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
	return nil
}
