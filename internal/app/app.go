package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/controller"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/service"
	"qa_forum_backend/pkg/configwatcher"
	"qa_forum_backend/pkg/database"
	"qa_forum_backend/pkg/logger"
	"qa_forum_backend/pkg/monitoring"
	"qa_forum_backend/pkg/security"
	"qa_forum_backend/pkg/tracing"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
	tracer   *sdktrace.TracerProvider
	limiter  *security.RateLimiter

	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	question    *repository.QuestionRepository
	answer      *repository.AnswerRepository
	vote        *repository.VoteRepository
	review      *repository.ReviewRepository
	trust       *repository.TrustRepository
	message     *repository.MessageRepository
	roleRequest *repository.RoleRequestRepository
	invitation  *repository.InvitationRepository
}

type services struct {
	auth        *service.AuthService
	user        *service.UserService
	roleRequest *service.RoleRequestService
	invitation  *service.InvitationService
	thread      *service.ThreadService
	vote        *service.VoteService
	review      *service.ReviewService
	message     *service.MessageService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	roleRequest *controller.RoleRequestController
	invitation  *controller.InvitationController
	question    *controller.QuestionController
	answer      *controller.AnswerController
	review      *controller.ReviewController
	message     *controller.MessageController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// applyConfig 热加载：只有日志级别与登录锁定策略会在运行时生效
func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		question:    repository.NewQuestionRepository(db),
		answer:      repository.NewAnswerRepository(db),
		vote:        repository.NewVoteRepository(db),
		review:      repository.NewReviewRepository(db),
		trust:       repository.NewTrustRepository(db),
		message:     repository.NewMessageRepository(db),
		roleRequest: repository.NewRoleRequestRepository(db),
		invitation:  repository.NewInvitationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	exec := service.NewExecutor(cfg.Retry)

	// 未启用 Redis 时不做登录锁定
	var guard *service.LoginGuard
	if rdb != nil {
		guard = service.NewLoginGuard(rdb, cfg.Auth)
		a.RegisterConfigCallback(func(c *config.Config) {
			guard.Configure(c.Auth)
		})
	}

	s.auth = service.NewAuthService(db, repos.user, repos.invitation, guard, exec, cfg)
	s.user = service.NewUserService(repos.user, exec)
	s.roleRequest = service.NewRoleRequestService(db, repos.roleRequest, repos.user, exec)
	s.invitation = service.NewInvitationService(repos.invitation, exec)
	s.thread = service.NewThreadService(db, repos.question, repos.answer, repos.user, repos.vote, exec)
	s.vote = service.NewVoteService(db, repos.vote, repos.answer, repos.user, exec)
	s.review = service.NewReviewService(db, repos.review, repos.trust, repos.question, repos.answer, repos.user, exec)
	s.message = service.NewMessageService(db, repos.message, repos.user, repos.question, repos.answer, repos.review, exec)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth, s.user),
		user:        controller.NewUserController(s.user),
		roleRequest: controller.NewRoleRequestController(s.roleRequest),
		invitation:  controller.NewInvitationController(s.invitation),
		question:    controller.NewQuestionController(s.thread),
		answer:      controller.NewAnswerController(s.thread, s.vote),
		review:      controller.NewReviewController(s.review),
		message:     controller.NewMessageController(s.message),
		health:      controller.NewHealthController(db, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure(cfg.Security))
	a.limiter = security.NewRateLimiter(cfg.RateLimit)
	router.Use(a.limiter.Handler())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// Build 在已建立的连接上组装路由与服务，rdb 可为空
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(app.services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	app.RegisterConfigCallback(func(c *config.Config) {
		if logger.SetLevel(c.Log.Level) {
			logger.Log.Info("Log level changed", zap.String("level", c.Log.Level))
		}
	})

	return app
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Error("Failed to initialize database", zap.Error(err))
		return nil, err
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}, nil
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			// 登录锁定依赖 Redis，连接失败时降级为不锁定
			logger.Log.Warn("Redis unavailable, login lockout disabled", zap.Error(err))
			rdb = nil
		}
	}

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
			return nil, err
		}
	}

	app := Build(cfg, db, rdb)
	app.tracer = tp
	return app, nil
}

// WatchConfig 配置文件变更时回调已注册的处理函数
func (a *App) WatchConfig(ctx context.Context, dir string) error {
	return configwatcher.WatchConfig(ctx, filepath.Join(dir, "config.yaml"), a.applyConfig)
}

func (a *App) Run(configDir string) {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.WatchConfig(ctx, configDir); err != nil {
		logger.Log.Warn("Config hot reload disabled", zap.Error(err))
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("listen failed", zap.Error(err))
			os.Exit(1)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(shutdownCtx)
	logger.Log.Info("Server exiting")
}

// Close 释放追踪、Redis 与数据库连接
func (a *App) Close(ctx context.Context) {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	logger.Log.Sync()
}

// requestLogger 用 zap 替代 gin 默认的访问日志
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
