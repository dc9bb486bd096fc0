package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam_tutor_backend/internal/config"
	"exam_tutor_backend/internal/controller"
	"exam_tutor_backend/internal/repository"
	"exam_tutor_backend/internal/service"
	"exam_tutor_backend/pkg/configwatcher"
	"exam_tutor_backend/pkg/database"
	"exam_tutor_backend/pkg/logger"
	"exam_tutor_backend/pkg/monitoring"
	"exam_tutor_backend/pkg/security"
	"exam_tutor_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	question   *repository.QuestionRepository
	paper      *repository.PaperRepository
	submission *repository.SubmissionRepository
	practice   *repository.PracticeRepository
	student    *repository.StudentRepository
	draft      *repository.DraftRepository
}

type services struct {
	auth     *service.AuthService
	ai       *service.AIService
	draft    *service.DraftService
	archive  *service.ArchiveService
	bank     *service.BankService
	paper    *service.PaperService
	grading  *service.GradingService
	practice *service.PracticeService
}

type controllers struct {
	admin      *controller.AdminController
	bank       *controller.BankController
	paper      *controller.PaperController
	submission *controller.SubmissionController
	practice   *controller.PracticeController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, cfg *config.Config) *repositories {
	return &repositories{
		question:   repository.NewQuestionRepository(db),
		paper:      repository.NewPaperRepository(db),
		submission: repository.NewSubmissionRepository(db),
		practice:   repository.NewPracticeRepository(db),
		student:    repository.NewStudentRepository(db),
		draft:      repository.NewDraftRepository(cfg.DraftBank.Path),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(cfg.JWT, cfg.Admin)
	s.ai = service.NewAIService(cfg.AI)
	s.draft = service.NewDraftService(repos.draft, s.ai)
	s.archive = service.NewArchiveService(cfg.Archive)
	s.bank = service.NewBankService(repos.question, repos.draft, s.archive, rdb)
	s.paper = service.NewPaperService(repos.paper, repos.question, repos.student, s.bank)
	s.grading = service.NewGradingService(repos.paper, repos.question, repos.submission, s.ai)
	s.practice = service.NewPracticeService(repos.practice, repos.submission, repos.question)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		admin:      controller.NewAdminController(s.auth, s.draft, s.bank),
		bank:       controller.NewBankController(s.bank),
		paper:      controller.NewPaperController(s.paper, s.grading),
		submission: controller.NewSubmissionController(s.grading),
		practice:   controller.NewPracticeController(s.practice),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	// 鉴权中间件从 context 取配置
	router.Use(func(c *gin.Context) {
		c.Set("config", a.Config)
		c.Next()
	})

	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// watchConfig 配置文件热更新：目前只有 AI 参数需要在线生效
func (a *App) watchConfig() {
	go configwatcher.WatchConfig("configs/config.yaml", a.Config, func(newCfg interface{}) {
		cfg, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		a.services.ai.UpdateConfig(cfg.AI)
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Redis 只承担缓存职责，缺失时降级运行
		logger.Log.Warn("Failed to initialize redis, latest-version cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, cfg)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("exam-tutor", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	app.watchConfig()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
