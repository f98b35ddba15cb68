package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutor_desk_backend/internal/config"
	"tutor_desk_backend/internal/controller"
	"tutor_desk_backend/internal/middleware"
	"tutor_desk_backend/internal/repository"
	"tutor_desk_backend/internal/service"
	"tutor_desk_backend/pkg/configwatcher"
	"tutor_desk_backend/pkg/database"
	"tutor_desk_backend/pkg/logger"
	"tutor_desk_backend/pkg/monitoring"
	"tutor_desk_backend/pkg/security"
	"tutor_desk_backend/pkg/tracing"

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

	stop chan struct{}
}

type repositories struct {
	user    *repository.UserRepository
	student *repository.StudentRepository
	session *repository.SessionRepository
	payment *repository.PaymentRepository
	kv      repository.KVStore
}

type services struct {
	auth       *service.AuthService
	student    *service.StudentService
	conflict   *service.ConflictService
	slots      *service.SlotService
	engine     *service.EngineService
	queue      *service.QueueService
	schedule   *service.ScheduleService
	payment    *service.PaymentService
	suggestion *service.SuggestionService
}

type controllers struct {
	auth       *controller.AuthController
	student    *controller.StudentController
	schedule   *controller.ScheduleController
	payment    *controller.PaymentController
	suggestion *controller.SuggestionController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		student: repository.NewStudentRepository(db),
		session: repository.NewSessionRepository(db),
		payment: repository.NewPaymentRepository(db),
		kv:      repository.NewRedisKVStore(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.student = service.NewStudentService(repos.student, repos.session)

	s.conflict = service.NewConflictService(cfg)
	s.slots = service.NewSlotService(s.conflict, cfg)
	s.engine = service.NewEngineService(s.conflict, cfg)

	// The queue is process-wide state, built exactly once here and handed
	// to everything that needs it.
	s.queue = service.NewQueueService(repos.kv, cfg)

	s.schedule = service.NewScheduleService(repos.student, repos.session, s.conflict, s.slots, s.queue)
	s.payment = service.NewPaymentService(repos.payment, repos.student, s.queue)
	s.suggestion = service.NewSuggestionService(repos.student, repos.payment, s.engine, s.queue)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		student:    controller.NewStudentController(s.student),
		schedule:   controller.NewScheduleController(s.schedule, s.suggestion),
		payment:    controller.NewPaymentController(s.payment),
		suggestion: controller.NewSuggestionController(s.queue, s.suggestion),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the engine on a fixed cadence, mirroring the
// periodic timer of the client host. Data-change events additionally
// trigger a pass through the controllers.
func (a *App) startBackgroundTasks(s *services) {
	interval := time.Duration(a.Config.Scheduling.EngineIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-a.stop:
				return
			case <-ticker.C:
				interrupt, err := s.suggestion.Refresh(time.Now())
				if err != nil {
					logger.Log.Error("suggestion refresh failed", zap.Error(err))
					continue
				}
				if interrupt {
					logger.Log.Info("interrupt-tier suggestion surfaced",
						zap.Any("current", s.queue.Current()))
				}
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		stop:   make(chan struct{}),
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
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
		if _, err := tracing.InitTracer("tutor-desk", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	app.startBackgroundTasks(services)

	go configwatcher.WatchConfig("configs/config.yaml", app.applyConfig)

	return app
}

// applyConfig picks up hot-reloadable scheduling knobs. Structural settings
// (ports, database, middleware) still require a restart. The services swap
// their knob snapshots atomically, so checks running on handler or ticker
// goroutines are unaffected.
func (a *App) applyConfig(cfg *config.Config) {
	s := a.services
	s.conflict.UpdateConfig(cfg)
	s.slots.UpdateConfig(cfg)
	s.engine.UpdateConfig(cfg)
	logger.Log.Info("configuration reloaded")
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	close(a.stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
