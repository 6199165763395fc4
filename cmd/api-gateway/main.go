package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-lessons-api/api/swagger"
	"github.com/noah-isme/studio-lessons-api/internal/handler"
	"github.com/noah-isme/studio-lessons-api/internal/middleware"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	"github.com/noah-isme/studio-lessons-api/internal/repository"
	"github.com/noah-isme/studio-lessons-api/internal/service"
	"github.com/noah-isme/studio-lessons-api/pkg/cache"
	"github.com/noah-isme/studio-lessons-api/pkg/config"
	"github.com/noah-isme/studio-lessons-api/pkg/database"
	"github.com/noah-isme/studio-lessons-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/studio-lessons-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/studio-lessons-api/pkg/middleware/requestid"
	"github.com/noah-isme/studio-lessons-api/pkg/storage"
)

// @title Studio Lessons API
// @version 1.0.0
// @description Lessons, attendance, earnings and monthly reports for independent music teachers
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Dashboard.CacheEnabled {
		if redisClient, err = cache.NewRedis(cfg.Redis); err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	loc := cfg.Location()
	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	pieceRepo := repository.NewPieceRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	reportRepo := repository.NewMonthlyReportRepository(db)
	tx := repository.NewTransactor(db)
	guard := service.NewOwnershipGuard(repository.NewOwnershipRepository(db))

	var cacheRepo *repository.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	var cacheBackend service.CacheRepository
	if cacheRepo != nil {
		cacheBackend = cacheRepo
	}
	cacheSvc := service.NewCacheService(cacheBackend, metrics, cfg.Dashboard.CacheTTL, logr, cacheBackend != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	earningsSvc := service.NewEarningsService(lessonRepo, cacheSvc, validate, logr, service.EarningsConfig{
		Location: loc,
		CacheTTL: cfg.Dashboard.CacheTTL,
	})
	studentSvc := service.NewStudentService(studentRepo, teacherSvc, guard, tx, earningsSvc, validate, logr)
	pieceSvc := service.NewPieceService(pieceRepo, guard, tx, validate, logr)
	lessonSvc := service.NewLessonService(lessonRepo, guard, tx, earningsSvc, metrics, validate, logr, service.LessonConfig{
		Location:      loc,
		DefaultStatus: models.LessonStatus(cfg.Lessons.DefaultStatus),
	})
	attendanceSvc := service.NewAttendanceService(attendanceRepo, lessonRepo, guard, tx, earningsSvc, metrics, validate, logr)
	reportSvc := service.NewReportService(studentRepo, teacherRepo, lessonRepo, reportRepo, guard, tx, validate, logr, service.ReportConfig{
		Location:   loc,
		RateSource: cfg.Reports.RateSource,
	})

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("report storage unavailable", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(reportSvc, store, signer, metrics, validate, logr, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		Location:  loc,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	exportSvc.StartCleanup(ctx, cfg.Reports.CleanupInterval)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	checks := map[string]handler.Pinger{"postgres": db}
	if cacheRepo != nil {
		checks["redis"] = handler.PingFunc(cacheRepo.Ping)
	}
	handler.RegisterOps(r, handler.NewHealthHandler(metrics, checks))

	if cfg.Env != config.EnvProduction {
		swagger.SwaggerInfo.BasePath = cfg.APIPrefix
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Auth:     handler.NewAuthHandler(authSvc),
		Users:    handler.NewUserHandler(userSvc),
		Teacher:  handler.NewTeacherHandler(teacherSvc),
		Students: handler.NewStudentHandler(studentSvc),
		Pieces:   handler.NewPieceHandler(pieceSvc),
		Lessons:  handler.NewLessonHandler(lessonSvc, attendanceSvc),
		Earnings: handler.NewEarningsHandler(earningsSvc),
		Reports:  handler.NewReportHandler(reportSvc, exportSvc),
	}, middleware.JWT(authSvc), middleware.CurrentTeacher(teacherSvc))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
