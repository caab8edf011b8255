package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Teo-Te/ClassSync-sub001/api/swagger"
	"github.com/Teo-Te/ClassSync-sub001/internal/handler"
	"github.com/Teo-Te/ClassSync-sub001/internal/middleware"
	"github.com/Teo-Te/ClassSync-sub001/internal/models"
	"github.com/Teo-Te/ClassSync-sub001/internal/repository"
	"github.com/Teo-Te/ClassSync-sub001/internal/scheduler"
	"github.com/Teo-Te/ClassSync-sub001/internal/service"
	"github.com/Teo-Te/ClassSync-sub001/pkg/cache"
	"github.com/Teo-Te/ClassSync-sub001/pkg/config"
	"github.com/Teo-Te/ClassSync-sub001/pkg/database"
	"github.com/Teo-Te/ClassSync-sub001/pkg/jobs"
	"github.com/Teo-Te/ClassSync-sub001/pkg/logger"
	corsmiddleware "github.com/Teo-Te/ClassSync-sub001/pkg/middleware/cors"
	reqidmiddleware "github.com/Teo-Te/ClassSync-sub001/pkg/middleware/requestid"
	"github.com/Teo-Te/ClassSync-sub001/pkg/storage"
)

// @title ClassSync API
// @version 1.0.0
// @description Timetable generation, conflict detection, and export service.
// @BasePath /api/v1
// @schemes http

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
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	cacheEnabled := err == nil
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, timetable caching disabled", "error", err)
	} else {
		defer redisClient.Close()
	}

	classRepo := repository.NewClassRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	classCourseRepo := repository.NewClassCourseRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Timetable.CacheTTL, logr, cacheEnabled)
	engine := scheduler.NewEngine(logr)

	classSvc := service.NewClassService(classRepo, classCourseRepo, courseRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, classCourseRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, assignmentRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, teacherRepo, courseRepo, validate, logr)

	scheduleSvc := service.NewScheduleService(
		scheduleRepo,
		classRepo,
		courseRepo,
		teacherRepo,
		roomRepo,
		assignmentRepo,
		classCourseRepo,
		engine,
		cacheSvc,
		metrics,
		validate,
		logr,
		service.ScheduleServiceConfig{
			Defaults:     schedulerDefaults(cfg.Scheduler),
			TimetableTTL: cfg.Timetable.CacheTTL,
		},
	)
	optimizerSvc := service.NewOptimizerService(
		scheduleRepo,
		classRepo,
		courseRepo,
		teacherRepo,
		roomRepo,
		assignmentRepo,
		classCourseRepo,
		engine,
		cacheSvc,
		metrics,
		validate,
		logr,
	)

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "dir", cfg.Exports.StorageDir, "error", err)
	}
	signer := storage.NewDownloadTokenSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(scheduleRepo, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	exportWorker := service.NewExportWorker(exportJobRepo, exportSvc, metrics, cfg.Exports.WorkerRetries, logr)
	exportQueue := jobs.NewQueue("timetable_export", exportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportJobs := service.NewExportJobService(exportJobRepo, scheduleRepo, exportQueue, exportSvc, metrics, validate, logr, service.ExportJobConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
	})

	classHandler := handler.NewClassHandler(classSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, optimizerSvc)
	exportHandler := handler.NewExportHandler(exportJobs)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/stats", metricsHandler.Stats)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		classes := api.Group("/classes")
		{
			classes.GET("", classHandler.List)
			classes.POST("", classHandler.Create)
			classes.GET("/:id", classHandler.Get)
			classes.PUT("/:id", classHandler.Update)
			classes.DELETE("/:id", classHandler.Delete)
			classes.GET("/:id/courses", classHandler.Courses)
			classes.PUT("/:id/courses", classHandler.ReplaceCourses)
		}

		courses := api.Group("/courses")
		{
			courses.GET("", courseHandler.List)
			courses.POST("", courseHandler.Create)
			courses.GET("/:id", courseHandler.Get)
			courses.PUT("/:id", courseHandler.Update)
			courses.DELETE("/:id", courseHandler.Delete)
		}

		teachers := api.Group("/teachers")
		{
			teachers.GET("", teacherHandler.List)
			teachers.POST("", teacherHandler.Create)
			teachers.GET("/:id", teacherHandler.Get)
			teachers.PUT("/:id", teacherHandler.Update)
			teachers.DELETE("/:id", teacherHandler.Delete)
			teachers.GET("/:id/assignments", teacherHandler.Assignments)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", roomHandler.List)
			rooms.POST("", roomHandler.Create)
			rooms.GET("/:id", roomHandler.Get)
			rooms.PUT("/:id", roomHandler.Update)
			rooms.DELETE("/:id", roomHandler.Delete)
		}

		assignments := api.Group("/assignments")
		{
			assignments.GET("", assignmentHandler.List)
			assignments.POST("", assignmentHandler.Assign)
			assignments.DELETE("/:id", assignmentHandler.Delete)
		}

		schedules := api.Group("/schedules")
		{
			schedules.GET("", scheduleHandler.List)
			schedules.POST("", scheduleHandler.Generate)
			schedules.GET("/:id", scheduleHandler.Get)
			schedules.DELETE("/:id", scheduleHandler.Delete)
			schedules.POST("/:id/optimize", scheduleHandler.Optimize)
			schedules.GET("/:id/timetable", scheduleHandler.Timetable)
		}

		exports := api.Group("/exports")
		{
			exports.POST("", exportHandler.Create)
			exports.GET("/download/:token", exportHandler.Download)
			exports.GET("/:id", exportHandler.Status)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exportQueue.Start(ctx)
	exportJobs.RecoverPendingJobs(ctx)
	exportJobs.StartCleanup(ctx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logr.Sugar().Infow("shutting down", "signal", sig.String())

	cancel()
	exportQueue.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}

// schedulerDefaults maps configured scheduler bounds onto generation constraints.
func schedulerDefaults(cfg config.SchedulerConfig) models.ScheduleConstraints {
	defaults := models.DefaultScheduleConstraints()
	defaults.DayStartHour = cfg.DayStartHour
	defaults.DayEndHour = cfg.DayEndHour
	defaults.LectureSessionLength = cfg.LectureSessionLength
	defaults.SeminarSessionLength = cfg.SeminarSessionLength
	defaults.PreferredStartHour = cfg.PreferredStartHour
	defaults.PreferredEndHour = cfg.PreferredEndHour
	defaults.MaxEndHour = cfg.MaxEndHour
	defaults.MaxTeacherHoursPerDay = cfg.MaxTeacherHoursPerDay
	defaults.LargeClassThreshold = cfg.LargeClassThreshold
	return defaults
}
