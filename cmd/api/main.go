package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/praesidion/wpbr-intake/api/swagger"
	"github.com/praesidion/wpbr-intake/internal/handler"
	"github.com/praesidion/wpbr-intake/internal/middleware"
	"github.com/praesidion/wpbr-intake/internal/repository"
	"github.com/praesidion/wpbr-intake/internal/service"
	"github.com/praesidion/wpbr-intake/pkg/cache"
	"github.com/praesidion/wpbr-intake/pkg/config"
	"github.com/praesidion/wpbr-intake/pkg/database"
	"github.com/praesidion/wpbr-intake/pkg/export"
	"github.com/praesidion/wpbr-intake/pkg/jobs"
	"github.com/praesidion/wpbr-intake/pkg/logger"
	"github.com/praesidion/wpbr-intake/pkg/mailer"
	corsmiddleware "github.com/praesidion/wpbr-intake/pkg/middleware/cors"
	reqidmiddleware "github.com/praesidion/wpbr-intake/pkg/middleware/requestid"
	"github.com/praesidion/wpbr-intake/pkg/storage"
)

// instrumentedSender wraps the SMTP sender so every outbound mail lands in
// the metrics registry.
type instrumentedSender struct {
	inner   mailer.Sender
	metrics *service.MetricsService
}

func (s *instrumentedSender) Send(ctx context.Context, msg *mailer.Message) error {
	start := time.Now()
	err := s.inner.Send(ctx, msg)
	s.metrics.ObserveEmail(err == nil, time.Since(start))
	return err
}

// @title WPBR Intake API
// @version 1.0.0
// @description Session-based intake for WPBR security-pass applications
// @BasePath /api/v1
// @schemes http https

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	stagingStore, err := storage.NewLocalStorage(cfg.Uploads.StagingDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare staging directory", "error", err)
	}
	documentStore, err := storage.NewLocalStorage(cfg.Documents.OutputDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare documents directory", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	sender := &instrumentedSender{
		inner:   mailer.NewSMTPSender(cfg.SMTP),
		metrics: metricsSvc,
	}

	sessionRepo := repository.NewSessionRepository(redisClient, cfg.Session.Timeout, logr)
	trackingRepo := repository.NewTrackingRepository(db)

	uploadSvc := service.NewUploadService(stagingStore, logr, service.UploadServiceConfig{
		MaxFileSize: cfg.Uploads.MaxFileSizeBytes,
	})
	documentSvc := service.NewDocumentService(
		export.NewSummaryExporter(),
		documentStore,
		storage.NewSignedURLSigner(cfg.Documents.DownloadTokenSecret, cfg.Documents.DownloadTokenTTL),
		logr,
		service.DocumentServiceConfig{TemplatePath: cfg.Documents.TemplatePath},
	)
	dispatchSvc := service.NewDispatchService(sender, trackingRepo, logr, service.DispatchServiceConfig{
		BaseURL:   cfg.BaseURL,
		APIPrefix: cfg.APIPrefix,
		From:      cfg.SMTP.From,
		BCCSender: cfg.SMTP.BCCSender,
	})
	submissionSvc := service.NewSubmissionService(
		sessionRepo, uploadSvc, documentSvc, dispatchSvc,
		validator.New(), logr,
		service.SubmissionServiceConfig{SessionTimeout: cfg.Session.Timeout},
	)
	trackingSvc := service.NewTrackingService(trackingRepo, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Orphaned staging files accumulate when sessions crash or expire
	// between requests, so a periodic sweep deletes anything past the TTL.
	sweepQueue := jobs.NewQueue("staging-sweep", func(context.Context, jobs.Job) error {
		deleted, err := stagingStore.CleanupOlderThan(cfg.Uploads.SweepTTL)
		if err != nil {
			return err
		}
		metricsSvc.ObserveSweep(len(deleted))
		if len(deleted) > 0 {
			logr.Sugar().Infow("staging sweep removed stale files", "count", len(deleted))
		}
		return nil
	}, jobs.QueueConfig{Workers: 1, Logger: logr})
	sweepQueue.Start(ctx)
	defer sweepQueue.Stop()

	go func() {
		ticker := time.NewTicker(cfg.Uploads.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := sweepQueue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "sweep"}); err != nil {
					logr.Sugar().Warnw("failed to enqueue staging sweep", "error", err)
				}
			}
		}
	}()

	submissionHandler := handler.NewSubmissionHandler(submissionSvc, metricsSvc, cfg.Uploads.MaxFileSizeBytes)
	trackingHandler := handler.NewTrackingHandler(trackingSvc, metricsSvc)
	regionHandler := handler.NewRegionHandler()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Mail clients fetch the pixel without credentials.
	api.GET("/track/open/:token", trackingHandler.Open)
	api.GET("/track/delivered/:token", trackingHandler.Delivered)

	authed := api.Group("")
	authed.Use(middleware.JWT(cfg.JWT.Secret))

	authed.GET("/regions", regionHandler.List)
	authed.GET("/track/status/:token", trackingHandler.Status)
	authed.GET("/submissions/:id/tracking", trackingHandler.ListBySubmission)

	session := authed.Group("")
	session.Use(middleware.SessionCleanup(submissionSvc, logr))

	session.GET("/submission", submissionHandler.Open)
	session.POST("/submission", submissionHandler.Submit)
	session.DELETE("/submission", submissionHandler.Abandon)
	session.POST("/submission/review", submissionHandler.Review)
	session.POST("/submission/send", submissionHandler.Send)
	session.POST("/submission/restart", submissionHandler.Restart)
	session.GET("/submission/document", submissionHandler.DownloadDocument)
	session.GET("/uploads/:name", submissionHandler.ServeUpload)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
