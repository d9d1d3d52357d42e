package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"courseplatform/internal/config"
	"courseplatform/internal/database"
	"courseplatform/internal/middleware"
	"courseplatform/internal/modules/comment"
	"courseplatform/internal/modules/media"
	"courseplatform/internal/modules/progress"
	"courseplatform/internal/modules/segment"
	jwtsvc "courseplatform/internal/pkg/jwt"
	"courseplatform/internal/pkg/logger"
	"courseplatform/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("database migrate failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		prometheus.MustRegister(collectors.NewDBStatsCollector(sqlDB, "courseplatform"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := buildStorage(ctx, cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("storage init failed")
	}
	log.WithField("backend", cfg.Storage.Backend).Info("storage ready")

	segmentRepo := repository.NewSegmentRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	segmentService := segment.NewService(segmentRepo, attachmentRepo, store, log, cfg.CleanupConcurrency)
	segmentHandler := segment.NewHandler(segmentService)

	commentHandler := comment.NewHandler(comment.NewService(commentRepo))
	progressHandler := progress.NewHandler(progress.NewService(progressRepo, segmentRepo))

	mediaService := media.NewService(store, cfg.MaxUploadSize, log)
	mediaHandler := media.NewHandler(mediaService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	r.Use(middleware.ErrorLogger(log), middleware.CORS(cfg.CORSAllowedOrigins), middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if local := localBackend(store); local != nil {
		media.NewFileHandler(local).RegisterRoutes(r)
	}

	v1 := r.Group("/api/v1")
	{
		// public
		segmentHandler.RegisterRoutes(v1, nil)
		commentHandler.RegisterRoutes(v1)

		// protected
		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j))
		{
			progressHandler.RegisterRoutes(protected)
		}

		// admin
		admin := v1.Group("")
		admin.Use(middleware.JWTAuth(j), middleware.AdminOnly())
		{
			segmentHandler.RegisterRoutes(nil, admin)
		}

		mediaHandler.RegisterRoutes(admin, protected)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
