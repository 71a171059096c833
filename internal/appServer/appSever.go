// launching the server, storage, kafka, redis and background workers
package appServer

import (
	"context"
	"crypto/tls"
	"log"

	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/captioner/config"
	"github.com/ds124wfegd/captioner/internal/database"
	"github.com/ds124wfegd/captioner/internal/pkg/caption"
	"github.com/ds124wfegd/captioner/internal/pkg/kafka"
	"github.com/ds124wfegd/captioner/internal/pkg/redis"
	"github.com/ds124wfegd/captioner/internal/pkg/renderer"
	"github.com/ds124wfegd/captioner/internal/pkg/storage"
	"github.com/ds124wfegd/captioner/internal/service"
	"github.com/ds124wfegd/captioner/internal/transport"
	"github.com/ds124wfegd/captioner/internal/worker"
	"github.com/gin-gonic/gin"

	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// NewJobRepository picks the metadata backend from storage.metadata. The
// returned func releases whatever the backend opened.
func NewJobRepository(ctx context.Context, cfg *config.Config, fileStorage storage.FileStorage) (database.JobRepository, func(), error) {
	if cfg.Storage.Metadata != "redis" {
		return database.NewJobRepository(fileStorage), func() {}, nil
	}

	client, err := redis.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close redis client")
		}
	}
	return database.NewRedisJobRepository(client, fileStorage, cfg.App.ResultTTL), closeFn, nil
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage and job metadata
	fileStorage := storage.NewFileStorage(cfg.Storage.Path)
	jobRepo, closeRepo, err := NewJobRepository(ctx, cfg, fileStorage)
	if err != nil {
		logrus.Fatalf("Failed to initialize job repository: %v", err)
	}
	defer closeRepo()

	// Initialize compositor
	fonts := caption.NewFontResolver(cfg.Fonts.Dir, cfg.Fonts.Candidates)
	compositor := caption.NewCompositor(fonts, logrus.StandardLogger())
	captionRenderer := renderer.NewRenderer(jobRepo, compositor, cfg.App.MaxPixels)

	// Without Kafka the tasks are rendered in-process
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, func(key string, value []byte) {
		go func() {
			if err := captionRenderer.HandleMessage(value); err != nil {
				logrus.WithError(err).WithField("job_id", key).Error("In-process render failed")
			}
		}()
	})
	defer producer.Close()

	captionService := service.NewCaptionService(jobRepo, producer, fonts, compositor, service.Options{
		MaxCaptions: cfg.App.MaxCaptions,
		MaxPixels:   cfg.App.MaxPixels,
	})
	captionHandler := transport.NewCaptionHandler(captionService, cfg.App.MaxUploadSize, cfg.App.BaseURL)

	// Initialize cleanup worker
	cleanupWorker := worker.NewResultCleanupWorker(captionService, cfg.Worker.CleanupInterval, cfg.App.ResultTTL)
	go cleanupWorker.Start(ctx)
	logrus.Info("Cleanup worker started")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(captionHandler, cfg.Server.RequestTimeout)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
