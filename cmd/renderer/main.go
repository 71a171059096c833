// standalone Kafka consumer that renders queued caption jobs
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ds124wfegd/captioner/config"
	"github.com/ds124wfegd/captioner/internal/appServer"
	"github.com/ds124wfegd/captioner/internal/pkg/caption"
	"github.com/ds124wfegd/captioner/internal/pkg/renderer"
	"github.com/ds124wfegd/captioner/internal/pkg/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}
	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobRepo, closeRepo, err := appServer.NewJobRepository(ctx, cfg, storage.NewFileStorage(cfg.Storage.Path))
	if err != nil {
		logrus.Fatalf("Failed to initialize job repository: %v", err)
	}
	defer closeRepo()

	fonts := caption.NewFontResolver(cfg.Fonts.Dir, cfg.Fonts.Candidates)
	r := renderer.NewRenderer(jobRepo, caption.NewCompositor(fonts, logrus.StandardLogger()), cfg.App.MaxPixels)

	brokers := cfg.Kafka.Brokers
	if env := config.GetEnv("KAFKA_BROKERS", ""); env != "" {
		brokers = []string{env}
	}
	renderer.StartConsumer(ctx, brokers,
		config.GetEnv("KAFKA_TOPIC", cfg.Kafka.Topic),
		config.GetEnv("KAFKA_GROUP_ID", cfg.Kafka.GroupID),
		r,
	)
	logrus.Info("Caption renderer stopped")
}
