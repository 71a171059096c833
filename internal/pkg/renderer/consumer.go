package renderer

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

func StartConsumer(ctx context.Context, brokers []string, topic, groupID string, r Renderer) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
	defer reader.Close()

	logrus.WithFields(logrus.Fields{
		"brokers": brokers,
		"topic":   topic,
		"group":   groupID,
	}).Info("Caption renderer consumer started")

	Run(ctx, r, func(ctx context.Context) ([]byte, error) {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"partition": msg.Partition,
			"offset":    msg.Offset,
			"key":       string(msg.Key),
		}).Debug("Received render task")
		return msg.Value, nil
	})
}
