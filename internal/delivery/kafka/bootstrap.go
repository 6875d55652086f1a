package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/azizikri/claims-management/internal/config"
)

// EnsureTopics creates the request, dead-letter and reply topics. Topics that
// already exist are left untouched.
func EnsureTopics(ctx context.Context, client *kgo.Client, cfg *config.Config, logger *slog.Logger) error {
	adm := kadm.NewClient(client)

	topics := make([]string, 0, 2*len(RequestTopics)+1)
	for _, topic := range RequestTopics {
		topics = append(topics, topic, topic+TopicDLQSuffix)
	}
	topics = append(topics, ReplyTopic(cfg.KafkaInstanceID))

	resp, err := adm.CreateTopics(ctx, int32(cfg.TopicPartitions()), cfg.ReplicationFactor(), nil, topics...)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, detail := range resp.Sorted() {
		if detail.Err != nil && !errors.Is(detail.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", detail.Topic, detail.Err)
		}
	}

	logger.Info("kafka topics ensured", "topics", topics)
	return nil
}
