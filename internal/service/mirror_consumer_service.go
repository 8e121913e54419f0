package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bakery-support-be/internal/pkg/logger"
	"bakery-support-be/pkg/conversation"
	"bakery-support-be/pkg/embedding"
	"bakery-support-be/pkg/events"
	"bakery-support-be/pkg/nats"
	"bakery-support-be/pkg/vectorindex"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	embedRetryAttempts = 3
	embedRetryDelay    = 2 * time.Second

	mirrorLogModule = "MirrorConsumer"
)

type IMirrorConsumerService interface {
	Consume(ctx context.Context) error
}

// mirrorConsumerService drains the conversation mirror topic, embeds each
// exchange and upserts it into the conversation vector index. It runs fully
// decoupled from the request path.
type mirrorConsumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	embeddingProvider embedding.Provider
	index             vectorindex.Index
	eventPublisher    *nats.Publisher
	logger            logger.ILogger
}

func NewMirrorConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	embeddingProvider embedding.Provider,
	index vectorindex.Index,
	eventPublisher *nats.Publisher,
	consumerLogger logger.ILogger,
) IMirrorConsumerService {
	return &mirrorConsumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		embeddingProvider: embeddingProvider,
		index:             index,
		eventPublisher:    eventPublisher,
		logger:            consumerLogger,
	}
}

func (cs *mirrorConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *mirrorConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload conversation.ExchangeMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		cs.logger.Error(mirrorLogModule, "Failed to unmarshal mirror message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info(mirrorLogModule, "Mirroring exchange", map[string]interface{}{"user_id": payload.UserID})

	vector, err := cs.embedWithRetry(ctx, payload.Query)
	if err != nil {
		cs.logger.Error(mirrorLogModule, "Failed to embed exchange", map[string]interface{}{
			"user_id": payload.UserID,
			"error":   err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}

	vectorID := fmt.Sprintf("conv_%s_%d", payload.UserID, time.Now().UnixNano())
	record := vectorindex.Record{
		ID:     vectorID,
		Values: vector,
		Metadata: map[string]string{
			"user_id":          payload.UserID,
			"timestamp":        time.Unix(payload.Timestamp, 0).Format(time.RFC3339),
			"query":            truncate(payload.Query, 200),
			"response_summary": truncate(payload.Response, 200),
			"source_count":     fmt.Sprintf("%d", payload.SourceCount),
		},
	}

	if err := cs.index.Upsert(ctx, []vectorindex.Record{record}); err != nil {
		cs.logger.Error(mirrorLogModule, "Failed to upsert mirrored exchange", map[string]interface{}{
			"vector_id": vectorID,
			"error":     err.Error(),
		})
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		if err := cs.eventPublisher.Publish(ctx, events.NewExchangeMirrored(payload.UserID, vectorID)); err != nil {
			cs.logger.Warn(mirrorLogModule, "Failed to publish EXCHANGE_MIRRORED event", map[string]interface{}{"error": err.Error()})
		}
	}

	cs.logger.Info(mirrorLogModule, "Exchange mirrored", map[string]interface{}{"vector_id": vectorID})
	msg.Ack()
}

func (cs *mirrorConsumerService) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= embedRetryAttempts; attempt++ {
		vector, err := cs.embeddingProvider.EmbedQuery(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err
		cs.logger.Warn(mirrorLogModule, "Embedding attempt failed", map[string]interface{}{
			"attempt": attempt,
			"of":      embedRetryAttempts,
			"error":   err.Error(),
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(embedRetryDelay):
		}
	}
	return nil, lastErr
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
