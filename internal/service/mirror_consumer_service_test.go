package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"bakery-support-be/internal/pkg/logger"
	"bakery-support-be/pkg/conversation"
	"bakery-support-be/pkg/vectorindex"
)

func newMirrorTestLogger(t *testing.T) logger.ILogger {
	t.Helper()
	return logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "mirror.log"))
}

type signalingIndex struct {
	upserts chan vectorindex.Record
}

func (s *signalingIndex) Query(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]vectorindex.Match, error) {
	return nil, nil
}

func (s *signalingIndex) Upsert(ctx context.Context, records []vectorindex.Record) error {
	for _, r := range records {
		s.upserts <- r
	}
	return nil
}

func (s *signalingIndex) Fetch(ctx context.Context, ids []string) (map[string][]float32, error) {
	return nil, nil
}

func TestMirrorConsumerPersistsExchange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	index := &signalingIndex{upserts: make(chan vectorindex.Record, 4)}
	consumer := NewMirrorConsumerService(pubSub, "mirror-topic", fakeEmbedder{}, index, nil, newMirrorTestLogger(t))

	if err := consumer.Consume(ctx); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	mirror := conversation.NewWatermillMirror(pubSub, "mirror-topic")
	exchange := conversation.Exchange{
		Timestamp: time.Now(),
		Query:     "¿Tienen pan de centeno?",
		Response:  "Sí, tenemos hogazas de centeno.",
	}
	if err := mirror.PublishExchange("u1", exchange); err != nil {
		t.Fatalf("PublishExchange() error = %v", err)
	}

	select {
	case record := <-index.upserts:
		if !strings.HasPrefix(record.ID, "conv_u1_") {
			t.Errorf("record id = %q, want conv_u1_ prefix", record.ID)
		}
		if record.Metadata["user_id"] != "u1" {
			t.Errorf("user_id metadata = %q", record.Metadata["user_id"])
		}
		if record.Metadata["query"] != exchange.Query {
			t.Errorf("query metadata = %q", record.Metadata["query"])
		}
		if record.Metadata["source_count"] != "0" {
			t.Errorf("source_count metadata = %q", record.Metadata["source_count"])
		}
	case <-time.After(3 * time.Second):
		t.Fatal("exchange was never mirrored to the index")
	}
}

func TestMirrorConsumerSkipsMalformedPayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	index := &signalingIndex{upserts: make(chan vectorindex.Record, 4)}
	consumer := NewMirrorConsumerService(pubSub, "mirror-topic", fakeEmbedder{}, index, nil, newMirrorTestLogger(t))

	if err := consumer.Consume(ctx); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	garbage := message.NewMessage(watermill.NewUUID(), []byte("{{not json"))
	if err := pubSub.Publish("mirror-topic", garbage); err != nil {
		t.Fatal(err)
	}

	mirror := conversation.NewWatermillMirror(pubSub, "mirror-topic")
	if err := mirror.PublishExchange("u2", conversation.Exchange{
		Timestamp: time.Now(),
		Query:     "hola",
		Response:  "¡Hola!",
	}); err != nil {
		t.Fatal(err)
	}

	// Only the valid message should reach the index.
	select {
	case record := <-index.upserts:
		if record.Metadata["user_id"] != "u2" {
			t.Errorf("unexpected record mirrored: %+v", record)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("valid exchange was never mirrored")
	}

	select {
	case record := <-index.upserts:
		t.Errorf("malformed payload produced a record: %+v", record)
	case <-time.After(200 * time.Millisecond):
	}
}
