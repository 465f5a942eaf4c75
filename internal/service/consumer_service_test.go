package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ai-qa-be/internal/dto"
	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type consumerFixture struct {
	db       *memoryDB
	embedder *tableEmbedder
	events   *recordingEvents
	corpus   *countingCorpus
	consumer *consumerService
}

func newConsumerFixture() *consumerFixture {
	db := newMemoryDB()
	embedder := &tableEmbedder{vectors: map[string][]float32{}}
	evs := &recordingEvents{}
	corpus := &countingCorpus{ICorpusService: NewCorpusService(db, logger.NewNopLogger())}
	consumer := NewConsumerService(nil, "topic", db, embedder, "test-model", corpus, evs, logger.NewNopLogger()).(*consumerService)
	return &consumerFixture{db: db, embedder: embedder, events: evs, corpus: corpus, consumer: consumer}
}

func TestConsumerIndexCreatesAndReusesVector(t *testing.T) {
	f := newConsumerFixture()
	ctx := context.Background()
	text := &entity.Text{Id: uuid.New(), Name: "n", Content: "<p>hello ☃ world</p>", CreatedAt: time.Now()}
	f.db.texts[text.Id] = text
	f.embedder.vectors["hello  world"] = []float32{1, 2, 3}

	require.NoError(t, f.consumer.index(ctx, text.Id))

	require.Equal(t, []string{"hello  world"}, f.embedder.calls, "markup and symbols are stripped before embedding")
	stored := f.db.texts[text.Id]
	require.NotNil(t, stored.EmbeddingId)
	vector := f.db.embeddings[*stored.EmbeddingId]
	require.NotNil(t, vector)
	assert.Equal(t, []float32{1, 2, 3}, vector.EmbeddingValue)
	assert.Equal(t, "test-model", vector.Model)

	firstId := *stored.EmbeddingId
	stored.Content = "changed"
	require.NoError(t, f.consumer.index(ctx, text.Id))

	assert.Equal(t, firstId, *f.db.texts[text.Id].EmbeddingId, "existing vector row is updated in place")
	assert.Len(t, f.db.embeddings, 1)
	assert.Equal(t, []string{events.TypeTextIndexed, events.TypeTextIndexed}, f.events.types())
	assert.Equal(t, 2, f.corpus.invalidations)
}

func TestConsumerIndexEmptyContentDropsVector(t *testing.T) {
	f := newConsumerFixture()
	text := seedText(f.db, "n", "   ", []float32{1}, time.Now())
	embeddingId := *text.EmbeddingId

	require.NoError(t, f.consumer.index(context.Background(), text.Id))

	assert.Nil(t, f.db.texts[text.Id].EmbeddingId)
	assert.NotContains(t, f.db.embeddings, embeddingId)
	assert.Empty(t, f.embedder.calls)
}

func TestConsumerIndexMissingTextIsNotAnError(t *testing.T) {
	f := newConsumerFixture()
	assert.NoError(t, f.consumer.index(context.Background(), uuid.New()))
	assert.Empty(t, f.events.types())
}

func TestConsumerIndexProviderFailure(t *testing.T) {
	f := newConsumerFixture()
	text := &entity.Text{Id: uuid.New(), Content: "body"}
	f.db.texts[text.Id] = text
	f.embedder.err = errors.New("rate limited")

	assert.Error(t, f.consumer.index(context.Background(), text.Id))
	assert.Nil(t, f.db.texts[text.Id].EmbeddingId)
	assert.Empty(t, f.db.embeddings)
}

func TestConsumerConsumesFromQueue(t *testing.T) {
	f := newConsumerFixture()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()
	f.consumer.subscriber = pubSub

	text := &entity.Text{Id: uuid.New(), Content: "queued body"}
	f.db.texts[text.Id] = text

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.consumer.Consume(ctx))

	publisher := NewPublisherService("topic", pubSub)
	payload, err := json.Marshal(dto.PublishIndexTextMessage{TextId: text.Id})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, payload))

	assert.Eventually(t, func() bool {
		return len(f.events.types()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsumerDoesNotRedeliverFailedIndex(t *testing.T) {
	f := newConsumerFixture()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()
	f.consumer.subscriber = pubSub
	f.embedder.err = errors.New("upstream unavailable")

	text := &entity.Text{Id: uuid.New(), Content: "unembeddable body"}
	f.db.texts[text.Id] = text

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.consumer.Consume(ctx))

	payload, err := json.Marshal(dto.PublishIndexTextMessage{TextId: text.Id})
	require.NoError(t, err)
	require.NoError(t, NewPublisherService("topic", pubSub).Publish(ctx, payload))

	assert.Eventually(t, func() bool {
		return f.embedder.callCount() >= 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, 1, f.embedder.callCount(), "a failed message is acked, not redelivered")
	assert.Empty(t, f.events.types())
}
