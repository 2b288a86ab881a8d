package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shortkey/shortkey/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type consumeTestEvent struct {
	Key string `json:"shortKey"`
}

type mockSubscriber struct {
	msgChan      chan *message.Message
	subscribeErr error
	mu           sync.Mutex
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		msgChan: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgChan)
	}

	return nil
}

func TestConsumer_Start(t *testing.T) {
	t.Run("subscribes to its topic", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"url.clicked",
			func(_ context.Context, _ *consumeTestEvent) error { return nil },
			zap.NewNop(),
		)

		err := consumer.Start(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "url.clicked", consumer.Topic())

		_ = consumer.Shutdown()
	})

	t.Run("returns error when subscribe fails", func(t *testing.T) {
		sub := &mockSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := messaging.NewConsumer(
			sub,
			"url.clicked",
			func(_ context.Context, _ *consumeTestEvent) error { return nil },
			zap.NewNop(),
		)

		assert.Error(t, consumer.Start(context.Background()))
	})
}

func TestConsumer_HandleMessage(t *testing.T) {
	t.Run("acks and delivers the decoded event", func(t *testing.T) {
		sub := newMockSubscriber()

		var received *consumeTestEvent

		consumer := messaging.NewConsumer(
			sub,
			"url.clicked",
			func(_ context.Context, event *consumeTestEvent) error {
				received = event

				return nil
			},
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))

		payload, _ := json.Marshal(&consumeTestEvent{Key: "abcd1234"})
		msg := message.NewMessage(watermill.NewUUID(), payload)

		sub.msgChan <- msg

		select {
		case <-msg.Acked():
			assert.Equal(t, "abcd1234", received.Key)
		case <-msg.Nacked():
			t.Fatal("message was nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for ack")
		}

		_ = consumer.Shutdown()
	})

	t.Run("nacks undecodable payloads", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"url.clicked",
			func(_ context.Context, _ *consumeTestEvent) error { return nil },
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))

		msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))

		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
		case <-msg.Acked():
			t.Fatal("message should have been nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}

		_ = consumer.Shutdown()
	})

	t.Run("nacks when the handler fails", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"url.clicked",
			func(_ context.Context, _ *consumeTestEvent) error {
				return errors.New("handler error")
			},
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))

		payload, _ := json.Marshal(&consumeTestEvent{Key: "abcd1234"})
		msg := message.NewMessage(watermill.NewUUID(), payload)

		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
		case <-msg.Acked():
			t.Fatal("message should have been nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}

		_ = consumer.Shutdown()
	})
}

func TestConsumerGroup(t *testing.T) {
	t.Run("starts and shuts down all consumers", func(t *testing.T) {
		sub := newMockSubscriber()
		group := messaging.NewConsumerGroup(sub, zap.NewNop())

		group.Add(messaging.NewConsumer(
			sub,
			"url.created",
			func(_ context.Context, _ *consumeTestEvent) error { return nil },
			zap.NewNop(),
		))
		group.Add(messaging.NewConsumer(
			sub,
			"url.clicked",
			func(_ context.Context, _ *consumeTestEvent) error { return nil },
			zap.NewNop(),
		))

		require.NoError(t, group.Start(context.Background()))
		require.NoError(t, group.Shutdown())
	})

	t.Run("start failure shuts down earlier consumers", func(t *testing.T) {
		good := newMockSubscriber()
		bad := &mockSubscriber{subscribeErr: errors.New("subscribe error")}

		group := messaging.NewConsumerGroup(good, zap.NewNop())
		group.Add(messaging.NewConsumer(
			good,
			"url.created",
			func(_ context.Context, _ *consumeTestEvent) error { return nil },
			zap.NewNop(),
		))
		group.Add(messaging.NewConsumer(
			bad,
			"url.clicked",
			func(_ context.Context, _ *consumeTestEvent) error { return nil },
			zap.NewNop(),
		))

		assert.Error(t, group.Start(context.Background()))
	})
}
