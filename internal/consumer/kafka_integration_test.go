//go:build integration

package consumer

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaContainer "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/oddwes/ridesofjulian/internal/events"
	"github.com/oddwes/ridesofjulian/internal/outbox"
)

type channelHandler chan Message

func (h channelHandler) Handle(ctx context.Context, msg Message) error {
	select {
	case h <- msg:
	case <-ctx.Done():
	}
	return nil
}

func TestKafkaWorkoutEventReachesHandler(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	kafkaC, err := kafkaContainer.Run(ctx, "confluentinc/confluent-local:7.5.0", testcontainers.WithEnv(map[string]string{
		"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true",
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kafkaC.Terminate(context.Background()) })

	brokers, err := kafkaC.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	broker := brokers[0]
	topic := events.TypeWorkoutLogged

	conn, err := kafka.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{broker},
		GroupID:     "ridesofjulian-integration",
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	defer reader.Close()

	received := make(channelHandler, 1)
	consumerCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		_ = NewProcessor(reader, received).Run(consumerCtx)
	}()

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	defer writer.Close()

	require.NoError(t, writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte("alice"),
		Value: outbox.EncodeWireFormat(5, []byte(`{"workout_id":"w1","user_id":"alice"}`)),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(topic)},
			{Key: "user_id", Value: []byte("alice")},
			{Key: "schema_subject", Value: []byte(topic + "-value")},
		},
	}))

	select {
	case msg := <-received:
		require.Equal(t, topic, msg.EventType)
		require.Equal(t, "alice", msg.UserID)
		require.Equal(t, 5, msg.SchemaID)
		require.JSONEq(t, `{"workout_id":"w1","user_id":"alice"}`, string(msg.Payload))
	case <-time.After(60 * time.Second):
		t.Fatal("message was not consumed")
	}
}
