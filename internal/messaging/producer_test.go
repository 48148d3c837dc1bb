package messaging_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/common/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/events"
	"github.com/kosta-developer/DEVELOPER-Back/internal/messaging"
	"github.com/kosta-developer/DEVELOPER-Back/testing/testnats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducerWithNATSContainer(t *testing.T) {
	natsContainer := testnats.SetupSharedNATS(t)
	defer natsContainer.Cleanup(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Publish_DeliversEvent", func(t *testing.T) {
		subject := "test.events." + strings.ReplaceAll(t.Name(), "/", ".")
		sub := natsContainer.Subscribe(t, subject)

		producer, err := messaging.NewProducer(natsContainer.URL, subject, logger, metrics.NewMock())
		require.NoError(t, err)
		defer producer.Close()

		event := events.New(events.TutorApproved, "kim", "admin", map[string]any{"role": 1})
		require.NoError(t, producer.Publish(context.Background(), event))

		msg, err := sub.NextMsg(2 * time.Second)
		require.NoError(t, err)

		var got events.Event
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, events.TutorApproved, got.Type)
		assert.Equal(t, "kim", got.Subject)
		assert.Equal(t, events.TutorApproved, msg.Header.Get("Event-Type"))
	})

	t.Run("Ping_Connected", func(t *testing.T) {
		producer, err := messaging.NewProducer(natsContainer.URL, "test.events.ping", logger, metrics.NewMock())
		require.NoError(t, err)
		defer producer.Close()

		assert.NoError(t, producer.Ping(context.Background()))
	})

	t.Run("NewProducer_Unreachable", func(t *testing.T) {
		_, err := messaging.NewProducer("nats://127.0.0.1:1", "x", logger, metrics.NewMock())
		assert.Error(t, err)
	})
}
