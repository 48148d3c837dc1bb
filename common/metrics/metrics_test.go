package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestNewMock_IgnoresRecords(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.Database.RecordQuery(ctx, "select", "tutors", time.Millisecond, nil)
		m.Database.RecordTx(ctx, "approve_tutor", errors.New("boom"))
		m.Messaging.RecordPublish(ctx, "nats", "developer.events", time.Millisecond, nil)
		m.Grpc.RecordRequest(ctx, "grpc.health.v1.Health", "Check", time.Millisecond, codes.OK)
	})
	assert.Nil(t, m.Meter())
}

func TestHealth_RecordDependencyCheck(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	m.Health.RecordDependencyCheck(ctx, "postgres", time.Millisecond, nil)
	assert.True(t, m.Health.Available("postgres"))

	m.Health.RecordDependencyCheck(ctx, "postgres", time.Millisecond, errors.New("down"))
	assert.False(t, m.Health.Available("postgres"))
	assert.False(t, m.Health.Available("nats"))
}

func TestNew_WithGlobalProvider(t *testing.T) {
	m, err := New(context.Background(), "developer-back-test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	assert.NotNil(t, m.Meter())
	assert.GreaterOrEqual(t, m.Runtime.Uptime(), time.Duration(0))
}

func TestSplitMethodName(t *testing.T) {
	service, method := splitMethodName("/grpc.health.v1.Health/Check")
	assert.Equal(t, "grpc.health.v1.Health", service)
	assert.Equal(t, "Check", method)

	service, method = splitMethodName("Check")
	assert.Equal(t, "unknown", service)
	assert.Equal(t, "Check", method)
}
