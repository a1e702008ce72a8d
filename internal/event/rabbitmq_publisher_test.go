package event

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanRequestEvent_RoutingKey(t *testing.T) {
	e := LoanRequestEvent{ToStatus: "approved"}
	assert.Equal(t, "loan_request.approved", e.RoutingKey())
}

func TestNewRabbitMQEventPublisher_Validation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	_, err := NewRabbitMQEventPublisher(nil, "loan-marketplace", logger)
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	var pub EventPublisher = NewNoopPublisher(logger)

	err := pub.PublishLoanRequestEvent(context.Background(), LoanRequestEvent{
		RequestID: "r-1",
		ToStatus:  "created",
		Timestamp: time.Now(),
	})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "loan_request.created")
}
