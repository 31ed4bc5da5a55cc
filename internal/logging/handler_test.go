package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataaqu/weforward/internal/store"
	"github.com/dataaqu/weforward/internal/testutil"
)

func testEventLogger(t *testing.T) (*slog.Logger, *store.Queries) {
	t.Helper()
	db := testutil.TestDB(t)
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewEventLogHandler(inner, db)), store.New(db)
}

func TestWarningsMirroredToEventLog(t *testing.T) {
	logger, queries := testEventLogger(t)

	logger.Warn("failed login attempt", "category", "auth", "email", "x@y.ge")

	events, err := queries.ListRecentEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "warning", events[0].Level)
	assert.Equal(t, "auth", events[0].Category)
	assert.Equal(t, "failed login attempt", events[0].Message)
	assert.Contains(t, events[0].Metadata, "x@y.ge")
	assert.NotContains(t, events[0].Metadata, "category")
}

func TestInfoNotMirrored(t *testing.T) {
	logger, queries := testEventLogger(t)

	logger.Info("post created", "category", "content")

	events, err := queries.ListRecentEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestErrorLevelRecorded(t *testing.T) {
	logger, queries := testEventLogger(t)

	logger.Error("cache write failed")

	events, err := queries.ListRecentEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].Level)
}

func TestCategoryGuessedFromMessage(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"failed login attempt", "auth"},
		{"post update rejected", "content"},
		{"image upload failed", "media"},
		{"disk nearly full", "system"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			logger, queries := testEventLogger(t)
			logger.Warn(tt.message)

			events, err := queries.ListRecentEvents(context.Background(), 1)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0].Category)
		})
	}
}
