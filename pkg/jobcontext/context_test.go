package jobcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastPolicy = Policy{
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
	MaxElapsedTime:  time.Second,
}

func TestJobEnd_RetriesTransientErrors(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "finalize", time.Second)
	defer cancel()

	var attempts []int
	err := JobEnd(ctx, fastPolicy, func(ctx context.Context) error {
		attempts = append(attempts, GetRetryAttempt(ctx))
		if len(attempts) < 3 {
			return errors.New("groq returned status 503: overloaded")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, attempts)
}

func TestJobEnd_StopsOnNonRetryable(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "finalize", time.Second)
	defer cancel()

	sentinel := errors.New("scoring credential rejected")
	calls := 0
	err := JobEnd(ctx, fastPolicy, func(context.Context) error {
		calls++
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestJobEnd_GivesUpAfterMaxRetries(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "finalize", time.Second)
	defer cancel()
	ctx = SetMaxRetries(ctx, 2)

	calls := 0
	err := JobEnd(ctx, fastPolicy, func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, err.Error(), "max retries (2) exceeded")
}

func TestJobEnd_RecoversPanics(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "finalize", time.Second)
	defer cancel()

	err := JobEnd(ctx, fastPolicy, func(context.Context) error {
		panic("boom")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic recovered: boom")
}

func TestJobMetadata(t *testing.T) {
	id := uuid.New()
	ctx, cancel := JobBegin(context.Background(), id, "finalize", 0)
	defer cancel()

	meta := GetJobMetadata(ctx)
	assert.Equal(t, id, meta.JobID)
	assert.Equal(t, "finalize", meta.JobType)
	assert.Equal(t, 3, meta.MaxRetries)
	assert.False(t, meta.StartTime.IsZero())

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), deadline, time.Second)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(context.DeadlineExceeded))
	assert.True(t, IsRetryableError(errors.New("groq returned status 429: slow down")))
	assert.True(t, IsRetryableError(errors.New("gemini returned status 500: backend error")))
	assert.False(t, IsRetryableError(errors.New("groq returned status 401: scoring credential rejected")))
	assert.False(t, IsRetryableError(nil))
}
