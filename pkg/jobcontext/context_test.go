package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRunBegin(t *testing.T) {
	id := uuid.New()
	ctx, cancel := RunBegin(context.Background(), id, "filter", time.Minute)
	defer cancel()

	got, ok := GetRunID(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	md := GetRunMetadata(ctx)
	assert.Equal(t, "filter", md.RunType)
	assert.False(t, md.StartTime.IsZero())

	_, hasDeadline := ctx.Deadline()
	assert.True(t, hasDeadline)
}

func TestRunBegin_NoTimeout(t *testing.T) {
	ctx, cancel := RunBegin(context.Background(), uuid.New(), "analysis", 0)
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)

	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestGetRunID_Missing(t *testing.T) {
	_, ok := GetRunID(context.Background())
	assert.False(t, ok)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("groq returned status 503: overloaded"), true},
		{errors.New("groq returned status 429: slow down"), true},
		{fmt.Errorf("post: %w", context.DeadlineExceeded), true},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("groq returned status 401: bad key"), false},
		{errors.New("decode groq response: invalid character"), false},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err))
		})
	}
}
