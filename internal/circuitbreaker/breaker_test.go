package circuitbreaker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hook-engine/internal/common/errors"
	"hook-engine/internal/common/logging"
)

func testConfig() Config {
	return Config{
		MaxFailures:           3,
		Timeout:               time.Second,
		MaxConcurrentRequests: 1,
	}
}

func TestBreaker_OpensAfterConsecutiveTransientFailures(t *testing.T) {
	breaker := New("dest", testConfig(), logging.NewDefaultLogger())
	ctx := context.Background()

	fail := func() error { return errors.InternalError("HTTP 500", nil) }

	for i := 0; i < 3; i++ {
		assert.Error(t, breaker.Execute(ctx, fail))
	}
	assert.True(t, breaker.IsOpen())

	// Calls now short-circuit as connection errors without running fn.
	ran := false
	err := breaker.Execute(ctx, func() error { ran = true; return nil })
	assert.False(t, ran)
	assert.True(t, errors.IsType(err, errors.ErrTypeConnection))
	assert.True(t, errors.IsTransient(err))
}

func TestBreaker_PermanentFailuresDoNotTrip(t *testing.T) {
	breaker := New("dest", testConfig(), logging.NewDefaultLogger())
	ctx := context.Background()

	// 4xx-style failures are the sender's fault and must not punish the
	// destination.
	for i := 0; i < 10; i++ {
		err := breaker.Execute(ctx, func() error { return errors.ValidationError("HTTP 404") })
		assert.Error(t, err)
	}
	assert.False(t, breaker.IsOpen())
}

func TestBreaker_SuccessResetsFailureStreak(t *testing.T) {
	breaker := New("dest", testConfig(), logging.NewDefaultLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		breaker.Execute(ctx, func() error { return errors.InternalError("HTTP 503", nil) })
	}
	assert.NoError(t, breaker.Execute(ctx, func() error { return nil }))

	for i := 0; i < 2; i++ {
		breaker.Execute(ctx, func() error { return errors.InternalError("HTTP 503", nil) })
	}
	assert.False(t, breaker.IsOpen())
}

func TestBreaker_InvalidConfigFallsBack(t *testing.T) {
	breaker := New("dest", Config{}, logging.NewDefaultLogger())
	assert.NoError(t, breaker.Execute(context.Background(), func() error { return nil }))
}
