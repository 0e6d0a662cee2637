package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestFuture_SingleAssignment verifies only the first result is kept
// Given: A pending future
// When: complete is called twice
// Then: Readers see the first result
func TestFuture_SingleAssignment(t *testing.T) {
	// Arrange
	f := newFuture[int](GenerateTaskID())
	_, ok := f.Result()
	require.False(t, ok)

	// Act
	f.complete(Result[int]{Value: 1})
	f.complete(Result[int]{Value: 2, Err: errors.New("late")})

	// Assert
	v, err := f.Wait()
	require.NoError(t, err)
	require.Equal(t, 1, v)
	r, ok := f.Result()
	require.True(t, ok)
	require.Equal(t, 1, r.Value)
	select {
	case <-f.Done():
	default:
		t.Fatal("Done() not closed after complete")
	}
}

// TestFuture_GetHonorsContext verifies Get gives up with the ctx error
// Given: A future that is never completed
// When: Get is called with a short deadline
// Then: It returns context.DeadlineExceeded and the zero value
func TestFuture_GetHonorsContext(t *testing.T) {
	// Arrange
	f := newFuture[string](GenerateTaskID())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Act
	v, err := f.Get(ctx)

	// Assert
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Empty(t, v)
}

// TestNewWorkTask_DeliversOutcome verifies the wrapper feeds the future
// Main test items:
// 1. A value is delivered with a nil error
// 2. A returned error is delivered unchanged and also returned by Run
// 3. Fail after completion does not overwrite the result
func TestNewWorkTask_DeliversOutcome(t *testing.T) {
	ctx := context.Background()

	t.Run("value", func(t *testing.T) {
		item, f := NewWorkTask("answer", Work[int](func(ctx context.Context) (int, error) { return 42, nil }))
		require.Equal(t, f.ID(), item.ID)
		require.Equal(t, "answer", item.Name)
		require.NoError(t, item.Run(ctx))

		v, err := f.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, 42, v)
	})

	t.Run("error", func(t *testing.T) {
		sentinel := errors.New("nope")
		item, f := NewWorkTask("", Work[int](func(ctx context.Context) (int, error) { return 0, sentinel }))
		require.ErrorIs(t, item.Run(ctx), sentinel)

		_, err := f.Get(ctx)
		require.ErrorIs(t, err, sentinel)
	})

	t.Run("fail after completion", func(t *testing.T) {
		item, f := NewTask("done", func(ctx context.Context) {})
		require.NoError(t, item.Run(ctx))
		item.Fail(errors.New("too late"))

		_, err := f.Get(ctx)
		require.NoError(t, err)
	})
}

func TestResolveTaskName(t *testing.T) {
	require.Equal(t, "explicit", resolveTaskName(func() {}, "explicit"))
	require.Equal(t, "anonymous", resolveTaskName(nil, ""))
	require.Equal(t, "anonymous", resolveTaskName(42, ""))
	require.Contains(t, resolveTaskName(TestResolveTaskName, ""), "TestResolveTaskName")
}
