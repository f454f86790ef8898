package xruntime_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"gactor/pkg/xruntime"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal(t *testing.T) {
	env := xruntime.New(xruntime.EnvArgs{})
	s := env.NewSignal()
	assert.False(t, s.IsSet())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.DeadlineExceeded)

	go s.Set()
	require.NoError(t, s.Wait(context.Background()))
	assert.True(t, s.IsSet())

	s.Clear()
	assert.False(t, s.IsSet())
}

func TestFutureSingleAssignment(t *testing.T) {
	env := xruntime.New(xruntime.EnvArgs{})
	f := env.NewFuture()

	assert.True(t, f.Resolve("first"))
	assert.False(t, f.Resolve("second"))
	assert.False(t, f.Fail(errors.New("late")))
	assert.False(t, f.Cancel())

	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

func TestFutureCancel(t *testing.T) {
	env := xruntime.New(xruntime.EnvArgs{})
	f := env.NewFuture()

	assert.True(t, f.Cancel())
	assert.True(t, f.Cancelled())
	assert.False(t, f.Resolve(1))

	_, err := f.Wait(context.Background())
	assert.ErrorIs(t, err, xruntime.ErrCancelled)
}

func TestChannelFIFO(t *testing.T) {
	env := xruntime.New(xruntime.EnvArgs{})
	for _, capacity := range []int{0, 16} {
		ch := env.NewChannel(capacity)
		ctx := context.Background()
		for i := 0; i < 10; i++ {
			require.NoError(t, ch.Put(ctx, i))
		}
		assert.Equal(t, 10, ch.Len())
		for i := 0; i < 10; i++ {
			v, err := ch.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, i, v)
		}
		_, ok := ch.TryGet()
		assert.False(t, ok)
	}
}

func TestBoundedChannelBlocks(t *testing.T) {
	env := xruntime.New(xruntime.EnvArgs{})
	ch := env.NewChannel(1)
	require.NoError(t, ch.Put(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, ch.Put(ctx, 2), context.DeadlineExceeded)
}

func TestUnboundedChannelWakesConsumer(t *testing.T) {
	env := xruntime.New(xruntime.EnvArgs{})
	ch := env.NewChannel(0)

	got := make(chan any, 1)
	go func() {
		v, _ := ch.Get(context.Background())
		got <- v
	}()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, ch.Put(context.Background(), "wake"))

	select {
	case v := <-got:
		assert.Equal(t, "wake", v)
	case <-time.After(time.Second):
		t.Fatal("consumer not woken")
	}
}

func TestRunInExecutor(t *testing.T) {
	env := xruntime.New(xruntime.EnvArgs{ExecutorWorkers: 1})
	ctx := context.Background()

	v, err := env.RunInExecutor(ctx, func(ctx context.Context) (any, error) { return 42, nil }).Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = env.RunInExecutor(ctx, func(ctx context.Context) (any, error) { panic("boom") }).Wait(ctx)
	assert.ErrorIs(t, err, xruntime.ErrPanic)
	assert.Equal(t, "boom: task panic", err.Error())
}

func TestRunParallel(t *testing.T) {
	env := xruntime.New(xruntime.EnvArgs{})
	ctx := context.Background()

	var n atomic.Int32
	fns := make([]func(ctx context.Context) error, 0)
	for i := 0; i < 5; i++ {
		fns = append(fns, func(ctx context.Context) error {
			n.Add(1)
			return nil
		})
	}
	require.NoError(t, env.RunParallel(ctx, fns, 0))
	assert.Equal(t, int32(5), n.Load())

	errA, errB := errors.New("a"), errors.New("b")
	err := env.RunParallel(ctx, []func(ctx context.Context) error{
		func(ctx context.Context) error { return errA },
		func(ctx context.Context) error { return errB },
	}, 0)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	err = env.RunParallel(ctx, []func(ctx context.Context) error{
		func(ctx context.Context) error { time.Sleep(200 * time.Millisecond); return nil },
	}, 10*time.Millisecond)
	assert.ErrorIs(t, err, xruntime.ErrTimeout)
}
