package xactor_test

import (
	"context"
	"testing"
	"time"

	"gactor/pkg/xactor"
	"gactor/pkg/xruntime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorderOf(t *testing.T, name string) xactor.Constructor {
	return func(env xruntime.Environment) (xactor.Actor, error) {
		return newRecorder(t, env, xactor.ActorArgs{Name: name}), nil
	}
}

func newTestSystem() *xactor.System {
	return xactor.NewSystem(context.Background(), xactor.SystemArgs{Name: "test", Env: testEnv()})
}

func TestSystemCreate(t *testing.T) {
	sys := newTestSystem()
	ctx := context.Background()

	a, err := sys.Create(ctx, "greeter", recorderOf(t, "greeter"))
	require.NoError(t, err)
	assert.Equal(t, xactor.StateRunning, a.State())

	got, err := sys.Get("greeter")
	require.NoError(t, err)
	assert.Same(t, a, got)

	resp, err := xactor.AskAs[string](ctx, got, Greet{Name: "bob"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello bob", resp)

	_, err = sys.Create(ctx, "greeter", recorderOf(t, "greeter"))
	assert.ErrorIs(t, err, xactor.ErrDuplicateActor)

	_, err = sys.Get("nobody")
	assert.ErrorIs(t, err, xactor.ErrActorNotFound)

	require.NoError(t, sys.Shutdown(ctx))
	assert.Equal(t, xactor.StateStopped, a.State())
	assert.Empty(t, sys.Names())
	sys.Wait()
}

func TestSystemGeneratedName(t *testing.T) {
	sys := newTestSystem()
	ctx := context.Background()

	_, err := sys.Create(ctx, "", recorderOf(t, "anonymous"))
	require.NoError(t, err)

	names := sys.Names()
	require.Len(t, names, 1)
	_, err = uuid.Parse(names[0])
	assert.NoError(t, err)

	require.NoError(t, sys.Shutdown(ctx))
}

func TestSystemStopOne(t *testing.T) {
	sys := newTestSystem()
	ctx := context.Background()

	a, err := sys.Create(ctx, "a", recorderOf(t, "a"))
	require.NoError(t, err)
	b, err := sys.Create(ctx, "b", recorderOf(t, "b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, sys.Names())

	require.NoError(t, sys.Stop(ctx, "a"))
	assert.Equal(t, xactor.StateStopped, a.State())
	assert.Equal(t, xactor.StateRunning, b.State())
	assert.Equal(t, []string{"b"}, sys.Names())
	assert.ErrorIs(t, sys.Stop(ctx, "a"), xactor.ErrActorNotFound)

	require.NoError(t, sys.Shutdown(ctx))
	assert.Equal(t, xactor.StateStopped, b.State())
}

func TestSystemPool(t *testing.T) {
	sys := newTestSystem()
	ctx := context.Background()
	set := &greeterSet{}

	a, err := sys.Create(ctx, "pool", xactor.PoolOf(xactor.PoolArgs{Name: "pool", Size: 3, New: set.ctor}))
	require.NoError(t, err)
	pool, ok := a.(*xactor.Pool)
	require.True(t, ok)
	for _, w := range pool.Workers() {
		assert.Equal(t, xactor.StateRunning, w.State())
	}

	for i := 0; i < 6; i++ {
		require.NoError(t, a.Tell(ctx, Greet{Name: "bob"}, nil))
	}
	require.NoError(t, sys.Shutdown(ctx))
	assert.ElementsMatch(t, []int{0, 0, 1, 1, 2, 2}, set.seen())
	for _, w := range pool.Workers() {
		assert.Equal(t, xactor.StateStopped, w.State())
	}
	sys.Wait()
}

func TestSystemAwaitTermination(t *testing.T) {
	sys := newTestSystem()
	ctx := context.Background()

	a, err := sys.Create(ctx, "", recorderOf(t, "idle"))
	require.NoError(t, err)

	begin := time.Now()
	require.NoError(t, sys.AwaitTermination(ctx, 50*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(begin), 50*time.Millisecond)
	assert.Equal(t, xactor.StateStopped, a.State())
	assert.Empty(t, sys.Names())
}

func TestSystemAwaitTerminationEarlyExit(t *testing.T) {
	sys := newTestSystem()
	ctx := context.Background()

	a, err := sys.Create(ctx, "crash", recorderOf(t, "crash"))
	require.NoError(t, err)
	require.NoError(t, a.Tell(ctx, Boom{}, nil))

	begin := time.Now()
	require.NoError(t, sys.AwaitTermination(ctx, 5*time.Second))
	assert.Less(t, time.Since(begin), 5*time.Second)
	assert.Equal(t, xactor.StateStopped, a.State())
}
