package writegate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_RunsFn(t *testing.T) {
	g := New(time.Second)
	called := false
	err := g.Do(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestGate_PropagatesFnError(t *testing.T) {
	g := New(time.Second)
	want := errors.New("boom")
	err := g.Do(context.Background(), func(ctx context.Context) error { return want })
	assert.ErrorIs(t, err, want)
	assert.NotErrorIs(t, err, ErrBusy)
}

func TestGate_MutualExclusion(t *testing.T) {
	g := New(5 * time.Second)

	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.Do(context.Background(), func(ctx context.Context) error {
				n := active.Add(1)
				for {
					m := maxActive.Load()
					if n <= m || maxActive.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				active.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive.Load())
}

func TestGate_AcquireTimeout(t *testing.T) {
	g := New(20 * time.Millisecond)
	held := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = g.Do(context.Background(), func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	called := false
	err := g.Do(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBusy)
	assert.False(t, called)
}

func TestGate_ContextCancelled(t *testing.T) {
	g := New(time.Minute)
	held := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = g.Do(context.Background(), func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Do(ctx, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGate_ReleasesAfterFnError(t *testing.T) {
	g := New(50 * time.Millisecond)
	_ = g.Do(context.Background(), func(ctx context.Context) error { return errors.New("first") })

	err := g.Do(context.Background(), func(ctx context.Context) error { return nil })
	assert.NoError(t, err, "gate must be released after fn returns an error")
}

func TestGate_TryDo(t *testing.T) {
	g := New(time.Second)
	held := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = g.Do(context.Background(), func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := g.TryDo(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.Eventually(t, func() bool {
		return g.TryDo(context.Background(), func(ctx context.Context) error { return nil }) == nil
	}, time.Second, 5*time.Millisecond)
}
