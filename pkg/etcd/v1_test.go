package etcd

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	clientv3 "go.etcd.io/etcd/client/v3"
)

func TestRunWatchLoopReestablishesClosedChannel(t *testing.T) {
	v := &V1{watchPathCallbacks: make(map[string][]func(value string) error)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	watch := func(ctx context.Context) clientv3.WatchChan {
		mu.Lock()
		calls++
		if calls >= 2 {
			cancel()
		}
		mu.Unlock()
		ch := make(chan clientv3.WatchResponse)
		close(ch)
		return ch
	}

	done := make(chan struct{})
	go func() {
		v.runWatchLoop(ctx, "/config/app", watch, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch loop did not stop after context cancellation")
	}
	mu.Lock()
	defer mu.Unlock()
	// A closed channel triggers a fresh watch on the next round.
	assert.GreaterOrEqual(t, calls, 2)
}

func TestDispatchMatchesRegisteredPath(t *testing.T) {
	v := &V1{watchPathCallbacks: make(map[string][]func(value string) error)}
	var got []string
	err := v.RegisterWatchPathCallback("/reco", func(value string) error {
		got = append(got, value)
		return nil
	})
	assert.NoError(t, err)

	v.dispatch("/config/app", "/config/app/reco/weights", "updated")
	v.dispatch("/config/app", "/config/app/other", "ignored")
	assert.Equal(t, []string{"updated"}, got)
}
