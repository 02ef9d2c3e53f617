package commands

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	startErr  error
	stopped   chan struct{}
	shutdowns atomic.Int32
}

func newFakeServer(startErr error) *fakeServer {
	return &fakeServer{startErr: startErr, stopped: make(chan struct{})}
}

func (s *fakeServer) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-s.stopped
	return nil
}

func (s *fakeServer) Shutdown(ctx context.Context) error {
	if s.shutdowns.Add(1) == 1 && s.startErr == nil {
		close(s.stopped)
	}
	return nil
}

type fakeWorker struct {
	started atomic.Bool
}

func (w *fakeWorker) Start(ctx context.Context) error {
	w.started.Store(true)
	<-ctx.Done()
	return ctx.Err()
}

func TestRunServe(t *testing.T) {
	t.Run("StopsOnCancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		server := newFakeServer(nil)
		worker := &fakeWorker{}

		done := make(chan error, 1)
		go func() {
			done <- RunServe(ctx, discardLogger(), server, worker, time.Second)
		}()

		require.Eventually(t, worker.started.Load, time.Second, 10*time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("serve did not stop")
		}
		assert.Equal(t, int32(1), server.shutdowns.Load())
	})

	t.Run("ServerFailureStopsWorker", func(t *testing.T) {
		server := newFakeServer(errors.New("address already in use"))
		worker := &fakeWorker{}

		err := RunServe(context.Background(), discardLogger(), server, worker, time.Second)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "address already in use")
		assert.Equal(t, int32(1), server.shutdowns.Load())
	})
}
