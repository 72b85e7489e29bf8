package observability

import (
	"context"
	"io"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func TestShutdownManager_RunsRegisteredFuncs(t *testing.T) {
	logger := NewLogger(ErrorLevel, io.Discard)
	sm := NewShutdownManager(logger, nil, 5*time.Second)

	var called int32
	sm.RegisterShutdownFunc(func(ctx context.Context) error {
		atomic.AddInt32(&called, 1)
		return nil
	})
	sm.RegisterShutdownFunc(func(ctx context.Context) error {
		atomic.AddInt32(&called, 1)
		return nil
	})

	done := make(chan error, 1)
	go func() {
		done <- sm.WaitForShutdown()
	}()

	// Give WaitForShutdown a moment to install its signal handler.
	time.Sleep(50 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("Failed to signal self: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown did not complete in time")
	}

	if atomic.LoadInt32(&called) != 2 {
		t.Errorf("Expected 2 shutdown funcs called, got %d", called)
	}
}

func TestShutdownManager_DefaultTimeout(t *testing.T) {
	logger := NewLogger(ErrorLevel, io.Discard)
	sm := NewShutdownManager(logger, nil, 0)

	if sm.shutdownTimeout != 30*time.Second {
		t.Errorf("Expected default 30s timeout, got %s", sm.shutdownTimeout)
	}
}
