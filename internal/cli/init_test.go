package cli

import (
	"context"
	"io"
	"log/slog"
	"syscall"
	"testing"
	"time"
)

func TestGracefulShutdownRunsCleanup(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cleaned := make(chan struct{})
	ctx, done := GracefulShutdown(logger, time.Second, func(shutdownCtx context.Context) {
		if shutdownCtx == nil {
			t.Error("cleanup received a nil context")
		}
		if _, ok := shutdownCtx.Deadline(); !ok {
			t.Error("cleanup context has no deadline")
		}
		close(cleaned)
	})

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("failed to signal self: %v", err)
	}

	select {
	case <-cleaned:
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup was not invoked after SIGTERM")
	}

	WaitForShutdown(ctx, done)

	if ctx.Err() == nil {
		t.Error("context should be cancelled after shutdown")
	}
}
