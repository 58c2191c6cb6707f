package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context, message string) (*Spinner, *bytes.Buffer) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, message)
	s.out = &buf
	return s, &buf
}

func TestSpinnerBasic(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "Testing...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if s.ctx.Err() == nil {
		t.Error("Stop should cancel the spinner context")
	}
	if !strings.Contains(buf.String(), "Testing...") {
		t.Errorf("spinner output %q should contain the message", buf.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s, _ := quietSpinner(ctx, "Testing with context...")
	s.Start()

	// Cancel the context
	cancel()

	// Give goroutine time to notice cancellation
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s, _ := quietSpinner(ctx, "Testing with timeout...")
	s.Start()

	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Testing idempotent stop...")
	s.Start()

	// Stop multiple times should not panic
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Testing success...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("Done!")
}

func TestSpinnerStopWithError(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Testing error...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("Failed!")
}

func TestNewSpinnerDefaults(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Test")
	if s.out == nil {
		t.Fatal("spinner should default to stderr")
	}
	if !s.animate {
		t.Error("spinner should animate without a verbose logger")
	}
	if s.Elapsed() != 0 {
		t.Error("elapsed should be zero before Start")
	}
}

func TestSpinnerVerboseLogsInsteadOfAnimating(t *testing.T) {
	var logs bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&logs, LogDebug))

	s, frames := quietSpinner(ctx, "Analyzing 4 files...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.StopWithError("Analysis failed")

	if frames.Len() != 0 {
		t.Errorf("verbose spinner drew frames: %q", frames.String())
	}
	if !strings.Contains(logs.String(), "Analyzing 4 files") {
		t.Errorf("verbose spinner should log its message, got %q", logs.String())
	}
	if !strings.Contains(logs.String(), "stage failed") {
		t.Errorf("verbose spinner should log the failure, got %q", logs.String())
	}
}

func TestSpinnerElapsed(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Waiting...")
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if got := s.Elapsed(); got < 20*time.Millisecond {
		t.Errorf("Elapsed() = %s, want at least 20ms", got)
	}
}
