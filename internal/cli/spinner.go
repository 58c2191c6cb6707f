package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows a pipeline stage on stderr while it runs. Under --verbose it
// logs the stage instead of animating, and only the final status line is
// printed.
type Spinner struct {
	message string
	logger  *log.Logger
	animate bool
	start   time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	stop    sync.Once
	out     io.Writer
	mu      sync.Mutex
}

// newSpinnerWithContext creates a spinner for the command logger in ctx. It
// stops animating when ctx is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	logger := loggerFromContext(ctx)
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		logger:  logger,
		animate: !verboseLevel(logger.GetLevel()),
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		out:     os.Stderr,
	}
}

// Start begins the animation, or logs the message at debug level when the
// command is verbose.
func (s *Spinner) Start() {
	s.start = time.Now()
	if !s.animate {
		s.logger.Debug(strings.TrimSuffix(s.message, "..."))
		close(s.stopped)
		return
	}

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop ends the animation and clears the line. It may be called more than
// once.
func (s *Spinner) Stop() {
	s.stop.Do(func() {
		s.cancel()
		close(s.done)
	})
	<-s.stopped
	if s.animate {
		s.clearLine()
	}
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// Elapsed is the time since Start, rounded to milliseconds.
func (s *Spinner) Elapsed() time.Duration {
	if s.start.IsZero() {
		return 0
	}
	return time.Since(s.start).Round(time.Millisecond)
}

// StopWithSuccess stops the spinner and prints message with the elapsed time.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s (%s)", message, s.Elapsed())
}

// StopWithError stops the spinner and prints message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	s.logger.Debug("stage failed", "stage", s.message, "elapsed", s.Elapsed())
	printError("%s", message)
}

// Cancelled reports whether the spinner's context was cancelled.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
