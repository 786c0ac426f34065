package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/gangsheet/pkg/observability"
)

// Spinner provides a progress indicator with context cancellation support.
// The message can be replaced while it runs, which is how page progress is
// shown during long builds.
type Spinner struct {
	message string
	width   int // widest message shown, for clearing the line
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	frames  []string
	mu      sync.Mutex
}

// newSpinner creates a new spinner with the given message.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that will stop when the context is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		width:   len(message),
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				frame := s.frames[i%len(s.frames)]
				s.mu.Lock()
				pad := strings.Repeat(" ", s.width-len(s.message))
				fmt.Fprintf(os.Stderr, "\r%s %s%s", styleIconSpinner.Render(frame), StyleDim.Render(s.message), pad)
				s.mu.Unlock()
				i++
			}
		}
	}()
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	s.width = max(s.width, len(message))
}

// Message returns the current text.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	s.cancel()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	<-s.stopped
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", s.width+4))
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled returns true if the spinner was stopped due to context cancellation.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

// spinnerHooks reports run progress on a spinner.
type spinnerHooks struct {
	observability.NoopPipelineHooks
	spinner *Spinner
	decoded int
	pages   int
}

func (h *spinnerHooks) OnDecode(_ context.Context, name string, _ bool, _ time.Duration, _ error) {
	h.decoded++
	h.spinner.SetMessage(fmt.Sprintf("Reading designs (%d) %s", h.decoded, name))
}

func (h *spinnerHooks) OnPage(_ context.Context, name string, _ int, _ time.Duration, _ error) {
	h.pages++
	h.spinner.SetMessage(fmt.Sprintf("Composing pages (%d done, last %s)", h.pages, name))
}

// track shows run progress on s until the returned function is called.
func track(s *Spinner) (untrack func()) {
	observability.SetPipelineHooks(&spinnerHooks{spinner: s})
	return func() { observability.SetPipelineHooks(observability.NoopPipelineHooks{}) }
}
