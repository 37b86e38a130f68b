package cli

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner wraps a terminal spinner that writes to stderr, so stdout stays
// clean for piped output. The animation only runs when stderr is a
// terminal, and stops on its own when the context is cancelled.
type Spinner struct {
	s    *spinner.Spinner
	out  io.Writer
	ctx  context.Context
	done chan struct{}
	once sync.Once
}

// newSpinner creates a spinner with the given message.
func newSpinner(out io.Writer, message string) *Spinner {
	return newSpinnerWithContext(context.Background(), out, message)
}

// newSpinnerWithContext creates a spinner that will stop when ctx is cancelled.
func newSpinnerWithContext(ctx context.Context, out io.Writer, message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + StyleDim.Render(message)
	_ = s.Color("cyan")
	return &Spinner{s: s, out: out, ctx: ctx, done: make(chan struct{})}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.s.Start()
	go func() {
		select {
		case <-s.ctx.Done():
			s.s.Stop()
		case <-s.done:
		}
	}()
}

// Stop stops the spinner and clears the line. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.done) })
	s.s.Stop()
}

// Cancelled returns true if the spinner's context was cancelled.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess(s.out, "%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError(s.out, "%s", message)
}
