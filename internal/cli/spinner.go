package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/stackhealth/pkg/health"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows analysis progress on a terminal line until stopped or until
// its context is cancelled.
type Spinner struct {
	out     io.Writer
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}

	mu       sync.Mutex
	label    string
	total    int
	finished int
	failed   int
	width    int
}

// newSpinner creates a spinner for analyzing ids. A single component is
// shown by its purl, several by a finished/total counter.
func newSpinner(ctx context.Context, out io.Writer, ids []health.Identity) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	label := fmt.Sprintf("Analyzing %d components", len(ids))
	if len(ids) == 1 {
		label = "Analyzing " + ids[0].String()
	}
	return &Spinner{
		out:     out,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		label:   label,
		total:   len(ids),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Advance records one finished component. It matches the signature of
// pipeline.Options.Progress and is safe for concurrent use.
func (s *Spinner) Advance(_ health.Identity, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished++
	if err != nil {
		s.failed++
	}
}

// message renders the current line text.
func (s *Spinner) message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total <= 1 {
		return s.label + "..."
	}
	msg := fmt.Sprintf("%s (%d/%d", s.label, s.finished, s.total)
	if s.failed > 0 {
		msg += fmt.Sprintf(", %d failed", s.failed)
	}
	return msg + ")..."
}

func (s *Spinner) draw(frame string) {
	msg := s.message()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(msg)+2)
	fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), styleDim.Render(msg))
}

// Stop stops the animation and clears the line. It may be called repeatedly.
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
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
}

// Cancelled reports whether the spinner's context ended before Stop.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
