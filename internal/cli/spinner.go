package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerInterval = 100 * time.Millisecond

// spinner animates a status line on w while a blocking step runs. The label
// can change while it spins; the line is cleared when it stops or when the
// parent context ends.
type spinner struct {
	w      io.Writer
	parent context.Context
	halt   context.CancelFunc
	exited chan struct{}

	mu    sync.Mutex
	label string
	drawn int // runes on the line
}

// startSpinner begins animating label on w.
func startSpinner(ctx context.Context, w io.Writer, label string) *spinner {
	sctx, halt := context.WithCancel(ctx)
	s := &spinner{w: w, parent: ctx, halt: halt, exited: make(chan struct{}), label: label}
	go s.run(sctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.exited)
	t := time.NewTicker(spinnerInterval)
	defer t.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-t.C:
			s.draw(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := frame + " " + s.label
	pad := max(s.drawn-utf8.RuneCountInString(line), 0)
	fmt.Fprintf(s.w, "\r%s %s%s", styleIconSpinner.Render(frame), StyleDim.Render(s.label), strings.Repeat(" ", pad))
	s.drawn = utf8.RuneCountInString(line) + pad
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn))
		s.drawn = 0
	}
}

// SetLabel replaces the text shown next to the animation.
func (s *spinner) SetLabel(label string) {
	s.mu.Lock()
	s.label = label
	s.mu.Unlock()
}

// Stop ends the animation and clears the line. Safe to call more than once.
func (s *spinner) Stop() {
	s.halt()
	<-s.exited
}

// Fail stops the spinner and prints msg as an error.
func (s *spinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}

// Cancelled reports whether the spinner ended because its parent context
// did.
func (s *spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
