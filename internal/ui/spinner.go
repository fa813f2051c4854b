package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var frames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Spinner displays an animated progress indicator, normally on stderr.
type Spinner struct {
	w        io.Writer
	interval time.Duration

	mu      sync.Mutex
	msg     string
	done    chan struct{}
	stopped chan struct{}
}

// NewSpinner creates a new Spinner (not yet running) writing to w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{w: w, interval: 80 * time.Millisecond}
}

// Start begins the spinner animation with the given message. Starting a
// running spinner only changes its message.
func (s *Spinner) Start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.run(s.done, s.stopped)
}

// Update changes the spinner message while it's running.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Println stops drawing long enough to print a line above the spinner.
func (s *Spinner) Println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r\033[K%s\n", line)
}

// Stop halts the spinner and clears the line. It returns once the
// animation goroutine has exited.
func (s *Spinner) Stop() {
	s.mu.Lock()
	done, stopped := s.done, s.stopped
	s.done, s.stopped = nil, nil
	s.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	<-stopped

	// Clear the spinner line
	fmt.Fprint(s.w, "\r\033[K")
}

func (s *Spinner) run(done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	i := 0
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r\033[K%c %s", frames[i%len(frames)], s.msg)
			s.mu.Unlock()
			i++
		}
	}
}
