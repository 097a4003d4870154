package views

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
)

const Fallback = "Something went wrong."

var ErrFaulted = errors.New("view tree failed to render earlier")

// Guard wraps the whole render pass. A panic or error raised while rendering
// replaces the output with a static fallback. The fault is latched: later
// renders keep producing the fallback until the process restarts.
type Guard struct {
	fallback string

	mu      sync.Mutex
	faulted error
}

func NewGuard(fallback string) *Guard {
	if fallback == "" {
		fallback = Fallback
	}
	return &Guard{fallback: fallback}
}

// Render runs fn against a buffer and copies the result to w. On failure the
// fallback is written instead and the cause is returned.
func (g *Guard) Render(w io.Writer, fn func(io.Writer) error) (err error) {
	g.mu.Lock()
	faulted := g.faulted
	g.mu.Unlock()
	if faulted != nil {
		_, _ = io.WriteString(w, g.fallback)
		return ErrFaulted
	}

	buf := &bytes.Buffer{}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
		}
		if err != nil {
			g.mu.Lock()
			g.faulted = err
			g.mu.Unlock()
			_, _ = io.WriteString(w, g.fallback)
			return
		}
		_, err = buf.WriteTo(w)
	}()

	return fn(buf)
}

// Faulted reports the first render failure, if any.
func (g *Guard) Faulted() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faulted
}
