// Package theme tracks the light/dark presentation mode of the process.
//
// The mode is process-wide state. It is written only by an Observer, which
// subscribes to a preference Source on Start and unsubscribes on Stop. Readers
// call Current.
package theme

import (
	"strings"
	"sync/atomic"
)

type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

func (m Mode) String() string {
	return string(m)
}

var dark atomic.Bool

// Current returns the presentation mode in effect.
func Current() Mode {
	if dark.Load() {
		return Dark
	}
	return Light
}

func apply(m Mode) {
	dark.Store(m == Dark)
}

// ParseMode understands plain names as well as the freedesktop
// color-scheme values ("prefer-dark", "prefer-light", "default").
func ParseMode(raw string) Mode {
	v := strings.ToLower(strings.Trim(strings.TrimSpace(raw), `'"`))
	switch v {
	case "dark", "prefer-dark":
		return Dark
	default:
		return Light
	}
}
