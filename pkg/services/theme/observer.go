package theme

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Source provides the system color-scheme preference.
type Source interface {
	Current() (Mode, error)
	// Watch calls onChange with the current preference whenever it may have
	// changed. The returned func stops the notifications.
	Watch(ctx context.Context, onChange func(Mode)) (func(), error)
}

// Observer applies a Source to the process-wide mode.
type Observer struct {
	source Source

	mu   sync.Mutex
	stop func()
}

func NewObserver(source Source) *Observer {
	return &Observer{source: source}
}

// Start applies the current preference and subscribes to changes. Failures
// are not reported: the mode falls back to Light.
func (o *Observer) Start(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stop != nil {
		return
	}

	if o.source == nil {
		apply(Light)
		o.stop = func() {}
		return
	}

	mode, err := o.source.Current()
	if err != nil {
		logger.Debug().Err(err).Msg("color scheme preference unavailable, using light mode")
		mode = Light
	}
	apply(mode)

	stop, err := o.source.Watch(ctx, func(m Mode) {
		if m == Current() {
			return
		}
		logger.Debug().Str("mode", m.String()).Msg("color scheme changed")
		apply(m)
	})
	if err != nil {
		logger.Debug().Err(err).Msg("color scheme notifications unavailable")
		stop = func() {}
	}
	o.stop = stop
}

// Stop unsubscribes from the source. It is safe to call more than once.
func (o *Observer) Stop() {
	o.mu.Lock()
	stop := o.stop
	o.stop = nil
	o.mu.Unlock()

	if stop != nil {
		stop()
	}
}
