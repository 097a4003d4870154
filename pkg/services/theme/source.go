package theme

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

var ErrNoPreference = errors.New("no color scheme preference")

// NewSource picks a file-backed source when a preference file is configured,
// otherwise the environment.
func NewSource(preferenceFile string) Source {
	if preferenceFile != "" {
		return NewFileSource(preferenceFile)
	}
	return EnvSource{}
}

// FileSource reads the preference from a file and watches it for changes.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: filepath.Clean(path)}
}

func (s *FileSource) Current() (Mode, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Light, err
	}
	return ParseMode(string(data)), nil
}

// Watch observes the parent directory so that editors replacing the file
// atomically are still picked up. Every event on the file reports the mode
// read at that moment; callers compare it with the mode they applied.
func (s *FileSource) Watch(ctx context.Context, onChange func(Mode)) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	done := make(chan struct{})
	quit := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-quit:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != s.path {
					continue
				}
				mode, err := s.Current()
				if err != nil {
					mode = Light
				}
				onChange(mode)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Debug().Err(err).Msg("preference watch error")
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			_ = w.Close()
			<-done
		})
	}, nil
}

// EnvSource reads FINHEALTH_THEME, then the COLORFGBG terminal hint. It does
// not deliver change notifications.
type EnvSource struct{}

func (EnvSource) Current() (Mode, error) {
	if v, ok := os.LookupEnv("FINHEALTH_THEME"); ok && v != "" {
		return ParseMode(v), nil
	}
	if v, ok := os.LookupEnv("COLORFGBG"); ok {
		parts := strings.Split(v, ";")
		bg, err := strconv.Atoi(parts[len(parts)-1])
		if err == nil {
			if bg < 7 || bg == 8 {
				return Dark, nil
			}
			return Light, nil
		}
	}
	return Light, ErrNoPreference
}

func (EnvSource) Watch(_ context.Context, _ func(Mode)) (func(), error) {
	return func() {}, nil
}
