package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/de-tools/fin-health/pkg/models/domain"
)

// AdvisoryExtensions mirrors the file picker filter. It is informational only,
// the remote service decides which formats it accepts.
var AdvisoryExtensions = []string{".csv", ".xlsx", ".xls"}

// Staging holds the files selected by the user until they are submitted.
type Staging struct {
	mu    sync.RWMutex
	files []domain.FileHandle
}

func New() *Staging {
	return &Staging{}
}

// Select replaces the staged selection. An empty input leaves it unchanged.
func (s *Staging) Select(files []domain.FileHandle) {
	if len(files) == 0 {
		return
	}

	selection := make([]domain.FileHandle, len(files))
	copy(selection, files)

	s.mu.Lock()
	s.files = selection
	s.mu.Unlock()
}

func (s *Staging) Clear() {
	s.mu.Lock()
	s.files = nil
	s.mu.Unlock()
}

func (s *Staging) Files() []domain.FileHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]domain.FileHandle, len(s.files))
	copy(files, s.files)
	return files
}

func (s *Staging) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

func (s *Staging) Empty() bool {
	return s.Len() == 0
}

// FromPaths builds handles for files on disk. Only existence is checked.
func FromPaths(paths []string) ([]domain.FileHandle, error) {
	handles := make([]domain.FileHandle, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		handles = append(handles, domain.FileHandle{Name: filepath.Base(p), Path: p})
	}
	return handles, nil
}

func Advisory(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AdvisoryExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
