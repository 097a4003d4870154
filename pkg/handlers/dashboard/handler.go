package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/de-tools/fin-health/pkg/adapters"
	"github.com/de-tools/fin-health/pkg/models/domain"
	"github.com/de-tools/fin-health/pkg/runtime/terminal/export"
	"github.com/de-tools/fin-health/pkg/services/coordinator"
	"github.com/de-tools/fin-health/pkg/services/projector"
	"github.com/de-tools/fin-health/pkg/services/theme"
	"github.com/de-tools/fin-health/pkg/views"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	maxUploadMemory = 32 << 20
	filesField      = "files"
)

type pageData struct {
	Page    *views.Page
	Pending bool
}

type Handler struct {
	coord     *coordinator.Coordinator
	guard     *views.Guard
	tmpl      *template.Template
	charts    *export.ChartWriter
	uploadDir string

	mu      sync.Mutex
	uploads map[string]struct{} // per-upload directories still on disk
}

// NewHandler creates the dashboard handler. Uploaded files are kept under a
// private temporary directory until Close is called.
func NewHandler(coord *coordinator.Coordinator) (*Handler, error) {
	dir, err := os.MkdirTemp("", "finhealth-uploads-")
	if err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	funcs := template.FuncMap{
		"tabPath": func(v domain.View) string {
			if v == domain.ViewHistory {
				return "history"
			}
			return "dashboard"
		},
		"uploadNew":   func() string { return views.ButtonUploadNew },
		"viewDetails": func() string { return views.ButtonViewDetails },
	}

	return &Handler{
		coord:     coord,
		guard:     views.NewGuard("<!DOCTYPE html><p>" + views.Fallback + "</p>"),
		tmpl:      template.Must(template.New("page").Funcs(funcs).Parse(pageTemplate)),
		charts:    export.NewChartWriter(),
		uploadDir: dir,
		uploads:   make(map[string]struct{}),
	}, nil
}

func (h *Handler) Close() error {
	return os.RemoveAll(h.uploadDir)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	snapshot := h.coord.Snapshot()
	h.prune(r, snapshot)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := h.guard.Render(w, func(out io.Writer) error {
		page, err := views.Build(snapshot, theme.Current())
		if err != nil {
			return err
		}
		return h.tmpl.Execute(out, pageData{
			Page:    page,
			Pending: snapshot.Analyze.InFlight() || snapshot.Listing.InFlight() || snapshot.Detail.InFlight(),
		})
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to render page")
	}
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	state := adapters.MapSnapshotToApiState(h.coord.Snapshot(), theme.Current().String())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		logger.Error().Err(err).Msg("failed to encode state")
	}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.coord.OpenDashboard()
	redirect(w, r)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.coord.OpenHistory(r.Context()))
}

func (h *Handler) SelectFiles(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn().Err(err).Msg("invalid upload")
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File[filesField]
	files := make([]domain.FileHandle, 0, len(headers))
	for _, fh := range headers {
		if fh.Filename == "" {
			continue
		}
		handle, err := h.store(fh)
		if err != nil {
			for _, f := range files {
				_ = os.RemoveAll(filepath.Dir(f.Path))
			}
			logger.Error().Err(err).Str("file", fh.Filename).Msg("failed to store upload")
			http.Error(w, "failed to store upload", http.StatusInternalServerError)
			return
		}
		files = append(files, handle)
	}

	h.coord.SelectFiles(files)

	// tracked only once staged, so a concurrent prune cannot remove them early
	h.mu.Lock()
	for _, f := range files {
		h.uploads[filepath.Dir(f.Path)] = struct{}{}
	}
	h.mu.Unlock()
	h.prune(r, h.coord.Snapshot())
	redirect(w, r)
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.coord.Submit(r.Context()))
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.coord.ResetReport())
}

func (h *Handler) ViewReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}
	h.act(w, r, h.coord.ViewDetails(r.Context(), id))
}

func (h *Handler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid notice id", http.StatusBadRequest)
		return
	}
	h.act(w, r, h.coord.DismissNotice(id))
}

func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	projection, err := projector.Project(h.coord.Snapshot().Report)
	if errors.Is(err, projector.ErrNoReport) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to project report")
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if err := h.charts.Write(w, export.FormatSVG, projection.Slices); err != nil {
		if errors.Is(err, export.ErrEmptyChart) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		logger.Error().Err(err).Msg("failed to render chart")
	}
}

// act finishes a state-changing request. Rejected triggers leave the state
// untouched and are only logged; the page shows what happened.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	switch {
	case err == nil, errors.Is(err, coordinator.ErrEmptySelection):
	case errors.Is(err, coordinator.ErrBusy), errors.Is(err, coordinator.ErrInvalidTransition):
		logger.Debug().Err(err).Msg("action ignored")
	case errors.Is(err, coordinator.ErrUnknownReport), errors.Is(err, coordinator.ErrUnknownNotice):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	default:
		logger.Error().Err(err).Msg("action failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	redirect(w, r)
}

func (h *Handler) store(fh *multipart.FileHeader) (domain.FileHandle, error) {
	src, err := fh.Open()
	if err != nil {
		return domain.FileHandle{}, err
	}
	defer src.Close()

	name := filepath.Base(fh.Filename)
	dir := filepath.Join(h.uploadDir, uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return domain.FileHandle{}, err
	}

	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return domain.FileHandle{}, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return domain.FileHandle{}, err
	}
	if err := dst.Close(); err != nil {
		return domain.FileHandle{}, err
	}

	return domain.FileHandle{Name: name, Path: path}, nil
}

// prune removes uploads that are no longer staged. Nothing is removed while
// an analysis is in flight since the request may still be reading them.
func (h *Handler) prune(r *http.Request, snapshot domain.Snapshot) {
	if snapshot.Analyze.InFlight() {
		return
	}

	staged := make(map[string]struct{}, len(snapshot.Files))
	for _, f := range snapshot.Files {
		staged[filepath.Dir(f.Path)] = struct{}{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for dir := range h.uploads {
		if _, ok := staged[dir]; ok {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("dir", dir).Msg("failed to remove upload")
			continue
		}
		delete(h.uploads, dir)
	}
}

func redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
