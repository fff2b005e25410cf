package dashboard

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Handler serves the dashboard sections and their charts from one snapshot.
type Handler struct {
	snap    *entity.Snapshot
	content *Content
	page    *template.Template
	logger  *zap.SugaredLogger
}

func NewHandler(snap *entity.Snapshot, content *Content, logger *zap.SugaredLogger) (*Handler, error) {
	page, err := template.ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, err
	}
	return &Handler{snap: snap, content: content, page: page, logger: logger}, nil
}

// Index redirects to the first section.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/"+Sections[0], http.StatusFound)
}

// Section returns the handler rendering one section page.
func (h *Handler) Section(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := BuildPage(h.snap, h.content, name)
		if err != nil {
			h.logger.Errorw("build page failed", "section", name, "err", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		var buf bytes.Buffer
		if err := h.page.Execute(&buf, p); err != nil {
			h.logger.Errorw("render page failed", "section", name, "err", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}
}

// Chart serves GET /charts/{file} where file is <name>.png.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}
	var buf bytes.Buffer
	if err := RenderChart(&buf, name, h.snap); err != nil {
		if errors.Is(err, ErrUnknownChart) {
			http.NotFound(w, r)
			return
		}
		h.logger.Errorw("render chart failed", "chart", name, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = buf.WriteTo(w)
}

// Static serves the embedded stylesheet under /static/.
func (h *Handler) Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

// HealthResponse reports the loaded snapshot.
type HealthResponse struct {
	Status     string `json:"status"`
	SnapshotID string `json:"snapshot_id"`
	Source     string `json:"source"`
	LoadedAt   string `json:"loaded_at"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		SnapshotID: h.snap.ID,
		Source:     h.snap.Source,
		LoadedAt:   h.snap.LoadedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warnw("write json failed", "err", err)
	}
}
