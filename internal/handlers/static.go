package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/schoolbooks-connect/schoolbooks/internal/catalog"
	"github.com/schoolbooks-connect/schoolbooks/internal/locale"
	"github.com/schoolbooks-connect/schoolbooks/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type pages map[string]*template.Template

var pageNames = []string{
	"home.html",
	"class.html",
	"search.html",
	"book.html",
	"reader.html",
	"login.html",
	"admin.html",
	"error.html",
}

var templateFuncs = template.FuncMap{
	"digits":     locale.Digits,
	"classLabel": models.CategoryLabel,
	"subLabel":   models.SubCategoryLabel,
	"thumb": func(b models.Book) string {
		return "/thumb/" + url.PathEscape(b.ID)
	},
	"count": func(n int) string {
		return fmt.Sprintf(locale.BookCount, locale.Digits(strconv.Itoa(n)))
	},
	"percent": func(scale float64) string {
		return locale.Digits(strconv.Itoa(int(math.Round(scale * 100))))
	},
	"confirmDelete": func(title string) string {
		return fmt.Sprintf(locale.DeleteConfirm, title)
	},
}

func parsePages() pages {
	p := make(pages, len(pageNames))
	for _, name := range pageNames {
		p[name] = template.Must(template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name,
		))
	}
	return p
}

// layoutData is shared by every page
type layoutData struct {
	Title   string
	Query   string
	Status  catalog.Status
	Version string
	Bare    bool
}

func (h *Handler) layout(title string) layoutData {
	return layoutData{
		Title:   title,
		Status:  h.catalog.Status(),
		Version: h.version,
	}
}

func (h *Handler) render(w http.ResponseWriter, name string, code int, data any) {
	t, ok := h.pages[name]
	if !ok {
		h.writeError(w, "Unknown page "+name, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("Unable to render page", "page", name, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("Unable to write page", "page", name, "err", err)
	}
}

type errorPage struct {
	layoutData
	Message string
}

func (h *Handler) renderNotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, "error.html", http.StatusNotFound, errorPage{
		layoutData: h.layout(locale.BookNotFound),
		Message:    locale.BookNotFound,
	})
}

func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	filepath := strings.TrimPrefix(r.URL.Path, "/static/")

	// Prevent directory traversal attacks
	if filepath == "" || strings.Contains(filepath, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	switch {
	case strings.HasSuffix(filepath, ".css"):
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
	case strings.HasSuffix(filepath, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")

	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		h.writeError(w, "Static files unavailable", http.StatusInternalServerError)
		return
	}
	http.ServeFileFS(w, r, sub, filepath)
}
