package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/schoolbooks-connect/schoolbooks/internal/document"
	"github.com/schoolbooks-connect/schoolbooks/internal/drive"
	"github.com/schoolbooks-connect/schoolbooks/internal/models"
	"github.com/schoolbooks-connect/schoolbooks/internal/viewer"
)

// Query keys carrying a reader event
const (
	queryAction   = "action"
	queryOffset   = "offset"
	queryCont     = "container"
	queryViewport = "viewport"
	queryFrom     = "from"
	queryTo       = "to"
	queryGranted  = "granted"
	queryPages    = "pages"
	queryError    = "error"
)

type readerPage struct {
	layoutData
	Book        models.Book
	State       viewer.State
	PageWidth   int
	EmbedURL    string
	DocumentURL string
	EventsURL   string
	BackURL     string
	StateURL    string
	StateJSON   string
	Transform   template.CSS
	Transition  template.CSS
	CanPrev     bool
	CanNext     bool
	Actions     map[string]string
}

// HandleReader renders the reader for one book. The reader state lives in the
// query string; an action parameter applies one event and redirects to the
// resulting state.
func (h *Handler) HandleReader(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	q := r.URL.Query()
	s := viewer.Restore(viewer.StateFromValues(q))
	base := "/read/" + url.PathEscape(book.ID)

	// A failure reported by the browser renderer outranks a successful probe
	if s.Mode == viewer.ModeCustom && s.Status != viewer.StatusFailed {
		h.loadDocument(r.Context(), s, book)
	}

	if action := q.Get(queryAction); action != "" {
		ev := eventFromQuery(q)
		if err := s.Apply(ev); err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Debug("Reader event", "book", book.ID, "kind", ev.Kind, "page", s.Page, "scale", s.Scale)
		http.Redirect(w, r, base+"?"+s.State().Values().Encode(), http.StatusSeeOther)
		return
	}

	st := s.State()
	stateJSON, err := json.Marshal(st)
	if err != nil {
		h.writeError(w, "Unable to encode reader state", http.StatusInternalServerError)
		return
	}
	page := readerPage{
		layoutData:  h.layout(book.Title),
		Book:        book,
		State:       st,
		PageWidth:   s.PageWidth(),
		EmbedURL:    drive.EmbedURL(book.PDFURL),
		DocumentURL: base + "/document",
		EventsURL:   "/api/reader/" + url.PathEscape(book.ID) + "/events",
		BackURL:     "/book/" + url.PathEscape(book.ID),
		StateURL:    base + "?" + st.Values().Encode(),
		StateJSON:   string(stateJSON),
		Transform:   template.CSS(s.VisualTransform()),
		Transition:  template.CSS(s.Transition()),
		CanPrev:     st.Page > 1,
		CanNext:     st.TotalPages > 0 && st.Page < st.TotalPages,
		Actions:     make(map[string]string),
	}
	page.Bare = true

	for _, kind := range []viewer.EventKind{
		viewer.EventPrev, viewer.EventNext,
		viewer.EventZoomIn, viewer.EventZoomOut,
		viewer.EventRotate, viewer.EventHosted, viewer.EventCustom,
	} {
		page.Actions[string(kind)] = actionURL(base, st, kind, nil)
	}
	page.Actions[string(viewer.EventFullscreen)] = actionURL(base, st, viewer.EventFullscreen, url.Values{queryGranted: {"1"}})

	h.render(w, "reader.html", http.StatusOK, page)
}

// loadDocument probes the document so the page count is known before any
// navigation is applied
func (h *Handler) loadDocument(ctx context.Context, s *viewer.Session, book models.Book) {
	if book.PDFURL == "" {
		s.LoadFailed(document.ErrNotPDF)
		return
	}
	info, err := h.documents.Probe(ctx, book.PDFURL)
	if err != nil {
		slog.Warn("Document probe failed", "book", book.ID, "err", err)
		s.LoadFailed(err)
		return
	}
	s.LoadSucceeded(info.Pages)
}

func eventFromQuery(q url.Values) viewer.Event {
	ev := viewer.Event{
		Kind:    viewer.EventKind(q.Get(queryAction)),
		Granted: q.Get(queryGranted) == "1",
		Error:   q.Get(queryError),
	}
	ev.Offset, _ = strconv.Atoi(q.Get(queryOffset))
	ev.ContainerWidth, _ = strconv.Atoi(q.Get(queryCont))
	ev.ViewportWidth, _ = strconv.Atoi(q.Get(queryViewport))
	ev.Pages, _ = strconv.Atoi(q.Get(queryPages))
	ev.StartDistance, _ = strconv.ParseFloat(q.Get(queryFrom), 64)
	ev.EndDistance, _ = strconv.ParseFloat(q.Get(queryTo), 64)
	return ev
}

func actionURL(base string, st viewer.State, kind viewer.EventKind, extra url.Values) string {
	v := st.Values()
	v.Set(queryAction, string(kind))
	for k, vals := range extra {
		v[k] = vals
	}
	return base + "?" + v.Encode()
}

// HandleDocument proxies the PDF behind a book so the in-page renderer can
// load it from this origin
func (h *Handler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	err := h.documents.Stream(r.Context(), ww, book.PDFURL)
	if err == nil {
		return
	}
	if ww.Status() != 0 {
		slog.Warn("Document stream interrupted", "book", book.ID, "err", err)
		return
	}

	code := http.StatusBadGateway
	if errors.Is(err, document.ErrTooLarge) {
		code = http.StatusRequestEntityTooLarge
	}
	h.writeError(w, "Unable to load document: "+err.Error(), code)
}

// HandleThumb serves a resized cover, or redirects to the source image when
// it cannot be fetched or decoded
func (h *Handler) HandleThumb(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	src := book.ThumbnailURL
	if src == "" {
		src = models.DefaultThumbnail
	}

	data, err := h.thumbs.Get(r.Context(), src)
	if err != nil {
		slog.Debug("Thumbnail unavailable, redirecting", "book", book.ID, "url", src, "err", err)
		http.Redirect(w, r, src, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=21600")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Debug("Unable to write thumbnail", "book", book.ID, "err", err)
	}
}
