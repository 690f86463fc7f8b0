package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/schoolbooks-connect/schoolbooks/internal/catalog"
	"github.com/schoolbooks-connect/schoolbooks/internal/locale"
	"github.com/schoolbooks-connect/schoolbooks/internal/models"
	"github.com/schoolbooks-connect/schoolbooks/internal/seed"
	"github.com/schoolbooks-connect/schoolbooks/internal/storage"
)

const sessionCookie = "schoolbooks_admin"

type loginPage struct {
	layoutData
	Error string
}

type adminPage struct {
	layoutData
	Flashes       []storage.Flash
	Notice        string
	Books         []models.Book
	Total         int
	Filter        string
	Editing       bool
	Form          models.Book
	Classes       []models.Category
	SubCategories []models.SubCategory
	Endpoint      string
	Seed          seed.Progress
	SeedConfirm   string
}

// Session helpers
func adminToken(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) loggedIn(r *http.Request) bool {
	_, ok := h.sessions.Get(adminToken(r))
	return ok
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.loggedIn(r) {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) flash(r *http.Request, kind storage.FlashKind, message string) {
	h.sessions.AddFlash(adminToken(r), kind, message)
}

func (h *Handler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	if !h.loggedIn(r) {
		h.render(w, "login.html", http.StatusOK, loginPage{layoutData: h.layout("এডমিন এক্সেস")})
		return
	}

	page := h.adminPage(r)
	if id := r.URL.Query().Get("edit"); id != "" {
		if book, err := catalog.Find(h.catalog.Books(), id); err == nil {
			page.Editing = true
			page.Form = book
			page.Notice = fmt.Sprintf(locale.EditMode, book.Title)
		}
	}
	h.render(w, "admin.html", http.StatusOK, page)
}

func (h *Handler) adminPage(r *http.Request) adminPage {
	filter := strings.TrimSpace(r.URL.Query().Get("q"))
	all := h.catalog.Books()
	page := adminPage{
		layoutData:    h.layout("ড্যাশবোর্ড"),
		Flashes:       h.sessions.PopFlashes(adminToken(r)),
		Books:         catalog.AdminFilter(all, filter),
		Total:         len(all),
		Filter:        filter,
		Form:          models.Book{ClassLevel: "1"},
		Classes:       models.AllCategories(),
		SubCategories: models.SubCategories,
		Endpoint:      h.sheet.Endpoint(),
		SeedConfirm:   fmt.Sprintf(locale.SeedConfirm, locale.Digits(strconv.Itoa(len(h.seedBooks)))),
	}
	if h.seeder != nil {
		page.Seed = h.seeder.Progress()
	}
	return page
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	if !h.settings.CheckPassword(r.PostFormValue("password")) {
		slog.Warn("Admin login rejected", "remote", r.RemoteAddr)
		h.render(w, "login.html", http.StatusUnauthorized, loginPage{
			layoutData: h.layout("এডমিন এক্সেস"),
			Error:      locale.WrongPassword,
		})
		return
	}

	session := h.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/admin",
		MaxAge:   int(storage.DefaultTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Info("Admin logged in", "remote", r.RemoteAddr)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(adminToken(r))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// bookFromForm reads the editor fields. The sub-category is kept only for
// admission books.
func bookFromForm(r *http.Request) models.Book {
	field := func(name string) string {
		return strings.TrimSpace(r.PostFormValue(name))
	}
	book := models.Book{
		ID:           field("id"),
		Title:        field("title"),
		Subject:      field("subject"),
		ClassLevel:   field("classLevel"),
		SubCategory:  field("subCategory"),
		ThumbnailURL: field("thumbnailUrl"),
		PDFURL:       field("pdfUrl"),
		Description:  field("description"),
		PublishYear:  field("publishYear"),
	}
	if !book.IsAdmission() {
		book.SubCategory = ""
	}
	return book
}

// HandleSaveBook creates a book when the form carries no id, and updates it otherwise
func (h *Handler) HandleSaveBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	book := bookFromForm(r)
	editing := book.ID != ""

	fail := func(code int, message string) {
		page := h.adminPage(r)
		page.Flashes = append(page.Flashes, storage.Flash{Kind: storage.FlashError, Message: message})
		page.Editing = editing
		page.Form = book
		h.render(w, "admin.html", code, page)
	}

	if h.sheet.Endpoint() == "" {
		fail(http.StatusConflict, locale.NoEndpoint)
		return
	}
	if book.Title == "" || book.Subject == "" || book.PDFURL == "" || book.ClassLevel == "" {
		fail(http.StatusBadRequest, locale.MissingFields)
		return
	}

	if book.ThumbnailURL == "" {
		book.ThumbnailURL = models.DefaultThumbnail
	}

	var err error
	if editing {
		err = h.sheet.Update(r.Context(), book)
	} else {
		book.ID = strconv.FormatInt(time.Now().UnixMilli(), 10)
		err = h.sheet.Create(r.Context(), book)
	}
	if err != nil {
		slog.Error("Unable to save book", "id", book.ID, "title", book.Title, "err", err)
		fail(http.StatusBadGateway, locale.SaveError)
		return
	}

	slog.Info("Book saved", "id", book.ID, "title", book.Title, "update", editing)
	h.flash(r, storage.FlashSuccess, locale.SaveSuccess)
	h.catalog.RefreshAfter(h.refreshDelay)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) HandleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.sheet.Endpoint() == "" {
		h.flash(r, storage.FlashError, locale.NoEndpoint)
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	if err := h.sheet.Delete(r.Context(), id); err != nil {
		slog.Error("Unable to delete book", "id", id, "err", err)
		h.flash(r, storage.FlashError, locale.DeleteError)
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	slog.Info("Book deleted", "id", id)
	h.flash(r, storage.FlashSuccess, locale.DeleteSuccess)
	h.catalog.RefreshAfter(h.refreshDelay)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// HandleSeed starts uploading the demo books in the background. The outcome is
// queued as a flash for the admin who started it.
func (h *Handler) HandleSeed(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/admin", http.StatusSeeOther)

	if h.seeder == nil || h.sheet.Endpoint() == "" {
		h.flash(r, storage.FlashError, locale.BadSettings)
		return
	}

	token := adminToken(r)
	err := h.seeder.Start(context.Background(), h.seedBooks, func(p seed.Progress, err error) {
		if err != nil {
			slog.Error("Seed failed", "err", err, "failed", p.Failed)
			h.sessions.AddFlash(token, storage.FlashError, locale.UploadFailed)
			return
		}
		h.sessions.AddFlash(token, storage.FlashSuccess, locale.UploadDone)
		h.catalog.RefreshAfter(h.seedRefreshDelay)
	})
	if errors.Is(err, seed.ErrAlreadyRunning) {
		h.flash(r, storage.FlashError, locale.UploadBusy)
		return
	}
	h.flash(r, storage.FlashInfo, locale.UploadStarting)
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	h.catalog.RefreshAfter(0)
	h.flash(r, storage.FlashInfo, locale.DataRefreshing)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// HandleSettings stores the sheet endpoint and, when given, a new admin password
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.settings.SetEndpoint(r.PostFormValue("endpoint")); err != nil {
		slog.Error("Unable to save endpoint", "err", err)
		h.flash(r, storage.FlashError, locale.SaveError)
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	if password := r.PostFormValue("password"); password != "" {
		if err := h.settings.SetAdminPassword(password); err != nil {
			slog.Error("Unable to save admin password", "err", err)
			h.flash(r, storage.FlashError, locale.SaveError)
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
	}

	h.flash(r, storage.FlashSuccess, locale.SettingsSaved)
	h.catalog.RefreshAfter(0)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
