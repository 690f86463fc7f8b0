package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/schoolbooks-connect/schoolbooks/internal/catalog"
	"github.com/schoolbooks-connect/schoolbooks/internal/locale"
	"github.com/schoolbooks-connect/schoolbooks/internal/models"
)

type homePage struct {
	layoutData
	Classes  []models.Category
	Trending []models.Book
}

func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, "home.html", http.StatusOK, homePage{
		layoutData: h.layout(""),
		Classes:    models.AllCategories(),
		Trending:   catalog.Trending(h.catalog.Books(), catalog.TrendingCount),
	})
}

// tab is one link in a row of admission tabs
type tab struct {
	Label  string
	URL    string
	Count  int
	Active bool
}

type admissionView struct {
	Subjects []tab
	Sections []tab
	Books    []models.Book
}

type classPage struct {
	layoutData
	Level     string
	Label     string
	Books     []models.Book
	Admission *admissionView
}

// otherTab is the query value for the trailing section of unknown sub-categories
const otherTab = "other"

func (h *Handler) HandleClass(w http.ResponseWriter, r *http.Request) {
	level := chi.URLParam(r, "level")
	label := models.CategoryLabel(level)
	books := catalog.ByClass(h.catalog.Books(), level)

	page := classPage{
		layoutData: h.layout(label),
		Level:      level,
		Label:      label,
		Books:      books,
	}
	if level == models.AdmissionLevel {
		page.Admission = admissionTabs(books, r.URL.Query().Get("subject"), r.URL.Query().Get("tab"))
	}
	h.render(w, "class.html", http.StatusOK, page)
}

// admissionTabs selects one subject and one sub-category section. Unknown or
// empty selections fall back to the first entry.
func admissionTabs(books []models.Book, subject, sub string) *admissionView {
	groups := catalog.GroupAdmission(books)
	view := &admissionView{Books: []models.Book{}}
	if len(groups) == 0 {
		return view
	}

	selected := 0
	for i, g := range groups {
		if g.Subject == subject {
			selected = i
		}
	}
	group := groups[selected]

	for i, g := range groups {
		view.Subjects = append(view.Subjects, tab{
			Label:  g.Subject,
			URL:    admissionURL(g.Subject, ""),
			Count:  countBooks(g.Sections),
			Active: i == selected,
		})
	}

	active := 0
	for i, s := range group.Sections {
		if sectionKey(s) == sub {
			active = i
		}
	}
	for i, s := range group.Sections {
		view.Sections = append(view.Sections, tab{
			Label:  s.Label,
			URL:    admissionURL(group.Subject, sectionKey(s)),
			Count:  len(s.Books),
			Active: i == active,
		})
	}
	view.Books = group.Sections[active].Books
	return view
}

func sectionKey(s catalog.Section) string {
	if s.SubCategory == "" {
		return otherTab
	}
	return s.SubCategory
}

func admissionURL(subject, sub string) string {
	v := url.Values{}
	v.Set("subject", subject)
	if sub != "" {
		v.Set("tab", sub)
	}
	return "/class/" + models.AdmissionLevel + "?" + v.Encode()
}

func countBooks(sections []catalog.Section) int {
	n := 0
	for _, s := range sections {
		n += len(s.Books)
	}
	return n
}

type searchPage struct {
	layoutData
	Books []models.Book
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	page := searchPage{
		layoutData: h.layout("অনুসন্ধান"),
		Books:      catalog.Search(h.catalog.Books(), q),
	}
	page.Query = q
	if q != "" {
		page.Title = q
	}
	h.render(w, "search.html", http.StatusOK, page)
}

type bookPage struct {
	layoutData
	Book        models.Book
	ClassLabel  string
	Description string
	SubLabel    string
	BackURL     string
	ReadURL     string
}

func (h *Handler) HandleBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.findBook(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	description := strings.TrimSpace(book.Description)
	if description == "" {
		description = locale.NoDescription
	}

	page := bookPage{
		layoutData:  h.layout(book.Title),
		Book:        book,
		ClassLabel:  models.CategoryLabel(book.ClassLevel),
		Description: description,
		BackURL:     "/class/" + url.PathEscape(book.ClassLevel),
		ReadURL:     "/read/" + url.PathEscape(book.ID),
	}
	if book.IsAdmission() {
		page.SubLabel = models.SubCategoryLabel(book.SubCategory)
	}
	if book.PublishYear != "" {
		if _, err := strconv.Atoi(book.PublishYear); err == nil {
			page.Book.PublishYear = locale.Digits(book.PublishYear)
		}
	}
	h.render(w, "book.html", http.StatusOK, page)
}
