package catalog

import (
	"errors"
	"strings"

	"github.com/schoolbooks-connect/schoolbooks/internal/models"
	"golang.org/x/text/cases"
)

// ErrNotFound is returned when no book has the requested id
var ErrNotFound = errors.New("book not found")

// TrendingCount is the number of books featured on the home page
const TrendingCount = 5

// ByClass returns the books of one class level in snapshot order
func ByClass(books []models.Book, level string) []models.Book {
	return filter(books, func(b models.Book) bool {
		return b.ClassLevel == level
	})
}

// BySubject returns the books of one subject in snapshot order
func BySubject(books []models.Book, subject string) []models.Book {
	return filter(books, func(b models.Book) bool {
		return b.Subject == subject
	})
}

// Search matches q against title and subject ignoring case, against
// "class <level>", and exactly against the class level. An empty query
// matches everything.
func Search(books []models.Book, q string) []models.Book {
	q = strings.TrimSpace(q)
	if q == "" {
		return filter(books, func(models.Book) bool { return true })
	}

	fold := cases.Fold()
	needle := fold.String(q)
	return filter(books, func(b models.Book) bool {
		return strings.Contains(fold.String(b.Title), needle) ||
			strings.Contains(fold.String(b.Subject), needle) ||
			strings.Contains("class "+b.ClassLevel, needle) ||
			b.ClassLevel == q
	})
}

// AdminFilter matches q as a substring of title, subject or id
func AdminFilter(books []models.Book, q string) []models.Book {
	q = strings.TrimSpace(q)
	if q == "" {
		return filter(books, func(models.Book) bool { return true })
	}

	fold := cases.Fold()
	needle := fold.String(q)
	return filter(books, func(b models.Book) bool {
		return strings.Contains(fold.String(b.Title), needle) ||
			strings.Contains(fold.String(b.Subject), needle) ||
			strings.Contains(b.ID, q)
	})
}

// Find returns the book with the given id
func Find(books []models.Book, id string) (models.Book, error) {
	for _, b := range books {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Book{}, ErrNotFound
}

// Trending returns the first n books
func Trending(books []models.Book, n int) []models.Book {
	n = max(0, min(n, len(books)))
	return append([]models.Book(nil), books[:n]...)
}

// Subjects returns the distinct subjects in order of first appearance
func Subjects(books []models.Book) []string {
	var subjects []string
	seen := map[string]bool{}
	for _, b := range books {
		if !seen[b.Subject] {
			seen[b.Subject] = true
			subjects = append(subjects, b.Subject)
		}
	}
	return subjects
}

// Section is the books of one sub-category within a subject
type Section struct {
	SubCategory string        `json:"subCategory"`
	Label       string        `json:"label"`
	Books       []models.Book `json:"books"`
}

// SubjectGroup is one subject tab of the admission page
type SubjectGroup struct {
	Subject  string    `json:"subject"`
	Sections []Section `json:"sections"`
}

// GroupAdmission groups admission books by subject, then by sub-category.
// Subjects keep first-appearance order, sections follow models.SubCategories,
// and books with an unknown or missing sub-category go to a trailing section.
// Empty sections are omitted.
func GroupAdmission(books []models.Book) []SubjectGroup {
	admission := ByClass(books, models.AdmissionLevel)

	var groups []SubjectGroup
	for _, subject := range Subjects(admission) {
		inSubject := BySubject(admission, subject)
		group := SubjectGroup{Subject: subject}

		known := map[string]bool{}
		for _, sc := range models.SubCategories {
			known[sc.ID] = true
			matched := filter(inSubject, func(b models.Book) bool { return b.SubCategory == sc.ID })
			if len(matched) > 0 {
				group.Sections = append(group.Sections, Section{SubCategory: sc.ID, Label: sc.Label, Books: matched})
			}
		}

		other := filter(inSubject, func(b models.Book) bool { return !known[b.SubCategory] })
		if len(other) > 0 {
			group.Sections = append(group.Sections, Section{Label: models.SubCategoryLabel(""), Books: other})
		}

		groups = append(groups, group)
	}
	return groups
}

func filter(books []models.Book, keep func(models.Book) bool) []models.Book {
	out := []models.Book{}
	for _, b := range books {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}
