package models

import (
	"strconv"

	"github.com/schoolbooks-connect/schoolbooks/internal/locale"
)

// Book represents one catalog entry as stored in the remote sheet
type Book struct {
	ID           string `json:"id" yaml:"id" parquet:"id"`
	Title        string `json:"title" yaml:"title" parquet:"title"`
	Subject      string `json:"subject" yaml:"subject" parquet:"subject"`
	ClassLevel   string `json:"classLevel" yaml:"classLevel" parquet:"classLevel"`
	SubCategory  string `json:"subCategory" yaml:"subCategory,omitempty" parquet:"subCategory,optional"`
	ThumbnailURL string `json:"thumbnailUrl" yaml:"thumbnailUrl" parquet:"thumbnailUrl"`
	PDFURL       string `json:"pdfUrl" yaml:"pdfUrl" parquet:"pdfUrl"`
	Description  string `json:"description" yaml:"description,omitempty" parquet:"description,optional"`
	PublishYear  string `json:"publishYear" yaml:"publishYear,omitempty" parquet:"publishYear,optional"`
}

// IsAdmission reports whether the book belongs to the admission track
func (b Book) IsAdmission() bool {
	return b.ClassLevel == AdmissionLevel
}

// Category is one entry of the browse taxonomy
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

const (
	AdmissionLevel = "admission"

	// DefaultThumbnail is used when a book is saved without a cover
	DefaultThumbnail = "https://placehold.co/300x400?text=No+Cover"
)

// Classes returns the grade categories 1 through 12
func Classes() []Category {
	classes := make([]Category, 0, 12)
	for i := 1; i <= 12; i++ {
		n := strconv.Itoa(i)
		classes = append(classes, Category{
			ID:    "class-" + n,
			Label: "শ্রেণী " + locale.Digits(n),
			Value: n,
		})
	}
	return classes
}

// Admission is the category for university admission preparation
var Admission = Category{
	ID:    AdmissionLevel,
	Label: "ভর্তি প্রস্তুতি",
	Value: AdmissionLevel,
}

// AllCategories returns every grade followed by the admission track
func AllCategories() []Category {
	return append(Classes(), Admission)
}

// CategoryLabel returns the display label for a class level, or the level itself
func CategoryLabel(level string) string {
	for _, c := range AllCategories() {
		if c.Value == level {
			return c.Label
		}
	}
	return level
}

// SubCategory tags admission books
type SubCategory struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SubCategories lists the admission sub-categories in display order
var SubCategories = []SubCategory{
	{ID: "textbook", Label: "মূল বই"},
	{ID: "highlighted", Label: "হাইলাইটেড বই"},
	{ID: "concept", Label: "কনসেপ্ট বুক"},
	{ID: "question_bank", Label: "প্রশ্ন ব্যাংক"},
}

// SubCategoryLabel returns the label for id, or "অন্যান্য" for unknown or empty ids
func SubCategoryLabel(id string) string {
	for _, s := range SubCategories {
		if s.ID == id {
			return s.Label
		}
	}
	return "অন্যান্য"
}
