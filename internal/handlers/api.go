package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/schoolbooks-connect/schoolbooks/internal/catalog"
	"github.com/schoolbooks-connect/schoolbooks/internal/drive"
	"github.com/schoolbooks-connect/schoolbooks/internal/models"
	"github.com/schoolbooks-connect/schoolbooks/internal/seed"
	"github.com/schoolbooks-connect/schoolbooks/internal/viewer"
)

type PlainOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type ListBooksInput struct {
	Class   string `query:"class" doc:"Class level, 1 to 12 or admission"`
	Subject string `query:"subject" doc:"Exact subject name"`
	Q       string `query:"q" doc:"Free text matched against title, subject and class"`
}

type BooksOutput struct {
	Body struct {
		Total int           `json:"total"`
		Books []models.Book `json:"books"`
	}
}

type BookInput struct {
	ID string `path:"id" doc:"Book id"`
}

type BookOutput struct {
	Body models.Book
}

type CategoriesOutput struct {
	Body struct {
		Classes       []models.Category    `json:"classes"`
		SubCategories []models.SubCategory `json:"subCategories"`
	}
}

type CatalogOutput struct {
	Body catalog.Status
}

type ReaderEventInput struct {
	ID   string `path:"id" doc:"Book id"`
	Body struct {
		State viewer.State `json:"state"`
		Event viewer.Event `json:"event"`
	}
}

type ReaderEventOutput struct {
	Body struct {
		State      viewer.State `json:"state"`
		Query      string       `json:"query" doc:"Reader URL query for the resulting state"`
		PageWidth  int          `json:"pageWidth"`
		Transform  string       `json:"transform"`
		Transition string       `json:"transition"`
	}
}

type LinksInput struct {
	URL string `query:"url" required:"true" doc:"Document share link"`
}

type LinksOutput struct {
	Body drive.Links
}

type SeedOutput struct {
	Body seed.Progress
}

func (h *Handler) registerAPI(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "HealthCheck",
		Method:      "GET",
		Path:        "/healthz",
		Summary:     "Health check",
		Description: "Check if the server is running",
		Tags:        []string{"Health"},
	}, func(ctx context.Context, input *struct{}) (*PlainOutput, error) {
		return &PlainOutput{
			ContentType: "text/plain",
			Body:        []byte("OK"),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "ListBooks",
		Method:      "GET",
		Path:        "/api/books",
		Summary:     "List books",
		Description: "List catalog books, optionally filtered by class, subject and free text",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *ListBooksInput) (*BooksOutput, error) {
		books := h.catalog.Books()
		if input.Class != "" {
			books = catalog.ByClass(books, input.Class)
		}
		if input.Subject != "" {
			books = catalog.BySubject(books, input.Subject)
		}
		if input.Q != "" {
			books = catalog.Search(books, input.Q)
		}
		resp := &BooksOutput{}
		resp.Body.Total = len(books)
		resp.Body.Books = books
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GetBook",
		Method:      "GET",
		Path:        "/api/books/{id}",
		Summary:     "Get book",
		Description: "Get one book by id",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *BookInput) (*BookOutput, error) {
		book, err := catalog.Find(h.catalog.Books(), input.ID)
		if err != nil {
			return nil, huma.Error404NotFound("book not found")
		}
		return &BookOutput{Body: book}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "ListCategories",
		Method:      "GET",
		Path:        "/api/categories",
		Summary:     "List categories",
		Description: "List the class levels and admission sub-categories",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *struct{}) (*CategoriesOutput, error) {
		resp := &CategoriesOutput{}
		resp.Body.Classes = models.AllCategories()
		resp.Body.SubCategories = models.SubCategories
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GetCatalogStatus",
		Method:      "GET",
		Path:        "/api/catalog",
		Summary:     "Get catalog status",
		Description: "Whether the catalog is live, its size and when it was last refreshed",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *struct{}) (*CatalogOutput, error) {
		return &CatalogOutput{Body: h.catalog.Status()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "RefreshCatalog",
		Method:      "POST",
		Path:        "/api/catalog/refresh",
		Summary:     "Refresh catalog",
		Description: "Refetch the catalog from the sheet, falling back to the bundled books",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *struct{}) (*CatalogOutput, error) {
		return &CatalogOutput{Body: h.catalog.Refresh(ctx)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "ApplyReaderEvent",
		Method:      "POST",
		Path:        "/api/reader/{id}/events",
		Summary:     "Apply reader event",
		Description: "Apply one reader input to a reader state and return the resulting state",
		Tags:        []string{"Reader"},
	}, func(ctx context.Context, input *ReaderEventInput) (*ReaderEventOutput, error) {
		if _, err := catalog.Find(h.catalog.Books(), input.ID); err != nil {
			return nil, huma.Error404NotFound("book not found")
		}

		s := viewer.Restore(input.Body.State)
		if err := s.Apply(input.Body.Event); err != nil {
			if errors.Is(err, viewer.ErrUnknownEvent) {
				return nil, huma.Error400BadRequest(err.Error())
			}
			return nil, huma.Error500InternalServerError("failed to apply event", err)
		}

		resp := &ReaderEventOutput{}
		resp.Body.State = s.State()
		resp.Body.Query = resp.Body.State.Values().Encode()
		resp.Body.PageWidth = s.PageWidth()
		resp.Body.Transform = s.VisualTransform()
		resp.Body.Transition = s.Transition()
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "NormalizeLink",
		Method:      "GET",
		Path:        "/api/links",
		Summary:     "Normalize document link",
		Description: "Derive the embed and download forms of a Google Drive share link",
		Tags:        []string{"Reader"},
	}, func(ctx context.Context, input *LinksInput) (*LinksOutput, error) {
		return &LinksOutput{Body: drive.Normalize(input.URL)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GetSeedProgress",
		Method:      "GET",
		Path:        "/api/seed",
		Summary:     "Get seed progress",
		Description: "Progress of the current or most recent demo upload",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *struct{}) (*SeedOutput, error) {
		resp := &SeedOutput{}
		if h.seeder != nil {
			resp.Body = h.seeder.Progress()
		}
		return resp, nil
	})
}
