package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Routes builds the full HTTP handler: pages, reader, admin and JSON API
func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	router.Get("/static/*", h.HandleStatic)

	router.Get("/", h.HandleHome)
	router.Get("/class/{level}", h.HandleClass)
	router.Get("/search", h.HandleSearch)
	router.Get("/book/{id}", h.HandleBook)

	router.Get("/read/{id}", h.HandleReader)
	router.Get("/read/{id}/document", h.HandleDocument)
	router.Get("/thumb/{id}", h.HandleThumb)

	router.Route("/admin", func(r chi.Router) {
		r.Get("/", h.HandleAdmin)
		r.With(httprate.LimitByIP(10, time.Minute)).Post("/login", h.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Use(httprate.LimitByIP(120, time.Minute))
			r.Post("/logout", h.HandleLogout)
			r.Post("/books", h.HandleSaveBook)
			r.Post("/books/{id}/delete", h.HandleDeleteBook)
			r.Post("/seed", h.HandleSeed)
			r.Post("/refresh", h.HandleRefresh)
			r.Post("/settings", h.HandleSettings)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.corsOrigins,
			AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Origin", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Server"},
			AllowCredentials: false,
		}))

		config := huma.DefaultConfig("Schoolbooks API", h.version)
		config.OpenAPI.Info.Description = "Read-only access to the textbook catalog and reader state transitions."
		config.OpenAPIPath = "/api/openapi"
		config.DocsPath = "/api/docs"
		config.SchemasPath = "/api/schemas"
		api := humachi.New(r, config)

		h.registerAPI(api)
	})

	router.NotFound(h.renderNotFound)

	return otelhttp.NewHandler(router, "schoolbooks")
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			slog.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
