package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"datapilot/internal"
	"datapilot/internal/clean"
	"datapilot/internal/config"
	"datapilot/internal/profile"
	"datapilot/internal/reportgen"
	"datapilot/ports"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App represents the web application
type App struct {
	router    *chi.Mux
	cfg       *config.Config
	store     ports.SessionStore
	reader    ports.TableReader
	renderer  ports.ChartRenderer
	cleaner   *clean.Engine
	profiler  *profile.Profiler
	builder   *reportgen.Builder
	validate  *validator.Validate
	logger    *internal.Logger
	templates *template.Template
}

// Deps bundles the collaborators the application routes need
type Deps struct {
	Config   *config.Config
	Store    ports.SessionStore
	Reader   ports.TableReader
	Renderer ports.ChartRenderer
	Cleaner  *clean.Engine
	Profiler *profile.Profiler
	Builder  *reportgen.Builder
	Logger   *internal.Logger
}

// NewApp creates a new web application
func NewApp(deps Deps) (*App, error) {
	funcMap := template.FuncMap{
		"add":       func(a, b int) int { return a + b },
		"html_safe": func(s string) template.HTML { return template.HTML(s) },
		"until": func(n int) []int {
			res := make([]int, n)
			for i := range res {
				res[i] = i
			}
			return res
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html", "templates/fragments/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	app := &App{
		router:    chi.NewRouter(),
		cfg:       deps.Config,
		store:     deps.Store,
		reader:    deps.Reader,
		renderer:  deps.Renderer,
		cleaner:   deps.Cleaner,
		profiler:  deps.Profiler,
		builder:   deps.Builder,
		validate:  validator.New(),
		logger:    logger,
		templates: templates,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	// Serve static files
	staticFS := http.FileServer(http.FS(embeddedFiles))
	a.router.Handle("/static/*", http.StripPrefix("/", staticFS))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Group(func(r chi.Router) {
		r.Use(a.withSession)

		// Main pages
		r.Get("/", a.handleIndex)
		r.Get("/visualize", a.handleVisualize)
		r.Get("/report", a.handleReportPage)

		// Dataset API endpoints
		r.Post("/api/upload", a.handleUpload)
		r.Get("/api/dataset/info", a.handleDatasetInfo)
		r.Get("/api/download", a.handleDownload)

		// Cleaning API endpoints
		r.Post("/api/clean/duplicates", a.handleDropDuplicates)
		r.Post("/api/clean/impute", a.handleImpute)
		r.Post("/api/reset", a.handleReset)

		// Chart API endpoints
		r.Get("/api/charts", a.handleListCharts)
		r.Post("/api/charts", a.handleAddChart)
		r.Delete("/api/charts/{index}", a.handleRemoveChart)
		r.Get("/api/charts/{index}/render", a.handleRenderChart)
		r.Get("/api/charts/preview", a.handleChartPreview)

		// Report API endpoints
		r.Get("/api/report", a.handleReportJSON)
		r.Get("/api/report/export", a.handleReportExport)
	})
}

// Handler exposes the configured router
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		a.logger.Error("[ui] template %s: %v", templateName, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
