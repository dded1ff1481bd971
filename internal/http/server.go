// Package http serves the budget pages: the filtered index and the form
// endpoints that mutate records and redirect back with a flash message.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"budgetbook/internal/budget"
	"budgetbook/internal/core"
	"budgetbook/internal/log"
	"budgetbook/internal/middleware/security"
	"budgetbook/internal/report"
	"budgetbook/internal/services"
	appweb "budgetbook/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
)

type ExpenseService interface {
	Create(ctx context.Context, in core.ExpenseInput) (core.Expense, bool, error)
	Delete(ctx context.Context, id int64) error
}

type SavingService interface {
	Create(ctx context.Context, in core.SavingInput) (core.Saving, bool, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryService interface {
	ComputeCategoryStats(ctx context.Context, r core.DateRange) (budget.Stats, error)
	AddCategory(ctx context.Context, in core.CategoryInput) (budget.AddResult, error)
	EditCategory(ctx context.Context, id int64, budgetAmount string) (core.CategoryBudget, error)
	DeleteCategory(ctx context.Context, id int64) (budget.DeleteResult, error)
	ListCategories(ctx context.Context) ([]core.CategoryBudget, error)
	CategoriesWithExpenses(ctx context.Context, cats []core.CategoryBudget) (map[int64]bool, error)
}

type ReportBuilder interface {
	Build(ctx context.Context, f core.ExpenseFilter) (report.Report, error)
}

type SyncTrigger interface {
	Trigger(ctx context.Context, requestedBy string) (services.TriggerResult, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators behind the handlers. Sync may be nil.
type Deps struct {
	Expenses   ExpenseService
	Savings    SavingService
	Categories CategoryService
	Reports    ReportBuilder
	Sync       SyncTrigger
	Store      Pinger
	Logger     *log.Logger
}

type Server struct {
	http.Server
	deps      Deps
	templates *template.Template
	logger    *log.Logger
	started   time.Time
}

// NewServer parses the embedded templates and mounts every route.
func NewServer(addr string, deps Deps) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		deps:      deps,
		templates: t,
		logger:    logger,
		started:   time.Now(),
	}
	router, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() (chi.Router, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	r.With(security.StaticAssetMiddleware(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/", s.handleIndex)
		r.Get("/export.csv", s.handleExportCSV)

		r.Post("/add", s.handleAddExpense)
		r.Post("/delete/{id}", s.handleDeleteExpense)

		r.Post("/add-category", s.handleAddCategory)
		r.Post("/edit-category/{id}", s.handleEditCategory)
		r.Post("/delete-category/{id}", s.handleDeleteCategory)

		r.Post("/add-saving", s.handleAddSaving)
		r.Post("/delete-saving/{id}", s.handleDeleteSaving)
	})

	// a sync may outlive the page timeout
	r.Post("/sync", s.handleSync)

	return r, nil
}

var templateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return core.FormatAmount(d) },
	"day":   func(t time.Time) string { return t.Format(core.DateLayout) },
}

// redirectIndex ends every form post, matching the post/redirect/get flow.
func redirectIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
