package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

// FinanceAPI is the service surface the handlers call.
// *services.FinanceService implements it.
type FinanceAPI interface {
	Location() *time.Location

	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, patch core.TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, q services.TransactionQuery) ([]core.Transaction, error)
	ListTransactionsByDay(ctx context.Context, q services.TransactionQuery) ([]core.DayGroup, error)

	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, id int64, patch core.CategoryPatch) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context, typ core.TransactionType) ([]core.Category, error)

	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	UpdateBudget(ctx context.Context, id int64, patch core.BudgetPatch) (core.Budget, error)
	DeleteBudget(ctx context.Context, id int64) error
	GetBudget(ctx context.Context, id int64) (core.Budget, error)
	ListBudgets(ctx context.Context, filter store.BudgetFilter) ([]core.Budget, error)
	BudgetStatuses(ctx context.Context) ([]core.BudgetStatus, error)
	BudgetStatus(ctx context.Context, id int64) (core.BudgetStatus, error)

	Report(ctx context.Context, period core.ReportPeriod, ref time.Time) (core.Report, error)
	Dashboard(ctx context.Context, ref time.Time) (core.Dashboard, error)
	ReportData(ctx context.Context, period core.ReportPeriod, ref time.Time) (export.ReportData, error)
	Snapshot(ctx context.Context) (export.Snapshot, error)
	Ready(ctx context.Context) error
}

var _ FinanceAPI = (*services.FinanceService)(nil)

// Options tunes a Server. Zero values select defaults.
type Options struct {
	Logger     *log.Logger
	DateLayout string
	RateLimit  ratelimit.Config
	Now        func() time.Time
}

type Server struct {
	http.Server
	finance FinanceAPI
	logger  *log.Logger
	format  export.RowFormat
	limiter *ratelimit.Limiter
	now     func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, finance FinanceAPI, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.DateLayout == "" {
		opts.DateLayout = export.DefaultDateLayout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		finance: finance,
		logger:  opts.Logger,
		format:  export.RowFormat{DateLayout: opts.DateLayout, Location: finance.Location()},
		limiter: ratelimit.NewLimiter(opts.RateLimit),
		now:     opts.Now,
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(log.Middleware(s.logger, chiMiddleware.GetReqID))
	router.Use(chiMiddleware.Recoverer)
	router.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	router.Get("/healthz", handleHealth)
	router.Get("/readyz", s.handleReady)

	router.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.WritesOnly(clientKey, func(w http.ResponseWriter, r *http.Request) {
			ErrorResponse(http.StatusTooManyRequests, ErrorBody{Error: "Rate limit exceeded. Please try again later."}).Write(w)
		}))

		r.Route("/transactions", func(tr chi.Router) {
			tr.Get("/", s.handleListTransactions)
			tr.Post("/", s.handleCreateTransaction)
			tr.Get("/{id}", s.handleGetTransaction)
			tr.Patch("/{id}", s.handleUpdateTransaction)
			tr.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/categories", func(cr chi.Router) {
			cr.Get("/", s.handleListCategories)
			cr.Post("/", s.handleCreateCategory)
			cr.Get("/{id}", s.handleGetCategory)
			cr.Patch("/{id}", s.handleUpdateCategory)
			cr.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/budgets", func(br chi.Router) {
			br.Get("/", s.handleListBudgets)
			br.Post("/", s.handleCreateBudget)
			br.Get("/status", s.handleBudgetStatuses)
			br.Get("/{id}", s.handleGetBudget)
			br.Patch("/{id}", s.handleUpdateBudget)
			br.Delete("/{id}", s.handleDeleteBudget)
			br.Get("/{id}/status", s.handleBudgetStatus)
		})

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/reports", s.handleReport)
		r.Get("/reports/export.csv", s.handleReportCSV)
		r.Get("/export", s.handleExport)
		r.Get("/icons/{name}", handleIcon)
	})

	return router
}

// clientKey identifies a client for rate limiting. RealIP has already
// replaced RemoteAddr with the forwarded address when present.
func clientKey(r *http.Request) string {
	return r.RemoteAddr
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().Body("text/plain; charset=utf-8", []byte("ok")).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.finance.Ready(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		NewResponse().Status(http.StatusServiceUnavailable).Body("text/plain; charset=utf-8", []byte("not ready")).Write(w)
		return
	}
	NewResponse().Body("text/plain; charset=utf-8", []byte("ready")).Write(w)
}
