package app

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/Fayeur9/money-manager/internal/config"
	"github.com/Fayeur9/money-manager/internal/database"
	"github.com/Fayeur9/money-manager/internal/event_bus"
	"github.com/Fayeur9/money-manager/internal/rest"
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	// DB + migrations
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	// db will be closed when server shuts down; defer not possible here, leave to process exit.
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Build dependencies (services, handlers...)
	deps := BuildDependencies(db, cfg)

	// Middleware chain
	SetupMiddleware(r, deps, cfg)

	// Routes
	RegisterRoutes(r, deps, cfg)

	// Event subscriptions
	registerEventHandlers(deps)

	// Frontend
	if cfg.Frontend.Enabled {
		frontend := rest.NewFrontendHandler("frontend", "index.html")
		r.PathPrefix("/").Handler(frontend)
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         ":8181",
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv}, nil
}

// registerEventHandlers attaches the cross-package reactions to the event bus.
// Every new expense is checked against the budget of its category (or the
// closest budgeted ancestor) and a warning is logged when the month's limit is
// already blown.
func registerEventHandlers(deps *Dependencies) {
	deps.EventBus.Subscribe(event_bus.TransactionCreated, func(e event_bus.Event) error {
		data, ok := e.Data.(event_bus.TransactionCreatedData)
		if !ok {
			return nil
		}
		// The stored spend already contains the new transaction, so the check
		// runs with a zero delta.
		result, err := deps.BudgetService.CheckExceeded(e.Context(), data.CategoryId, decimal.Zero)
		if err != nil {
			return err
		}
		if result.HasBudget && result.Spent.GreaterThan(result.Amount) {
			log.Warnf("budget %s exceeded: spent %s of %s", result.BudgetId, result.Spent, result.Amount)
		}
		return nil
	})
}

// Run starts the HTTP server and blocks.
func (a *Application) Run() error {
	log.Infof("Starting server on %s", a.srv.Addr)
	return a.srv.ListenAndServe()
}
