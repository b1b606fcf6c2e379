package main

import (
	"context"

	"github.com/rs/zerolog"

	"findash/internal/domain/category"
	"findash/internal/domain/export"
	"findash/internal/domain/metrics"
	"findash/internal/domain/reporting"
	"findash/internal/domain/transaction"
	"findash/internal/domain/user"
	"findash/internal/infrastructure/store"
	httphandlers "findash/internal/interfaces/http"
	"findash/internal/shared/auth"
	"findash/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Store *store.Store

	// Handlers
	AuthHandler        *httphandlers.AuthHandler
	ProfileHandler     *httphandlers.ProfileHandler
	TransactionHandler *httphandlers.TransactionHandler
	CategoryHandler    *httphandlers.CategoryHandler
	DashboardHandler   *httphandlers.DashboardHandler
	ReportHandler      *httphandlers.ReportHandler
	ExportHandler      *httphandlers.ExportHandler
	HealthHandler      *httphandlers.HealthHandler

	// Auth
	JWT *auth.JWT
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Dependencies, error) {
	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	loc := cfg.Reporting.Location
	jwt := auth.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	// Domain services
	categoryService := category.NewService(st.Categories, st.Transactions)
	transactionService := transaction.NewService(st.Transactions, categoryService)
	userService := user.NewService(st.Users, jwt, categoryService, st.Transactions, st.Categories)

	// Read-side engines
	metricsEngine := metrics.NewEngine(st.Transactions)
	reportEngine := reporting.NewEngine(st.Transactions, loc)
	projector := export.NewProjector(st.Transactions, loc, cfg.Export.DateLayout)

	var pinger httphandlers.Pinger
	if st.Pinger != nil {
		pinger = st.Pinger
	}

	return &Dependencies{
		Store:              st,
		AuthHandler:        httphandlers.NewAuthHandler(userService, cfg.JWT.TTL),
		ProfileHandler:     httphandlers.NewProfileHandler(userService),
		TransactionHandler: httphandlers.NewTransactionHandler(transactionService, userService, loc),
		CategoryHandler:    httphandlers.NewCategoryHandler(categoryService),
		DashboardHandler:   httphandlers.NewDashboardHandler(metricsEngine),
		ReportHandler:      httphandlers.NewReportHandler(reportEngine),
		ExportHandler:      httphandlers.NewExportHandler(projector),
		HealthHandler:      httphandlers.NewHealthHandler(st.Backend, pinger),
		JWT:                jwt,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close(ctx context.Context) error {
	if d.Store != nil {
		return d.Store.Close(ctx)
	}
	return nil
}
