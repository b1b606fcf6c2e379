package main

import (
	"net/http"

	"github.com/rs/zerolog"

	"findash/internal/shared/config"
	"findash/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", deps.HealthHandler.HandleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	protect := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authMiddleware(h))
	}

	protect("/api/dashboard/metrics", deps.DashboardHandler.HandleMetrics)

	protect("/api/reports/monthly", deps.ReportHandler.HandleMonthly)
	protect("/api/reports/yearly", deps.ReportHandler.HandleYearly)
	protect("/api/reports/trends", deps.ReportHandler.HandleTrends)
	protect("/api/reports/income-expense", deps.ReportHandler.HandleIncomeExpense)

	protect("/api/export/fields", deps.ExportHandler.HandleFields)
	protect("/api/export/transactions", deps.ExportHandler.HandleExport)

	protect("/api/transactions/", deps.TransactionHandler.HandleTransactions)
	protect("/api/transactions/{id}", deps.TransactionHandler.HandleTransactionByID)
	protect("/api/categories/", deps.CategoryHandler.HandleCategories)
	protect("/api/categories/{id}", deps.CategoryHandler.HandleCategoryByID)

	protect("/api/profile/", deps.ProfileHandler.HandleProfile)
	protect("/api/profile/me", deps.ProfileHandler.HandleDeleteAccount)

	// Apply global middleware, innermost first
	var handler http.Handler = mux
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(middleware.Tracing(mux))
	}
	handler = middleware.CORS(cfg.Server.AllowedHosts)(handler)
	handler = middleware.Recovery(log)(handler)
	handler = middleware.Logging(log)(handler)
	handler = middleware.RequestID(handler)

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Info().Msg("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
