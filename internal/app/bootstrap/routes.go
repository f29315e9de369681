// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	accountsfeature "github.com/quantrinhansu123/finance-up-sub001/internal/app/features/accounts"
	auditlogfeature "github.com/quantrinhansu123/finance-up-sub001/internal/app/features/auditlog"
	fundsfeature "github.com/quantrinhansu123/finance-up-sub001/internal/app/features/funds"
	healthfeature "github.com/quantrinhansu123/finance-up-sub001/internal/app/features/health"
	loginfeature "github.com/quantrinhansu123/finance-up-sub001/internal/app/features/login"
	projectsfeature "github.com/quantrinhansu123/finance-up-sub001/internal/app/features/projects"
	reportsfeature "github.com/quantrinhansu123/finance-up-sub001/internal/app/features/reports"
	revenuesfeature "github.com/quantrinhansu123/finance-up-sub001/internal/app/features/revenues"
	transactionsfeature "github.com/quantrinhansu123/finance-up-sub001/internal/app/features/transactions"
	usersfeature "github.com/quantrinhansu123/finance-up-sub001/internal/app/features/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auth"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/requestid"
)

// BuildHandler constructs the root HTTP handler for the app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. All routes are JSON API routes:
// login/logout/me are public (login rate-limited internally), the rest
// of /api requires a signed-in session.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Tags each request with an X-Request-ID for log correlation.
	r.Use(requestid.Middleware)

	// Loads SessionUser into the request context when a session cookie
	// is present; handlers use auth.CurrentUser(r) to read it.
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus scrape endpoint backed by the app's private registry.
	r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))

	loginHandler := loginfeature.NewHandler(deps.Users, deps.AuditLog, deps.LoginLimiter, logger)

	accountsHandler := accountsfeature.NewHandler(deps.Accounts, deps.Transactions, deps.Users, deps.AuditLog, logger)
	transactionsHandler := transactionsfeature.NewHandler(deps.Ledger, deps.Transactions, deps.Users, logger)
	projectsHandler := projectsfeature.NewHandler(deps.Projects, deps.Users, deps.AuditLog, logger)
	fundsHandler := fundsfeature.NewHandler(deps.Funds, deps.Transactions, deps.Users, deps.AuditLog, logger)
	revenuesHandler := revenuesfeature.NewHandler(deps.Revenues, deps.Users, deps.AuditLog, logger)
	reportsHandler := reportsfeature.NewHandler(deps.Accounts, deps.Transactions, deps.Projects, deps.Users, deps.Rates, deps.Metrics, logger)
	usersHandler := usersfeature.NewHandler(deps.Users, deps.AuditLog, logger)
	auditHandler := auditlogfeature.NewHandler(deps.AuditStore, deps.Users, logger)

	r.Route("/api", func(api chi.Router) {
		// /api/login, /api/logout, /api/me
		api.Mount("/", loginfeature.Routes(loginHandler))

		api.Group(func(priv chi.Router) {
			priv.Use(auth.RequireSignedIn)
			priv.Mount("/accounts", accountsfeature.Routes(accountsHandler))
			priv.Mount("/transactions", transactionsfeature.Routes(transactionsHandler))
			priv.Mount("/projects", projectsfeature.Routes(projectsHandler))
			priv.Mount("/funds", fundsfeature.Routes(fundsHandler))
			priv.Mount("/revenues", revenuesfeature.Routes(revenuesHandler))
			priv.Mount("/reports", reportsfeature.Routes(reportsHandler))
			priv.Mount("/users", usersfeature.Routes(usersHandler))
			priv.Mount("/audit", auditlogfeature.Routes(auditHandler))
		})
	})

	return r, nil
}
