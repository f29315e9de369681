// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the ledger service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_key, etc.
//   - Environment variables: FINANCEUP_MONGO_URI, FINANCEUP_SESSION_KEY, etc.
//   - Command-line flags: --mongo_uri, --session_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "finance_up", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_ledger", Default: "all", Desc: "Ledger event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Exchange rate provider
	{Name: "rates_base_url", Default: "", Desc: "Exchange rate provider base URL (blank disables FX conversion)"},
	{Name: "rates_cache_ttl", Default: "15m", Desc: "How long fetched exchange rates stay cached"},

	// Pending transaction monitor
	{Name: "pending_check_interval", Default: "1h", Desc: "How often the pending transaction monitor runs"},
	{Name: "pending_stale_after", Default: "72h", Desc: "Age after which a pending transaction is reported as stale"},

	// SuperAdmin bootstrap
	{Name: "superadmin_email", Default: "", Desc: "Email of the superadmin user (promotes/creates as admin on startup)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FINANCEUP", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionDomain: appValues.String("session_domain"),

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditLogLedger: appValues.String("audit_log_ledger"),
		AuditLogAdmin:  appValues.String("audit_log_admin"),

		RatesBaseURL:  appValues.String("rates_base_url"),
		RatesCacheTTL: appValues.Duration("rates_cache_ttl", 15*time.Minute),

		PendingCheckInterval: appValues.Duration("pending_check_interval", time.Hour),
		PendingStaleAfter:    appValues.Duration("pending_stale_after", 72*time.Hour),

		SuperAdminEmail: appValues.String("superadmin_email"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is validated here to catch configuration errors
// early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	switch coreCfg.Env {
	case "prod":
		if appCfg.SessionKey == "" || appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
			return fmt.Errorf("session_key must be set to a strong value in production")
		}
	}
	for _, mode := range []string{appCfg.AuditLogAuth, appCfg.AuditLogLedger, appCfg.AuditLogAdmin} {
		switch mode {
		case "all", "db", "log", "off", "":
		default:
			return fmt.Errorf("audit log mode %q is not one of all|db|log|off", mode)
		}
	}
	return nil
}
