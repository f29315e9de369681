// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging level); AppConfig is
// everything specific to the ledger service.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionDomain string // Cookie domain (blank means current host)

	// Audit logging routing per category: "all", "db", "log" or "off".
	AuditLogAuth   string
	AuditLogLedger string
	AuditLogAdmin  string

	// Exchange rate provider used by reports. Blank disables FX
	// conversion; report summaries then serve native currencies only.
	RatesBaseURL  string
	RatesCacheTTL time.Duration

	// Pending transaction monitor.
	PendingCheckInterval time.Duration
	PendingStaleAfter    time.Duration

	// SuperAdmin bootstrap: promotes (or creates) this user as admin
	// on startup so a fresh deployment is never locked out.
	SuperAdminEmail string
}
