// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/ledger"
	accountstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/accounts"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/store/audit"
	fundstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/funds"
	projectstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/projects"
	revenuestore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/revenues"
	transactionstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/transactions"
	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auditlog"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/indexes"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/observability"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/ratelimit"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/rates"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/timeouts"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/validators"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/workers"
)

// ConnectDB connects to MongoDB and builds all shared back-end
// dependencies: stores, the ledger service, the audit logger, the
// exchange rate client, metrics, and background workers.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	db := client.Database(appCfg.MongoDatabase)

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: db,

		Users:        userstore.New(db),
		Accounts:     accountstore.New(db, logger),
		Transactions: transactionstore.New(db),
		Projects:     projectstore.New(db),
		Funds:        fundstore.New(db),
		Revenues:     revenuestore.New(db),
		AuditStore:   audit.New(db),

		Metrics:      observability.NewMetrics(),
		LoginLimiter: ratelimit.NewLoginLimiter(),
	}

	deps.AuditLog = auditlog.New(deps.AuditStore, logger, auditlog.Config{
		Auth:   appCfg.AuditLogAuth,
		Ledger: appCfg.AuditLogLedger,
		Admin:  appCfg.AuditLogAdmin,
	})

	deps.Ledger = ledger.NewService(db, deps.Accounts, deps.Transactions, deps.Projects,
		deps.AuditLog, deps.Metrics, logger)

	// The rate client is optional: with no base URL configured, report
	// conversion degrades to native per-currency totals.
	if appCfg.RatesBaseURL != "" {
		deps.Rates = rates.NewClient(appCfg.RatesBaseURL, appCfg.RatesCacheTTL, logger)
	}

	deps.PendingMonitor = workers.NewPendingMonitor(deps.Transactions, logger,
		appCfg.PendingCheckInterval, appCfg.PendingStaleAfter)

	return deps, nil
}

// EnsureSchema creates collection validators and indexes. It runs on
// every startup and is idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		return fmt.Errorf("ensure validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if err := deps.AuditStore.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure audit indexes: %w", err)
	}
	logger.Info("schema ensured")
	return nil
}
