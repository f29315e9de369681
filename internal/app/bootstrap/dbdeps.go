// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/ledger"
	accountstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/accounts"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/store/audit"
	fundstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/funds"
	projectstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/projects"
	revenuestore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/revenues"
	transactionstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/transactions"
	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auditlog"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/observability"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/ratelimit"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/rates"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/workers"
)

// DBDeps holds database and back-end dependencies for the app.
//
// Everything here is built once in ConnectDB and shared across all
// request handlers for the lifetime of the process.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Users        *userstore.Store
	Accounts     *accountstore.Store
	Transactions *transactionstore.Store
	Projects     *projectstore.Store
	Funds        *fundstore.Store
	Revenues     *revenuestore.Store
	AuditStore   *audit.Store

	AuditLog *auditlog.Logger
	Ledger   *ledger.Service
	Rates    *rates.Client
	Metrics  *observability.Metrics

	LoginLimiter   *ratelimit.LoginLimiter
	PendingMonitor *workers.PendingMonitor
}
