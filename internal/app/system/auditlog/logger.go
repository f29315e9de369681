// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/store/audit"
)

// Config holds audit logging configuration. Each category can be routed
// independently:
//
//	"all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off"
type Config struct {
	// Auth controls logging for authentication events (login, logout).
	Auth string
	// Ledger controls logging for money-moving events
	// (transaction create/approve/reject).
	Ledger string
	// Admin controls logging for admin events (account, project, fund,
	// membership, role changes).
	Admin string
}

// Logger records audit events to MongoDB (via audit.Store) and to
// structured logs (via zap). Recording is best-effort: a failed insert
// is zap-logged and swallowed, it never fails the calling operation.
// Callers must emit events outside any Mongo transaction so a rolled
// back operation never owes an audit record.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// ClientIP extracts the client IP from the request, preferring
// reverse-proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) mode(category string) string {
	switch category {
	case audit.CategoryAuth:
		return l.config.Auth
	case audit.CategoryLedger:
		return l.config.Ledger
	case audit.CategoryAdmin:
		return l.config.Admin
	}
	return "off"
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("action", event.Action),
		zap.Bool("success", event.Success),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.TargetID != nil {
		fields = append(fields, zap.String("target_id", event.TargetID.Hex()))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String(k, v))
	}
	l.zapLog.Info("audit_event", fields...)
}

// Emit records an event according to the configured mode for its
// category. It never returns an error.
func (l *Logger) Emit(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	mode := l.mode(event.Category)
	if mode == "off" || mode == "" {
		return
	}
	if mode == "all" || mode == "log" {
		l.logToZap(event)
	}
	if mode == "all" || mode == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Warn("audit event insert failed",
				zap.String("category", event.Category),
				zap.String("action", event.Action),
				zap.Error(err))
		}
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
 | Auth events                                                                |
 *─────────────────────────────────────────────────────────────────────────────*/

// LoginSuccess records a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Emit(ctx, audit.Event{
		Category: audit.CategoryAuth,
		Action:   audit.EventLoginSuccess,
		UserID:   &userID,
		IP:       ClientIP(r),
		Success:  true,
	})
}

// LoginFailed records a failed login attempt. userID may be nil when the
// email did not match any user.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, action string, userID *primitive.ObjectID, email string) {
	l.Emit(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		Action:        action,
		UserID:        userID,
		IP:            ClientIP(r),
		Success:       false,
		FailureReason: action,
		Details:       map[string]string{"email": email},
	})
}

// Logout records a logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Emit(ctx, audit.Event{
		Category: audit.CategoryAuth,
		Action:   audit.EventLogout,
		UserID:   &userID,
		IP:       ClientIP(r),
		Success:  true,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | Ledger events                                                              |
 *─────────────────────────────────────────────────────────────────────────────*/

// TransactionCreated records creation of a transaction.
func (l *Logger) TransactionCreated(ctx context.Context, actorID, txID primitive.ObjectID, details map[string]string) {
	l.Emit(ctx, audit.Event{
		Category: audit.CategoryLedger,
		Action:   audit.EventTransactionCreated,
		UserID:   &actorID,
		TargetID: &txID,
		Success:  true,
		Details:  details,
	})
}

// TransactionApproved records approval of a pending transaction.
func (l *Logger) TransactionApproved(ctx context.Context, actorID, txID primitive.ObjectID, details map[string]string) {
	l.Emit(ctx, audit.Event{
		Category: audit.CategoryLedger,
		Action:   audit.EventTransactionApproved,
		UserID:   &actorID,
		TargetID: &txID,
		Success:  true,
		Details:  details,
	})
}

// TransactionRejected records rejection of a pending transaction.
func (l *Logger) TransactionRejected(ctx context.Context, actorID, txID primitive.ObjectID, reason string) {
	l.Emit(ctx, audit.Event{
		Category: audit.CategoryLedger,
		Action:   audit.EventTransactionRejected,
		UserID:   &actorID,
		TargetID: &txID,
		Success:  true,
		Details:  map[string]string{"reason": reason},
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
 | Admin events                                                               |
 *─────────────────────────────────────────────────────────────────────────────*/

// AdminAction records a generic admin event about a target document.
func (l *Logger) AdminAction(ctx context.Context, action string, actorID, targetID primitive.ObjectID, details map[string]string) {
	l.Emit(ctx, audit.Event{
		Category: audit.CategoryAdmin,
		Action:   action,
		UserID:   &actorID,
		TargetID: &targetID,
		Success:  true,
		Details:  details,
	})
}
