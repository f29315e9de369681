// internal/app/ledger/service.go
//
// Package ledger is the consistency core: it computes a new
// transaction's initial status, drives the pending → approved/rejected
// transition, and is the only caller of the account store's balance
// mutation. Every operation is gated by the capability resolver.
package ledger

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	accountstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/accounts"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/store/audit"
	projectstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/projects"
	transactionstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/transactions"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/auditlog"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/authz"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/htmlsanitize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/limits"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/normalize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/observability"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/txn"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

var (
	ErrPermissionDenied    = errors.New("caller lacks the required capability")
	ErrProjectMismatch     = errors.New("project does not match the account's project")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidType         = errors.New("transaction type must be in or out")
	ErrNotPending          = errors.New("transaction is not pending")
	ErrReasonRequired      = errors.New("a rejection reason is required")
	ErrConcurrencyConflict = errors.New("transaction changed concurrently")
)

// Service wires the transaction, account and project stores together
// with auditing and metrics. Metrics and audit may be nil; both degrade
// to no-ops.
type Service struct {
	db           *mongo.Database
	accounts     *accountstore.Store
	transactions *transactionstore.Store
	projects     *projectstore.Store
	audit        *auditlog.Logger
	metrics      *observability.Metrics
	log          *zap.Logger
}

func NewService(db *mongo.Database, accounts *accountstore.Store, transactions *transactionstore.Store, projects *projectstore.Store, auditLog *auditlog.Logger, metrics *observability.Metrics, log *zap.Logger) *Service {
	return &Service{
		db:           db,
		accounts:     accounts,
		transactions: transactions,
		projects:     projects,
		audit:        auditLog,
		metrics:      metrics,
		log:          log,
	}
}

// CreateInput carries everything a caller supplies for a new
// transaction. Amount arrives already parsed; handlers own the string
// form.
type CreateInput struct {
	Type     string
	Amount   decimal.Decimal
	Currency string
	Category string
	Source   string
	Note     string

	AccountID primitive.ObjectID
	ProjectID *primitive.ObjectID
	FundID    *primitive.ObjectID

	Images []string
}

// capabilitiesFor resolves the actor's capability set in the scope the
// project reference selects: project-scoped when set, global otherwise.
func (s *Service) capabilitiesFor(ctx context.Context, actor models.User, projectID *primitive.ObjectID) ([]authz.Capability, error) {
	if projectID == nil {
		return authz.GlobalPermissions(actor), nil
	}
	p, err := s.projects.GetByID(ctx, *projectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return authz.ResolvePermissions(actor, p), nil
}

func signedDelta(txType string, amount decimal.Decimal) decimal.Decimal {
	if txType == models.TransactionOut {
		return amount.Neg()
	}
	return amount
}

// truncateNote caps a note at MaxNoteLength bytes without splitting a
// multi-byte rune (notes are routinely Vietnamese text).
func truncateNote(note string) string {
	if len(note) <= limits.MaxNoteLength {
		return note
	}
	cut := limits.MaxNoteLength
	for cut > 0 && !utf8.RuneStart(note[cut]) {
		cut--
	}
	return note[:cut]
}

// Create validates, authorizes and persists a new transaction. When the
// computed initial status is approved, the account balance is adjusted
// in the same logical operation, so an income entry is visible in the
// balance as soon as Create returns.
func (s *Service) Create(ctx context.Context, actor models.User, in CreateInput) (models.Transaction, error) {
	started := time.Now()

	txType := normalize.TransactionType(in.Type)
	if txType != models.TransactionIn && txType != models.TransactionOut {
		return models.Transaction{}, ErrInvalidType
	}
	if in.Amount.Sign() <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	currency := normalize.Currency(in.Currency)

	account, err := s.accounts.GetByID(ctx, in.AccountID)
	if err != nil {
		return models.Transaction{}, err
	}

	// A project-scoped account pins the authorization scope: the
	// caller's capabilities are resolved in that project whether or not
	// the request names it, and naming a different project is an error.
	if account.ProjectID != nil {
		if in.ProjectID == nil {
			in.ProjectID = account.ProjectID
		} else if *in.ProjectID != *account.ProjectID {
			return models.Transaction{}, ErrProjectMismatch
		}
	}

	needed := authz.CapCreateIncome
	if txType == models.TransactionOut {
		needed = authz.CapCreateExpense
	}
	caps, err := s.capabilitiesFor(ctx, actor, in.ProjectID)
	if err != nil {
		return models.Transaction{}, err
	}
	if !authz.HasCapability(caps, needed) {
		return models.Transaction{}, ErrPermissionDenied
	}

	if err := accountstore.CheckTransactionAllowed(account, txType, currency, in.Category); err != nil {
		return models.Transaction{}, err
	}

	amount128, err := money.ToDecimal128(in.Amount)
	if err != nil {
		return models.Transaction{}, err
	}

	note := truncateNote(htmlsanitize.Text(in.Note))
	images := in.Images
	if len(images) > limits.MaxImagesPerTransaction {
		images = images[:limits.MaxImagesPerTransaction]
	}

	status := InitialStatus(txType, currency, in.Amount)
	tx := models.Transaction{
		Type:      txType,
		Amount:    amount128,
		Currency:  currency,
		Category:  normalize.Category(in.Category),
		Source:    normalize.Name(in.Source),
		Note:      note,
		AccountID: in.AccountID,
		ProjectID: in.ProjectID,
		FundID:    in.FundID,
		Status:    status,
		CreatedBy: actor.ID,
		Images:    images,
	}
	if status == models.StatusApproved {
		tx.ApprovedBy = &actor.ID
	}

	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		inserted, err := s.transactions.Insert(ctx, tx)
		if err != nil {
			return err
		}
		tx = inserted
		if status != models.StatusApproved {
			return nil
		}
		return s.accounts.AdjustBalance(ctx, tx.AccountID, signedDelta(txType, in.Amount), tx.ID)
	})
	if err != nil {
		return models.Transaction{}, err
	}
	if status == models.StatusApproved {
		tx.BalanceApplied = true
		s.metrics.IncrBalanceAdjustment(txType)
	}
	s.metrics.IncrTransactionCreated(txType, status)
	s.metrics.RecordOperationDuration("transaction_create", time.Since(started))

	s.audit.Emit(ctx, audit.Event{
		Category: audit.CategoryLedger,
		Action:   audit.EventTransactionCreated,
		UserID:   &actor.ID,
		TargetID: &tx.ID,
		Success:  true,
		Details: map[string]string{
			"type":     txType,
			"amount":   in.Amount.String(),
			"currency": currency,
			"status":   status,
		},
	})
	return tx, nil
}

// Approve moves a pending transaction to approved and folds its signed
// amount into the account balance. The status flip and the balance
// write run in one Mongo transaction: a locked account rolls back the
// flip. A lost race against a concurrent decision reports ErrNotPending;
// a conflicting in-flight write is retried once.
func (s *Service) Approve(ctx context.Context, actor models.User, txID primitive.ObjectID) (*models.Transaction, error) {
	started := time.Now()

	tx, err := s.transactions.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	caps, err := s.capabilitiesFor(ctx, actor, tx.ProjectID)
	if err != nil {
		return nil, err
	}
	if !authz.HasCapability(caps, authz.CapApproveTransactions) {
		return nil, ErrPermissionDenied
	}
	if tx.IsTerminal() {
		return nil, ErrNotPending
	}

	amount, err := money.FromDecimal128(tx.Amount)
	if err != nil {
		return nil, err
	}
	delta := signedDelta(tx.Type, amount)

	err = s.approveOnce(ctx, actor, tx, delta)
	if errors.Is(err, ErrConcurrencyConflict) {
		s.metrics.IncrApprovalConflict()
		s.log.Warn("approval conflict, retrying once",
			zap.String("transaction_id", txID.Hex()))
		err = s.approveOnce(ctx, actor, tx, delta)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.IncrApprovalDecision(models.StatusApproved)
	s.metrics.IncrBalanceAdjustment(tx.Type)
	s.metrics.RecordOperationDuration("transaction_approve", time.Since(started))

	s.audit.Emit(ctx, audit.Event{
		Category: audit.CategoryLedger,
		Action:   audit.EventTransactionApproved,
		UserID:   &actor.ID,
		TargetID: &tx.ID,
		Success:  true,
		Details: map[string]string{
			"amount":   amount.String(),
			"currency": tx.Currency,
		},
	})

	tx.Status = models.StatusApproved
	tx.ApprovedBy = &actor.ID
	tx.BalanceApplied = true
	return tx, nil
}

func (s *Service) approveOnce(ctx context.Context, actor models.User, tx *models.Transaction, delta decimal.Decimal) error {
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		moved, err := s.transactions.MarkApproved(ctx, tx.ID, actor.ID)
		if err != nil {
			return err
		}
		if !moved {
			current, err := s.transactions.GetByID(ctx, tx.ID)
			if err != nil {
				return err
			}
			if current.IsTerminal() {
				return ErrNotPending
			}
			return ErrConcurrencyConflict
		}
		return s.accounts.AdjustBalance(ctx, tx.AccountID, delta, tx.ID)
	})
}

// Reject moves a pending transaction to rejected. The balance is never
// touched; only approved transactions ever reach it.
func (s *Service) Reject(ctx context.Context, actor models.User, txID primitive.ObjectID, reason string) (*models.Transaction, error) {
	reason = normalize.QueryParam(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	tx, err := s.transactions.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	caps, err := s.capabilitiesFor(ctx, actor, tx.ProjectID)
	if err != nil {
		return nil, err
	}
	if !authz.HasCapability(caps, authz.CapApproveTransactions) {
		return nil, ErrPermissionDenied
	}
	if tx.IsTerminal() {
		return nil, ErrNotPending
	}

	amount, err := money.FromDecimal128(tx.Amount)
	if err != nil {
		return nil, err
	}

	moved, err := s.transactions.MarkRejected(ctx, txID, actor.ID, reason)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrNotPending
	}

	s.metrics.IncrApprovalDecision(models.StatusRejected)

	s.audit.Emit(ctx, audit.Event{
		Category: audit.CategoryLedger,
		Action:   audit.EventTransactionRejected,
		UserID:   &actor.ID,
		TargetID: &tx.ID,
		Success:  true,
		Details: map[string]string{
			"amount":   amount.String(),
			"currency": tx.Currency,
			"reason":   reason,
		},
	})

	tx.Status = models.StatusRejected
	tx.RejectedBy = &actor.ID
	tx.RejectionReason = reason
	return tx, nil
}

// List is a capability-gated passthrough to the transaction store.
func (s *Service) List(ctx context.Context, actor models.User, filter transactionstore.Filter) ([]models.Transaction, error) {
	caps, err := s.capabilitiesFor(ctx, actor, filter.ProjectID)
	if err != nil {
		return nil, err
	}
	if !authz.HasCapability(caps, authz.CapViewTransactions) {
		return nil, ErrPermissionDenied
	}
	return s.transactions.List(ctx, filter)
}
