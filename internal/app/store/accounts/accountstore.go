// internal/app/store/accounts/accountstore.go
package accountstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/normalize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/txn"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

var (
	ErrDuplicateAccount = errors.New("an account with this name already exists")
	ErrAccountLocked    = errors.New("account is locked")
	ErrAlreadyApplied   = errors.New("transaction balance already applied")
	ErrHasTransactions  = errors.New("account has transactions")
	ErrNonZeroBalance   = errors.New("account balance is not zero")
	ErrCurrencyMismatch = errors.New("transaction currency does not match restricted account")
	ErrCategoryBlocked  = errors.New("category is not allowed on this account")
	ErrBadType          = errors.New(`account type must be "bank"|"cash"|"e-wallet"`)
)

// Store manages account documents. It holds the database handle as well,
// because account creation and balance application span the accounts and
// transactions collections.
type Store struct {
	db           *mongo.Database
	accounts     *mongo.Collection
	transactions *mongo.Collection
	log          *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{
		db:           db,
		accounts:     db.Collection("accounts"),
		transactions: db.Collection("transactions"),
		log:          log,
	}
}

func validType(t string) bool {
	switch t {
	case models.AccountBank, models.AccountCash, models.AccountEWallet:
		return true
	}
	return false
}

// Create inserts a new account. A nonzero opening balance is recorded as
// an already-approved income transaction so the books explain where the
// money came from; the account and its seed transaction commit together.
func (s *Store) Create(ctx context.Context, a models.Account, openingBalance decimal.Decimal) (models.Account, error) {
	a.ID = primitive.NewObjectID()
	a.Name = normalize.Name(a.Name)
	a.NameCI = text.Fold(a.Name)
	a.Type = normalize.Status(a.Type)
	a.Currency = normalize.Currency(a.Currency)
	if !validType(a.Type) {
		return models.Account{}, ErrBadType
	}
	if openingBalance.IsNegative() {
		return models.Account{}, errors.New("opening balance cannot be negative")
	}

	bal128, err := money.ToDecimal128(openingBalance)
	if err != nil {
		return models.Account{}, err
	}
	a.Balance = bal128
	a.OpeningBalance = bal128

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if _, err := s.accounts.InsertOne(ctx, a); err != nil {
			return err
		}
		if openingBalance.IsZero() {
			return nil
		}
		seed := models.Transaction{
			ID:             primitive.NewObjectID(),
			Type:           models.TransactionIn,
			Amount:         bal128,
			Currency:       a.Currency,
			Category:       "opening_balance",
			Source:         "opening balance",
			AccountID:      a.ID,
			Status:         models.StatusApproved,
			BalanceApplied: true,
			CreatedBy:      a.CreatedBy,
			ApprovedBy:     &a.CreatedBy,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		_, err := s.transactions.InsertOne(ctx, seed)
		return err
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Account{}, ErrDuplicateAccount
		}
		return models.Account{}, err
	}
	return a, nil
}

// GetByID loads an account by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	var a models.Account
	if err := s.accounts.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns accounts sorted by folded name, optionally filtered by type.
func (s *Store) List(ctx context.Context, accountType string) ([]models.Account, error) {
	filter := bson.M{}
	if accountType != "" {
		filter["type"] = normalize.Status(accountType)
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.accounts.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var accounts []models.Account
	if err := cur.All(ctx, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Update modifies an account's name and restriction settings.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name string, restrictCurrency bool, allowedCategories []string) error {
	set := bson.M{
		"restrict_currency":  restrictCurrency,
		"allowed_categories": allowedCategories,
		"updated_at":         time.Now().UTC(),
	}
	if name != "" {
		set["name"] = normalize.Name(name)
		set["name_ci"] = text.Fold(name)
	}
	res, err := s.accounts.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateAccount
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetLocked locks or unlocks an account. A locked account rejects new
// transactions and balance adjustments until unlocked.
func (s *Store) SetLocked(ctx context.Context, id primitive.ObjectID, locked bool) error {
	res, err := s.accounts.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"is_locked":  locked,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// HasTransactions reports whether any transaction references the account.
func (s *Store) HasTransactions(ctx context.Context, id primitive.ObjectID) (bool, error) {
	err := s.transactions.FindOne(ctx, bson.M{"account_id": id}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes an account. An account with any transaction history is
// never deletable, even if its balance is zero, so the history check runs
// first. A zero-history account must also hold a zero balance.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	has, err := s.HasTransactions(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return ErrHasTransactions
	}

	a, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	bal, err := money.FromDecimal128(a.Balance)
	if err != nil {
		return err
	}
	if !bal.IsZero() {
		return ErrNonZeroBalance
	}

	res, err := s.accounts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AdjustBalance applies a signed delta to an account's balance on behalf
// of causingTxID. The transaction document carries a balance_applied
// flag that is claimed first, so a retried or duplicated call adjusts
// the balance exactly once and returns ErrAlreadyApplied thereafter.
// Run inside txn.Run with the status transition that caused the delta.
func (s *Store) AdjustBalance(ctx context.Context, accountID primitive.ObjectID, delta decimal.Decimal, causingTxID primitive.ObjectID) error {
	claim, err := s.transactions.UpdateOne(ctx,
		bson.M{"_id": causingTxID, "balance_applied": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"balance_applied": true}})
	if err != nil {
		return err
	}
	if claim.MatchedCount == 0 {
		return ErrAlreadyApplied
	}

	delta128, err := money.ToDecimal128(delta)
	if err != nil {
		return err
	}
	res, err := s.accounts.UpdateOne(ctx,
		bson.M{"_id": accountID, "is_locked": bson.M{"$ne": true}},
		bson.M{"$inc": bson.M{"balance": delta128},
			"$set": bson.M{"updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the account is gone or it is locked; distinguish so the
		// caller can report accurately. The enclosing transaction rolls
		// back the claimed flag either way.
		err := s.accounts.FindOne(ctx, bson.M{"_id": accountID}).Err()
		if err == mongo.ErrNoDocuments {
			return mongo.ErrNoDocuments
		}
		if err != nil {
			return err
		}
		return ErrAccountLocked
	}
	return nil
}

// CheckTransactionAllowed applies account-level guards to a prospective
// transaction: lock state, currency restriction, and category allow-list
// (expenses only).
func CheckTransactionAllowed(a *models.Account, txType, currency, category string) error {
	if a.IsLocked {
		return ErrAccountLocked
	}
	if a.RestrictCurrency && normalize.Currency(currency) != a.Currency {
		return ErrCurrencyMismatch
	}
	if txType == models.TransactionOut && len(a.AllowedCategories) > 0 {
		allowed := false
		for _, c := range a.AllowedCategories {
			if text.Fold(c) == text.Fold(category) {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrCategoryBlocked
		}
	}
	return nil
}
