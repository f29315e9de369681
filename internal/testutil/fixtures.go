package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// Dec128 parses a decimal string into its storage form, failing the test
// on bad input.
func (f *Fixtures) Dec128(s string) primitive.Decimal128 {
	f.t.Helper()
	d, err := primitive.ParseDecimal128(s)
	if err != nil {
		f.t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

// CreateUser creates a test user with the given name, email and finance role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:          primitive.NewObjectID(),
		FullName:    fullName,
		FullNameCI:  text.Fold(fullName),
		Email:       email,
		FinanceRole: role,
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateUserWithTitle creates a test user that has only a legacy job
// title, no assigned finance role.
func (f *Fixtures) CreateUserWithTitle(ctx context.Context, fullName, email, title string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		Title:      title,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateProject creates a test project owned by createdBy with the given
// members.
func (f *Fixtures) CreateProject(ctx context.Context, name string, createdBy primitive.ObjectID, memberIDs ...primitive.ObjectID) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	project := models.Project{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Status:    models.ProjectActive,
		CreatedBy: createdBy,
		MemberIDs: memberIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, project); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

// CreateAccount creates a test account with the given balance (a decimal
// literal such as "1500000.50").
func (f *Fixtures) CreateAccount(ctx context.Context, name, accountType, currency, balance string) models.Account {
	f.t.Helper()

	now := time.Now().UTC()
	account := models.Account{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		Type:           accountType,
		Currency:       currency,
		Balance:        f.Dec128(balance),
		OpeningBalance: f.Dec128(balance),
		CreatedBy:      primitive.NewObjectID(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("accounts").InsertOne(ctx, account); err != nil {
		f.t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTransaction inserts a transaction document directly, bypassing
// the ledger service. Status and amounts are taken as given.
func (f *Fixtures) CreateTransaction(ctx context.Context, accountID primitive.ObjectID, txType, amount, currency, status string) models.Transaction {
	f.t.Helper()

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		f.t.Fatalf("bad amount %q: %v", amount, err)
	}
	amt128, err := money.ToDecimal128(amt)
	if err != nil {
		f.t.Fatalf("convert amount: %v", err)
	}

	now := time.Now().UTC()
	tx := models.Transaction{
		ID:        primitive.NewObjectID(),
		Type:      txType,
		Amount:    amt128,
		Currency:  currency,
		Category:  "fixture",
		AccountID: accountID,
		Status:    status,
		CreatedBy: primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("transactions").InsertOne(ctx, tx); err != nil {
		f.t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateFundExpense inserts an expense transaction tagged with a fund,
// bypassing the ledger service.
func (f *Fixtures) CreateFundExpense(ctx context.Context, accountID, fundID primitive.ObjectID, amount, status string) models.Transaction {
	f.t.Helper()

	tx := f.CreateTransaction(ctx, accountID, models.TransactionOut, amount, "VND", status)
	if _, err := f.db.Collection("transactions").UpdateByID(ctx, tx.ID,
		bson.M{"$set": bson.M{"fund_id": fundID}}); err != nil {
		f.t.Fatalf("failed to tag transaction with fund: %v", err)
	}
	tx.FundID = &fundID
	return tx
}

// CreateFund creates a test fund with the given target budget.
func (f *Fixtures) CreateFund(ctx context.Context, name, targetBudget, currency string) models.Fund {
	f.t.Helper()

	now := time.Now().UTC()
	fund := models.Fund{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		TargetBudget: f.Dec128(targetBudget),
		Currency:     currency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("funds").InsertOne(ctx, fund); err != nil {
		f.t.Fatalf("failed to create test fund: %v", err)
	}
	return fund
}

// CreateRevenue creates a test revenue source.
func (f *Fixtures) CreateRevenue(ctx context.Context, name string, keywords ...string) models.Revenue {
	f.t.Helper()

	now := time.Now().UTC()
	rev := models.Revenue{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Keywords:  keywords,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("revenues").InsertOne(ctx, rev); err != nil {
		f.t.Fatalf("failed to create test revenue source: %v", err)
	}
	return rev
}
