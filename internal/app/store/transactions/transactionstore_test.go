package transactionstore_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	transactionstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/transactions"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
	"github.com/quantrinhansu123/finance-up-sub001/internal/testutil"
)

func TestMarkApproved_OnlyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := transactionstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	accountID := primitive.NewObjectID()
	tx := fx.CreateTransaction(ctx, accountID, models.TransactionOut, "9000000", "VND", models.StatusPending)

	approver := primitive.NewObjectID()
	moved, err := store.MarkApproved(ctx, tx.ID, approver)
	if err != nil {
		t.Fatalf("MarkApproved failed: %v", err)
	}
	if !moved {
		t.Fatal("first MarkApproved should move the transaction")
	}

	// Second decider loses the race.
	moved, err = store.MarkApproved(ctx, tx.ID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("second MarkApproved failed: %v", err)
	}
	if moved {
		t.Error("second MarkApproved should not match")
	}

	got, err := store.GetByID(ctx, tx.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.StatusApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
	if got.ApprovedBy == nil || *got.ApprovedBy != approver {
		t.Error("approved_by should record the winning approver")
	}
	if !got.IsTerminal() {
		t.Error("approved transaction should be terminal")
	}
}

func TestMarkRejected_DoesNotTouchApproved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := transactionstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tx := fx.CreateTransaction(ctx, primitive.NewObjectID(), models.TransactionOut, "200", "USD", models.StatusApproved)

	moved, err := store.MarkRejected(ctx, tx.ID, primitive.NewObjectID(), "duplicate entry")
	if err != nil {
		t.Fatalf("MarkRejected failed: %v", err)
	}
	if moved {
		t.Error("MarkRejected must not match a non-pending transaction")
	}

	got, err := store.GetByID(ctx, tx.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.StatusApproved {
		t.Errorf("status = %q, terminal state must not change", got.Status)
	}
}

func TestList_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := transactionstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	acctA := primitive.NewObjectID()
	acctB := primitive.NewObjectID()
	fx.CreateTransaction(ctx, acctA, models.TransactionIn, "100", "USD", models.StatusApproved)
	fx.CreateTransaction(ctx, acctA, models.TransactionOut, "50", "USD", models.StatusPending)
	fx.CreateTransaction(ctx, acctB, models.TransactionOut, "70", "USD", models.StatusPending)

	got, err := store.List(ctx, transactionstore.Filter{AccountID: &acctA})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("account filter returned %d, want 2", len(got))
	}

	got, err = store.List(ctx, transactionstore.Filter{Status: models.StatusPending})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("status filter returned %d, want 2", len(got))
	}

	got, err = store.List(ctx, transactionstore.Filter{AccountID: &acctA, Type: models.TransactionOut})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("combined filter returned %d, want 1", len(got))
	}

	n, err := store.Count(ctx, transactionstore.Filter{Status: models.StatusPending})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestSumApprovedByAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := transactionstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	acct := primitive.NewObjectID()
	fx.CreateTransaction(ctx, acct, models.TransactionIn, "1000.50", "USD", models.StatusApproved)
	fx.CreateTransaction(ctx, acct, models.TransactionIn, "99.50", "USD", models.StatusApproved)
	fx.CreateTransaction(ctx, acct, models.TransactionOut, "300", "USD", models.StatusApproved)
	// Pending and rejected must not count.
	fx.CreateTransaction(ctx, acct, models.TransactionOut, "5000", "USD", models.StatusPending)
	fx.CreateTransaction(ctx, acct, models.TransactionIn, "5000", "USD", models.StatusRejected)

	in, out, err := store.SumApprovedByAccount(ctx, acct)
	if err != nil {
		t.Fatalf("SumApprovedByAccount failed: %v", err)
	}
	if !in.Equal(decimal.RequireFromString("1100")) {
		t.Errorf("in = %s, want 1100", in)
	}
	if !out.Equal(decimal.RequireFromString("300")) {
		t.Errorf("out = %s, want 300", out)
	}
}

func TestSumApprovedOutByFund(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := transactionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fundID := primitive.NewObjectID()
	otherFund := primitive.NewObjectID()
	acct := primitive.NewObjectID()

	insert := func(amount, status, txType string, fund primitive.ObjectID) {
		t.Helper()
		amt, err := primitive.ParseDecimal128(amount)
		if err != nil {
			t.Fatalf("bad amount: %v", err)
		}
		now := time.Now().UTC()
		_, err = db.Collection("transactions").InsertOne(ctx, models.Transaction{
			ID: primitive.NewObjectID(), Type: txType, Amount: amt, Currency: "VND",
			Category: "fixture", AccountID: acct, FundID: &fund, Status: status,
			CreatedBy: primitive.NewObjectID(), CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	insert("150000", models.StatusApproved, models.TransactionOut, fundID)
	insert("250000", models.StatusApproved, models.TransactionOut, fundID)
	insert("999999", models.StatusPending, models.TransactionOut, fundID)
	insert("888888", models.StatusApproved, models.TransactionIn, fundID)
	insert("777777", models.StatusApproved, models.TransactionOut, otherFund)

	total, err := store.SumApprovedOutByFund(ctx, fundID, nil, nil)
	if err != nil {
		t.Fatalf("SumApprovedOutByFund failed: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("400000")) {
		t.Errorf("total = %s, want 400000", total)
	}

	// Empty fund sums to zero, not an error.
	total, err = store.SumApprovedOutByFund(ctx, primitive.NewObjectID(), nil, nil)
	if err != nil {
		t.Fatalf("empty fund sum failed: %v", err)
	}
	if !total.IsZero() {
		t.Errorf("empty fund total = %s, want 0", total)
	}
}
