package userstore_test

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	userstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/users"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/indexes"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
	"github.com/quantrinhansu123/finance-up-sub001/internal/testutil"
)

func TestCreate_NormalizesFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{
		FullName:    "  Trần Thị B  ",
		Email:       "Tran.B@Example.COM",
		FinanceRole: " Accountant ",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.Email != "tran.b@example.com" {
		t.Errorf("email = %q, want normalized", u.Email)
	}
	if u.FullName != "Trần Thị B" {
		t.Errorf("full name = %q, want trimmed", u.FullName)
	}
	if u.FinanceRole != "accountant" {
		t.Errorf("finance role = %q, want accountant", u.FinanceRole)
	}
	if u.Status != "active" {
		t.Errorf("status = %q, want active default", u.Status)
	}
}

func TestCreate_RejectsBadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{
		FullName:    "Bad Role",
		Email:       "bad@example.com",
		FinanceRole: "wizard",
	})
	if err == nil {
		t.Fatal("expected error for invalid finance role")
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	if err := indexes.EnsureAll(testutilCtx(t), db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{FullName: "A", Email: "dup@example.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{FullName: "B", Email: "DUP@example.com"})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestGetByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{FullName: "C", Email: "find.me@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByEmail(ctx, "Find.Me@Example.Com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got wrong user: %s", got.ID.Hex())
	}
}

func TestSetFinanceRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{FullName: "D", Email: "role@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetFinanceRole(ctx, u.ID, "Treasurer"); err != nil {
		t.Fatalf("SetFinanceRole failed: %v", err)
	}
	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FinanceRole != "treasurer" {
		t.Errorf("finance role = %q, want treasurer", got.FinanceRole)
	}

	if err := store.SetFinanceRole(ctx, u.ID, "wizard"); err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	other := fx.CreateUser(ctx, "Someone", "someone@example.com", "staff")
	_ = other

	_, err := store.GetByID(ctx, other.ID)
	if err != nil {
		t.Fatalf("GetByID existing failed: %v", err)
	}
	_, err = store.GetByEmail(ctx, "missing@example.com")
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := userstore.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !userstore.CheckPassword(hash, "s3cret-pass") {
		t.Error("expected password to verify")
	}
	if userstore.CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}

func testutilCtx(t *testing.T) context.Context {
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)
	return ctx
}
