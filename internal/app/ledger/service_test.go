package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/ledger"
	accountstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/accounts"
	projectstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/projects"
	transactionstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/transactions"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/money"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
	"github.com/quantrinhansu123/finance-up-sub001/internal/testutil"
)

func newService(db *mongo.Database) (*ledger.Service, *accountstore.Store) {
	log := zap.NewNop()
	accounts := accountstore.New(db, log)
	return ledger.NewService(db, accounts, transactionstore.New(db), projectstore.New(db), nil, nil, log), accounts
}

func accountBalance(t *testing.T, ctx context.Context, accounts *accountstore.Store, id primitive.ObjectID) decimal.Decimal {
	t.Helper()
	a, err := accounts.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	balance, err := money.FromDecimal128(a.Balance)
	if err != nil {
		t.Fatalf("FromDecimal128 failed: %v", err)
	}
	return balance
}

func TestCreate_IncomeAppliesImmediately(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, accounts := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := f.CreateUser(ctx, "An Accountant", "an@example.com", "accountant")
	account := f.CreateAccount(ctx, "Main VND", models.AccountBank, "VND", "0")

	tx, err := svc.Create(ctx, actor, ledger.CreateInput{
		Type:      models.TransactionIn,
		Amount:    decimal.RequireFromString("1000000"),
		Currency:  "VND",
		Source:    "Membership Dues",
		AccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if tx.Status != models.StatusApproved {
		t.Errorf("status = %q, want approved", tx.Status)
	}
	if tx.ApprovedBy == nil || *tx.ApprovedBy != actor.ID {
		t.Error("auto-approved transaction should record the creator as approver")
	}
	if got := accountBalance(t, ctx, accounts, account.ID); !got.Equal(decimal.RequireFromString("1000000")) {
		t.Errorf("balance = %s, want 1000000", got)
	}
}

func TestCreate_ExpenseAboveThresholdQueues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, accounts := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := f.CreateUser(ctx, "A Treasurer", "thu@example.com", "treasurer")
	account := f.CreateAccount(ctx, "Main VND", models.AccountCash, "VND", "1000000")

	tx, err := svc.Create(ctx, actor, ledger.CreateInput{
		Type:      models.TransactionOut,
		Amount:    decimal.RequireFromString("6000000"),
		Currency:  "VND",
		Category:  "equipment",
		AccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if tx.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", tx.Status)
	}
	if got := accountBalance(t, ctx, accounts, account.ID); !got.Equal(decimal.RequireFromString("1000000")) {
		t.Errorf("balance = %s, want unchanged 1000000", got)
	}
}

func TestCreate_SmallExpenseAutoApproved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, accounts := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := f.CreateUser(ctx, "A Staffer", "staff@example.com", "staff")
	account := f.CreateAccount(ctx, "Petty Cash", models.AccountCash, "VND", "500000")

	tx, err := svc.Create(ctx, actor, ledger.CreateInput{
		Type:      models.TransactionOut,
		Amount:    decimal.RequireFromString("200000"),
		Currency:  "VND",
		Category:  "supplies",
		AccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if tx.Status != models.StatusApproved {
		t.Errorf("status = %q, want approved", tx.Status)
	}
	if got := accountBalance(t, ctx, accounts, account.ID); !got.Equal(decimal.RequireFromString("300000")) {
		t.Errorf("balance = %s, want 300000", got)
	}
}

func TestCreate_InvalidInput(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, _ := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := f.CreateUser(ctx, "An Accountant", "an@example.com", "accountant")
	account := f.CreateAccount(ctx, "Main", models.AccountBank, "VND", "0")

	_, err := svc.Create(ctx, actor, ledger.CreateInput{
		Type:      models.TransactionIn,
		Amount:    decimal.Zero,
		Currency:  "VND",
		AccountID: account.ID,
	})
	if !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}

	_, err = svc.Create(ctx, actor, ledger.CreateInput{
		Type:      models.TransactionIn,
		Amount:    decimal.RequireFromString("-5"),
		Currency:  "VND",
		AccountID: account.ID,
	})
	if !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}

	_, err = svc.Create(ctx, actor, ledger.CreateInput{
		Type:      "transfer",
		Amount:    decimal.RequireFromString("5"),
		Currency:  "VND",
		AccountID: account.ID,
	})
	if !errors.Is(err, ledger.ErrInvalidType) {
		t.Errorf("bad type: got %v, want ErrInvalidType", err)
	}
}

func TestCreate_ProjectScopeDeniesNonMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, _ := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "owner@example.com", "manager")
	outsider := f.CreateUser(ctx, "Outsider", "out@example.com", "staff")
	project := f.CreateProject(ctx, "Expo 2026", owner.ID)
	account := f.CreateAccount(ctx, "Expo Cash", models.AccountCash, "VND", "0")

	_, err := svc.Create(ctx, outsider, ledger.CreateInput{
		Type:      models.TransactionIn,
		Amount:    decimal.RequireFromString("100000"),
		Currency:  "VND",
		AccountID: account.ID,
		ProjectID: &project.ID,
	})
	if !errors.Is(err, ledger.ErrPermissionDenied) {
		t.Errorf("got %v, want ErrPermissionDenied", err)
	}
}

func TestCreate_LockedAndRestrictedAccounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, accounts := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := f.CreateUser(ctx, "An Accountant", "an@example.com", "accountant")

	locked := f.CreateAccount(ctx, "Frozen", models.AccountBank, "VND", "0")
	if err := accounts.SetLocked(ctx, locked.ID, true); err != nil {
		t.Fatalf("SetLocked failed: %v", err)
	}
	_, err := svc.Create(ctx, actor, ledger.CreateInput{
		Type:      models.TransactionIn,
		Amount:    decimal.RequireFromString("100"),
		Currency:  "VND",
		AccountID: locked.ID,
	})
	if !errors.Is(err, accountstore.ErrAccountLocked) {
		t.Errorf("locked account: got %v, want ErrAccountLocked", err)
	}

	restricted := f.CreateAccount(ctx, "VND Only", models.AccountBank, "VND", "0")
	if err := accounts.Update(ctx, restricted.ID, "VND Only", true, nil); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	_, err = svc.Create(ctx, actor, ledger.CreateInput{
		Type:      models.TransactionOut,
		Amount:    decimal.RequireFromString("10"),
		Currency:  "USD",
		Category:  "fees",
		AccountID: restricted.ID,
	})
	if !errors.Is(err, accountstore.ErrCurrencyMismatch) {
		t.Errorf("currency mismatch: got %v, want ErrCurrencyMismatch", err)
	}
}

func TestApprove_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, accounts := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := f.CreateUser(ctx, "A Staffer", "staff@example.com", "staff")
	approver := f.CreateUser(ctx, "A Treasurer", "thu@example.com", "treasurer")
	account := f.CreateAccount(ctx, "Main VND", models.AccountBank, "VND", "1000000")

	pending, err := svc.Create(ctx, creator, ledger.CreateInput{
		Type:      models.TransactionOut,
		Amount:    decimal.RequireFromString("6000000"),
		Currency:  "VND",
		Category:  "equipment",
		AccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if pending.Status != models.StatusPending {
		t.Fatalf("status = %q, want pending", pending.Status)
	}

	approved, err := svc.Approve(ctx, approver, pending.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Status != models.StatusApproved {
		t.Errorf("status = %q, want approved", approved.Status)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != approver.ID {
		t.Error("approver identity not recorded")
	}
	// Overdrafts are allowed; the balance goes negative.
	if got := accountBalance(t, ctx, accounts, account.ID); !got.Equal(decimal.RequireFromString("-5000000")) {
		t.Errorf("balance = %s, want -5000000", got)
	}

	if _, err := svc.Approve(ctx, approver, pending.ID); !errors.Is(err, ledger.ErrNotPending) {
		t.Errorf("second approve: got %v, want ErrNotPending", err)
	}
	if _, err := svc.Reject(ctx, approver, pending.ID, "changed my mind"); !errors.Is(err, ledger.ErrNotPending) {
		t.Errorf("reject after approve: got %v, want ErrNotPending", err)
	}
	if got := accountBalance(t, ctx, accounts, account.ID); !got.Equal(decimal.RequireFromString("-5000000")) {
		t.Errorf("balance = %s, want unchanged -5000000", got)
	}
}

func TestApprove_PermissionDenied(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, _ := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	staff := f.CreateUser(ctx, "A Staffer", "staff@example.com", "staff")
	account := f.CreateAccount(ctx, "Main", models.AccountBank, "VND", "0")
	tx := f.CreateTransaction(ctx, account.ID, models.TransactionOut, "6000000", "VND", models.StatusPending)

	if _, err := svc.Approve(ctx, staff, tx.ID); !errors.Is(err, ledger.ErrPermissionDenied) {
		t.Errorf("got %v, want ErrPermissionDenied", err)
	}
}

func TestApprove_LockedAccountBlocksBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, accounts := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	approver := f.CreateUser(ctx, "A Treasurer", "thu@example.com", "treasurer")
	account := f.CreateAccount(ctx, "Main", models.AccountBank, "VND", "100000")
	tx := f.CreateTransaction(ctx, account.ID, models.TransactionOut, "6000000", "VND", models.StatusPending)

	if err := accounts.SetLocked(ctx, account.ID, true); err != nil {
		t.Fatalf("SetLocked failed: %v", err)
	}

	if _, err := svc.Approve(ctx, approver, tx.ID); !errors.Is(err, accountstore.ErrAccountLocked) {
		t.Errorf("got %v, want ErrAccountLocked", err)
	}
	if got := accountBalance(t, ctx, accounts, account.ID); !got.Equal(decimal.RequireFromString("100000")) {
		t.Errorf("balance = %s, want unchanged 100000", got)
	}
}

func TestReject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, accounts := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	approver := f.CreateUser(ctx, "An Accountant", "an@example.com", "accountant")
	account := f.CreateAccount(ctx, "Main", models.AccountBank, "VND", "1000000")
	tx := f.CreateTransaction(ctx, account.ID, models.TransactionOut, "200000", "VND", models.StatusPending)

	if _, err := svc.Reject(ctx, approver, tx.ID, "   "); !errors.Is(err, ledger.ErrReasonRequired) {
		t.Errorf("blank reason: got %v, want ErrReasonRequired", err)
	}

	rejected, err := svc.Reject(ctx, approver, tx.ID, "no receipt attached")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if rejected.Status != models.StatusRejected {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}
	if rejected.RejectionReason != "no receipt attached" {
		t.Errorf("reason = %q", rejected.RejectionReason)
	}
	if got := accountBalance(t, ctx, accounts, account.ID); !got.Equal(decimal.RequireFromString("1000000")) {
		t.Errorf("balance = %s, want unchanged 1000000", got)
	}

	if _, err := svc.Approve(ctx, approver, tx.ID); !errors.Is(err, ledger.ErrNotPending) {
		t.Errorf("approve after reject: got %v, want ErrNotPending", err)
	}
}

func TestList_RequiresViewCapability(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, _ := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "owner@example.com", "manager")
	outsider := f.CreateUser(ctx, "Outsider", "out@example.com", "staff")
	project := f.CreateProject(ctx, "Expo 2026", owner.ID)

	if _, err := svc.List(ctx, outsider, transactionstore.Filter{ProjectID: &project.ID}); !errors.Is(err, ledger.ErrPermissionDenied) {
		t.Errorf("got %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.List(ctx, owner, transactionstore.Filter{ProjectID: &project.ID}); err != nil {
		t.Errorf("member list failed: %v", err)
	}
}

func TestCreate_AccountProjectPinsScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, _ := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "owner@example.com", "manager")
	member := f.CreateUser(ctx, "Member", "member@example.com", "staff")
	outsider := f.CreateUser(ctx, "Outsider", "out@example.com", "staff")
	project := f.CreateProject(ctx, "Expo 2026", owner.ID, member.ID)
	account := f.CreateAccount(ctx, "Expo Cash", models.AccountCash, "VND", "0")
	if _, err := db.Collection("accounts").UpdateByID(ctx, account.ID,
		bson.M{"$set": bson.M{"project_id": project.ID}}); err != nil {
		t.Fatalf("failed to scope account to project: %v", err)
	}

	// A non-member cannot route around the project gate by leaving the
	// project off the request: the account's project decides the scope.
	_, err := svc.Create(ctx, outsider, ledger.CreateInput{
		Type:      models.TransactionOut,
		Amount:    decimal.RequireFromString("100000"),
		Currency:  "VND",
		Category:  "supplies",
		AccountID: account.ID,
	})
	if !errors.Is(err, ledger.ErrPermissionDenied) {
		t.Errorf("non-member without project_id: got %v, want ErrPermissionDenied", err)
	}

	// Naming a different project than the account's is rejected outright.
	other := f.CreateProject(ctx, "Gala 2026", owner.ID, outsider.ID)
	_, err = svc.Create(ctx, outsider, ledger.CreateInput{
		Type:      models.TransactionOut,
		Amount:    decimal.RequireFromString("100000"),
		Currency:  "VND",
		Category:  "supplies",
		AccountID: account.ID,
		ProjectID: &other.ID,
	})
	if !errors.Is(err, ledger.ErrProjectMismatch) {
		t.Errorf("mismatched project: got %v, want ErrProjectMismatch", err)
	}

	// A member creating without a project reference still succeeds, and
	// the stored transaction carries the account's project.
	tx, err := svc.Create(ctx, member, ledger.CreateInput{
		Type:      models.TransactionOut,
		Amount:    decimal.RequireFromString("100000"),
		Currency:  "VND",
		Category:  "supplies",
		AccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("member create failed: %v", err)
	}
	if tx.ProjectID == nil || *tx.ProjectID != project.ID {
		t.Error("transaction should carry the account's project")
	}
}

func TestApprove_ConcurrentApproversSerialize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, accounts := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	approver := f.CreateUser(ctx, "A Treasurer", "thu@example.com", "treasurer")
	account := f.CreateAccount(ctx, "Main VND", models.AccountBank, "VND", "10000000")
	tx := f.CreateTransaction(ctx, account.ID, models.TransactionOut, "6000000", "VND", models.StatusPending)

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Approve(ctx, approver, tx.ID)
		}(i)
	}
	wg.Wait()

	var wins int
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ledger.ErrNotPending), errors.Is(err, ledger.ErrConcurrencyConflict):
		default:
			t.Errorf("racer %d: unexpected error %v", i, err)
		}
	}
	if wins != 1 {
		t.Errorf("wins = %d, want exactly one successful approval", wins)
	}

	// The delta landed exactly once regardless of how the race resolved.
	if got := accountBalance(t, ctx, accounts, account.ID); !got.Equal(decimal.RequireFromString("4000000")) {
		t.Errorf("balance = %s, want 4000000", got)
	}
	final, err := transactionstore.New(db).GetByID(ctx, tx.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if final.Status != models.StatusApproved || !final.BalanceApplied {
		t.Errorf("final status = %q applied = %v, want approved/applied", final.Status, final.BalanceApplied)
	}
}

func TestCreate_PermissionCheckedBeforeAccountState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	svc, accounts := newService(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := f.CreateUser(ctx, "Owner", "owner@example.com", "manager")
	outsider := f.CreateUser(ctx, "Outsider", "out@example.com", "staff")
	project := f.CreateProject(ctx, "Expo 2026", owner.ID)
	account := f.CreateAccount(ctx, "Expo Cash", models.AccountCash, "VND", "0")
	if _, err := db.Collection("accounts").UpdateByID(ctx, account.ID,
		bson.M{"$set": bson.M{"project_id": project.ID}}); err != nil {
		t.Fatalf("failed to scope account to project: %v", err)
	}
	if err := accounts.SetLocked(ctx, account.ID, true); err != nil {
		t.Fatalf("SetLocked failed: %v", err)
	}

	// An unauthorized caller learns nothing about the account's state:
	// the denial comes back, not the lock.
	_, err := svc.Create(ctx, outsider, ledger.CreateInput{
		Type:      models.TransactionIn,
		Amount:    decimal.RequireFromString("100000"),
		Currency:  "VND",
		AccountID: account.ID,
	})
	if !errors.Is(err, ledger.ErrPermissionDenied) {
		t.Errorf("got %v, want ErrPermissionDenied before any account-state error", err)
	}
}
