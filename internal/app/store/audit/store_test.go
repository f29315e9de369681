package audit_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/store/audit"
	"github.com/quantrinhansu123/finance-up-sub001/internal/testutil"
)

func TestLog_FillsDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if err := store.Log(ctx, audit.Event{
		Category: audit.CategoryAuth,
		Action:   audit.EventLoginSuccess,
		UserID:   &userID,
		Success:  true,
	}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected Log to assign an ID")
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected Log to assign a timestamp")
	}
}

func TestQuery_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actorID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	targetID := primitive.NewObjectID()

	events := []audit.Event{
		{Category: audit.CategoryLedger, Action: audit.EventTransactionCreated, UserID: &actorID, TargetID: &targetID, Success: true},
		{Category: audit.CategoryLedger, Action: audit.EventTransactionApproved, UserID: &actorID, TargetID: &targetID, Success: true},
		{Category: audit.CategoryAuth, Action: audit.EventLoginSuccess, UserID: &otherID, Success: true},
	}
	for _, ev := range events {
		if err := store.Log(ctx, ev); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	got, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryLedger})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("category filter returned %d events, want 2", len(got))
	}

	got, err = store.GetByTarget(ctx, targetID, 10)
	if err != nil {
		t.Fatalf("GetByTarget failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("target filter returned %d events, want 2", len(got))
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{Action: audit.EventLoginSuccess})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 1 {
		t.Errorf("action count = %d, want 1", n)
	}
}

func TestQuery_TimeRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	now := time.Now()
	old := now.Add(-48 * time.Hour)

	if err := store.Log(ctx, audit.Event{
		Timestamp: old, Category: audit.CategoryAdmin,
		Action: audit.EventAccountCreated, UserID: &userID, Success: true,
	}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := store.Log(ctx, audit.Event{
		Timestamp: now, Category: audit.CategoryAdmin,
		Action: audit.EventAccountLocked, UserID: &userID, Success: true,
	}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	start := now.Add(-time.Hour)
	got, err := store.Query(ctx, audit.QueryFilter{UserID: &userID, StartTime: &start})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 1 || got[0].Action != audit.EventAccountLocked {
		t.Errorf("time filter returned %d events (want 1, the recent one)", len(got))
	}
}
