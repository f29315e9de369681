package projectstore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	projectstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/projects"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/indexes"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
	"github.com/quantrinhansu123/finance-up-sub001/internal/testutil"
)

func TestCreate_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := primitive.NewObjectID()
	p, err := store.Create(ctx, models.Project{
		Name:      "  Website Relaunch  ",
		CreatedBy: creator,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Name != "Website Relaunch" {
		t.Errorf("name = %q, want trimmed", p.Name)
	}
	if p.Status != models.ProjectActive {
		t.Errorf("status = %q, want active default", p.Status)
	}
	if !p.IsMember(creator) {
		t.Error("creator should count as a member")
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := projectstore.New(db)

	if _, err := store.Create(ctx, models.Project{Name: "Expo 2026", CreatedBy: primitive.NewObjectID()}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Project{Name: "EXPO 2026", CreatedBy: primitive.NewObjectID()})
	if !errors.Is(err, projectstore.ErrDuplicateProject) {
		t.Errorf("expected ErrDuplicateProject, got %v", err)
	}
}

func TestMembers_AddRemoveRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, models.Project{Name: "Field Trip", CreatedBy: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	member := primitive.NewObjectID()
	if err := store.AddMember(ctx, p.ID, member); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	// Adding twice is a no-op, not an error.
	if err := store.AddMember(ctx, p.ID, member); err != nil {
		t.Fatalf("second AddMember failed: %v", err)
	}

	if err := store.SetMemberRole(ctx, p.ID, member, "Treasurer"); err != nil {
		t.Fatalf("SetMemberRole failed: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.MemberIDs) != 1 {
		t.Fatalf("member_ids has %d entries, want 1", len(got.MemberIDs))
	}
	if got.MemberRoles[member.Hex()] != "treasurer" {
		t.Errorf("member role = %q, want treasurer", got.MemberRoles[member.Hex()])
	}

	if err := store.RemoveMember(ctx, p.ID, member); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	got, err = store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.MemberIDs) != 0 {
		t.Errorf("member_ids has %d entries after removal, want 0", len(got.MemberIDs))
	}
	if _, ok := got.MemberRoles[member.Hex()]; ok {
		t.Error("member role override should be cleared on removal")
	}
}

func TestSetMemberRole_NonMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, models.Project{Name: "Gala", CreatedBy: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err = store.SetMemberRole(ctx, p.ID, primitive.NewObjectID(), "staff")
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for non-member, got %v", err)
	}
}

func TestListForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	if _, err := store.Create(ctx, models.Project{Name: "Owned", CreatedBy: owner}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	p2, err := store.Create(ctx, models.Project{Name: "Joined", CreatedBy: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.AddMember(ctx, p2.ID, member); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	got, err := store.ListForUser(ctx, owner)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Owned" {
		t.Errorf("owner sees %d projects, want only Owned", len(got))
	}

	got, err = store.ListForUser(ctx, member)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Joined" {
		t.Errorf("member sees %d projects, want only Joined", len(got))
	}

	got, err = store.ListForUser(ctx, stranger)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("stranger sees %d projects, want 0", len(got))
	}
}

func TestUpdate_Status(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, models.Project{Name: "Wrap Up", CreatedBy: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Update(ctx, p.ID, models.Project{Status: "completed"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.ProjectCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}

	if err := store.Update(ctx, p.ID, models.Project{Status: "bogus"}); err == nil {
		t.Error("expected error for invalid status")
	}
}
