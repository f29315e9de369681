// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/normalize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateProject = errors.New("a project with this name already exists")
	ErrBadStatus        = errors.New(`status must be "active"|"paused"|"completed"`)
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

func validStatus(s string) bool {
	switch s {
	case models.ProjectActive, models.ProjectPaused, models.ProjectCompleted:
		return true
	}
	return false
}

// Create inserts a new project. The creator is always a member.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	p.ID = primitive.NewObjectID()
	p.Name = normalize.Name(p.Name)
	p.NameCI = text.Fold(p.Name)
	if p.Status == "" {
		p.Status = models.ProjectActive
	}
	p.Status = normalize.Status(p.Status)
	if !validStatus(p.Status) {
		return models.Project{}, ErrBadStatus
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Project{}, ErrDuplicateProject
		}
		return models.Project{}, err
	}
	return p, nil
}

// GetByID loads a project by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListForUser returns projects the user created or belongs to, sorted by
// folded name.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	filter := bson.M{"$or": []bson.M{
		{"created_by": userID},
		{"member_ids": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ListAll returns every project, for admin screens.
func (s *Store) ListAll(ctx context.Context) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Update modifies a project's mutable fields and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p models.Project) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if p.Name != "" {
		set["name"] = normalize.Name(p.Name)
		set["name_ci"] = text.Fold(p.Name)
	}
	if p.Description != "" {
		set["description"] = p.Description
	}
	if p.Status != "" {
		status := normalize.Status(p.Status)
		if !validStatus(status) {
			return ErrBadStatus
		}
		set["status"] = status
	}
	if p.Currency != "" {
		set["currency"] = normalize.Currency(p.Currency)
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateProject
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddMember adds a user to the project's member list. Adding an existing
// member is a no-op.
func (s *Store) AddMember(ctx context.Context, projectID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, projectID, bson.M{
		"$addToSet": bson.M{"member_ids": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveMember removes a user from the member list and clears any
// per-project role override.
func (s *Store) RemoveMember(ctx context.Context, projectID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, projectID, bson.M{
		"$pull":  bson.M{"member_ids": userID},
		"$unset": bson.M{"member_roles." + userID.Hex(): ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetMemberRole sets a per-project role override for a member.
func (s *Store) SetMemberRole(ctx context.Context, projectID, userID primitive.ObjectID, role string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": projectID, "member_ids": userID},
		bson.M{"$set": bson.M{
			"member_roles." + userID.Hex(): normalize.Role(role),
			"updated_at":                   time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a project by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
