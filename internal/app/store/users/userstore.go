// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/authz"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/normalize"
	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/search"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	ErrBadRole        = errors.New(`finance role must be "admin"|"accountant"|"treasurer"|"manager"|"staff"|"none"`)
	ErrBadStatus      = errors.New(`status must be "active"|"disabled"`)
)

var validRoles = map[string]struct{}{
	"":                   {},
	"none":               {},
	authz.RoleAdmin:      {},
	authz.RoleAccountant: {},
	authz.RoleTreasurer:  {},
	authz.RoleManager:    {},
	authz.RoleStaff:      {},
}

// HashPassword returns the bcrypt hash to store for a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the
// stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.FinanceRole = normalize.Role(u.FinanceRole)
	u.Title = normalize.Name(u.Title)
	if u.Status == "" {
		u.Status = "active"
	}
	u.Status = normalize.Status(u.Status)

	if _, ok := validRoles[u.FinanceRole]; !ok {
		return models.User{}, ErrBadRole
	}
	if u.Status != "active" && u.Status != "disabled" {
		return models.User{}, ErrBadStatus
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// SetFinanceRole assigns (or clears, with "none") a user's finance role.
func (s *Store) SetFinanceRole(ctx context.Context, id primitive.ObjectID, role string) error {
	role = normalize.Role(role)
	if _, ok := validRoles[role]; !ok {
		return ErrBadRole
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"finance_role": role,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetPasswordHash replaces a user's stored password hash.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Search matches users by folded name substring, or by exact email
// when the query looks like an address. Status narrows to
// "active"/"disabled" when set.
func (s *Store) Search(ctx context.Context, query, status string, limit int64) ([]models.User, error) {
	if limit <= 0 {
		limit = 200
	}
	status = normalize.Status(status)
	if status != "" && status != "active" && status != "disabled" {
		return nil, ErrBadStatus
	}

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if query != "" {
		if strings.Contains(query, "@") {
			filter["email"] = normalize.Email(query)
		} else {
			filter["full_name_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(query))}
		}
	}

	sort := bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}
	if search.EmailPivotOK(query, status) {
		sort = bson.D{{Key: "email", Value: 1}, {Key: "_id", Value: 1}}
	}
	opts := options.Find().SetSort(sort).SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// List returns active users sorted by folded name.
func (s *Store) List(ctx context.Context, limit int64) ([]models.User, error) {
	if limit <= 0 {
		limit = 200
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"status": "active"}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
