package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/momocakes/commerce-api/internal/core/domain"
)

const usersCollection = "users"

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	FullName              string             `bson:"full_name"`
	Email                 string             `bson:"email"`
	PhoneNumber           string             `bson:"phone_number"`
	Address               string             `bson:"address"`
	Age                   int                `bson:"age"`
	PasswordHash          string             `bson:"password_hash"`
	Role                  string             `bson:"role"`
	RefreshToken          string             `bson:"refresh_token,omitempty"`
	AdditionalInformation string             `bson:"additional_information,omitempty"`
	CreatedAt             time.Time          `bson:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at"`
}

func (mu mongoUser) toDomain() domain.User {
	return domain.User{
		ID:                    mu.ID.Hex(),
		FullName:              mu.FullName,
		Email:                 mu.Email,
		PhoneNumber:           mu.PhoneNumber,
		Address:               mu.Address,
		Age:                   mu.Age,
		PasswordHash:          mu.PasswordHash,
		Role:                  mu.Role,
		RefreshToken:          mu.RefreshToken,
		AdditionalInformation: mu.AdditionalInformation,
		CreatedAt:             mu.CreatedAt,
		UpdatedAt:             mu.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		FullName:              user.FullName,
		Email:                 user.Email,
		PhoneNumber:           user.PhoneNumber,
		Address:               user.Address,
		Age:                   user.Age,
		PasswordHash:          user.PasswordHash,
		Role:                  user.Role,
		AdditionalInformation: user.AdditionalInformation,
		CreatedAt:             user.CreatedAt,
		UpdatedAt:             user.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateUserError(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

// duplicateUserError picks the conflict sentinel matching the violated index.
func duplicateUserError(err error) error {
	if strings.Contains(err.Error(), "phone_number") {
		return domain.ErrPhoneExists
	}
	return domain.ErrEmailExists
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"phone_number": phone})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// findOne returns (nil, nil) when no document matches.
func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	user := mu.toDomain()
	return &user, nil
}

func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"refresh_token": token,
		"updated_at":    time.Now().UTC(),
	}}
	if _, err := r.coll.UpdateByID(ctx, oid, update); err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByRole(ctx context.Context, role string) ([]domain.User, error) {
	return r.findAll(ctx, bson.M{"role": role})
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	return r.findAll(ctx, bson.M{})
}

// findAll lists users with the secret fields projected away.
func (r *UserRepository) findAll(ctx context.Context, filter bson.M) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"password_hash": 0, "refresh_token": 0})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// EnsureIndexes creates the unique indexes backing the email and phone
// uniqueness invariants.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "phone_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
