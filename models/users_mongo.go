package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserRepo struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewMongoUserRepository(col *mongo.Collection, timeout time.Duration) UserRepository {
	return &mongoUserRepo{col: col, timeout: timeout}
}

// Create stores u as given; the password must already be hashed. The unique
// index on email turns a concurrent duplicate into ErrDuplicateEmail.
func (r *mongoUserRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	u.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail includes the password hash for credential checks.
func (r *mongoUserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var u User
	err := decodeSingle(r.col.FindOne(ctx, bson.M{"email": email}), &u, "find user")
	return u, err
}

func (r *mongoUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var u User
	opts := options.FindOne().SetProjection(bson.M{"password": 0})
	err := decodeSingle(r.col.FindOne(ctx, bson.M{"_id": id}, opts), &u, "find user")
	return u, err
}
