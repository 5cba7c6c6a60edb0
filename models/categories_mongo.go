package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoCategoryRepo struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewMongoCategoryRepository(col *mongo.Collection, timeout time.Duration) CategoryRepository {
	return &mongoCategoryRepo{col: col, timeout: timeout}
}

func (r *mongoCategoryRepo) GetAll(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := findAll[Category](ctx, r.col, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	return out, nil
}

func (r *mongoCategoryRepo) GetByID(ctx context.Context, id primitive.ObjectID) (Category, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var c Category
	err := decodeSingle(r.col.FindOne(ctx, bson.M{"_id": id}), &c, "find category")
	return c, err
}

func (r *mongoCategoryRepo) Create(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	c.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *mongoCategoryRepo) Update(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": c.ID},
		bson.M{"$set": bson.M{"name": c.Name}},
		returnAfter)
	return decodeSingle(res, c, "update category")
}

func (r *mongoCategoryRepo) Delete(ctx context.Context, id primitive.ObjectID) (Category, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var c Category
	err := decodeSingle(r.col.FindOneAndDelete(ctx, bson.M{"_id": id}), &c, "delete category")
	return c, err
}
