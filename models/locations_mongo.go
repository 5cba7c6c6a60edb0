package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoLocationRepo struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewMongoLocationRepository(col *mongo.Collection, timeout time.Duration) LocationRepository {
	return &mongoLocationRepo{col: col, timeout: timeout}
}

func (r *mongoLocationRepo) GetAll(ctx context.Context) ([]Location, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := findAll[Location](ctx, r.col, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find locations: %w", err)
	}
	return out, nil
}

func (r *mongoLocationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (Location, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var l Location
	err := decodeSingle(r.col.FindOne(ctx, bson.M{"_id": id}), &l, "find location")
	return l, err
}

func (r *mongoLocationRepo) Create(ctx context.Context, l *Location) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	l.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, l); err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (r *mongoLocationRepo) Update(ctx context.Context, l *Location) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": l.ID},
		bson.M{"$set": bson.M{"name": l.Name, "address": l.Address}},
		returnAfter)
	return decodeSingle(res, l, "update location")
}

func (r *mongoLocationRepo) Delete(ctx context.Context, id primitive.ObjectID) (Location, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var l Location
	err := decodeSingle(r.col.FindOneAndDelete(ctx, bson.M{"_id": id}), &l, "delete location")
	return l, err
}
