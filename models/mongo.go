package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CategoriesCollection   = "categories"
	LocationsCollection    = "locations"
	EventsCollection       = "events"
	ParticipantsCollection = "participants"
	UsersCollection        = "users"
)

const defaultTimeout = 5 * time.Second

// NewMongoRepositories wires every repository onto one database handle.
func NewMongoRepositories(db *mongo.Database, timeout time.Duration) Repositories {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return Repositories{
		Categories:   NewMongoCategoryRepository(db.Collection(CategoriesCollection), timeout),
		Locations:    NewMongoLocationRepository(db.Collection(LocationsCollection), timeout),
		Events:       NewMongoEventRepository(db.Collection(EventsCollection), timeout),
		Participants: NewMongoParticipantRepository(db.Collection(ParticipantsCollection), timeout),
		Users:        NewMongoUserRepository(db.Collection(UsersCollection), timeout),
	}
}

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

func findAll[T any](ctx context.Context, col *mongo.Collection, filter any) ([]T, error) {
	cur, err := col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func aggregate[T any](ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeSingle maps ErrNoDocuments to ErrNotFound.
func decodeSingle(res *mongo.SingleResult, v any, op string) error {
	if err := res.Decode(v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// lookupOne resolves a single reference field in place; a dangling
// reference leaves the field absent.
func lookupOne(from, field string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: from},
			{Key: "localField", Value: field},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: field},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + field},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}
