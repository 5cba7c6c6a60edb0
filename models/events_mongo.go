package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoEventRepo struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewMongoEventRepository(col *mongo.Collection, timeout time.Duration) EventRepository {
	return &mongoEventRepo{col: col, timeout: timeout}
}

// eventDetailPipeline resolves location, category and participant users.
func eventDetailPipeline(match bson.M) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	p = append(p, lookupOne(LocationsCollection, "location")...)
	p = append(p, lookupOne(CategoriesCollection, "category")...)
	p = append(p,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "participants"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "participants"},
		}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "participants.password", Value: 0}}}},
	)
	return p
}

func (r *mongoEventRepo) GetAll(ctx context.Context) ([]EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := aggregate[EventDetail](ctx, r.col, eventDetailPipeline(bson.M{}))
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	for i := range out {
		normalizeDetail(&out[i])
	}
	return out, nil
}

func (r *mongoEventRepo) GetByID(ctx context.Context, id primitive.ObjectID) (EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := aggregate[EventDetail](ctx, r.col, eventDetailPipeline(bson.M{"_id": id}))
	if err != nil {
		return EventDetail{}, fmt.Errorf("find event: %w", err)
	}
	if len(out) == 0 {
		return EventDetail{}, ErrNotFound
	}
	normalizeDetail(&out[0])
	return out[0], nil
}

func (r *mongoEventRepo) Create(ctx context.Context, e *Event) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	e.ID = primitive.NewObjectID()
	if e.Participants == nil {
		e.Participants = []primitive.ObjectID{}
	}
	if _, err := r.col.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Update replaces the mutable fields. A nil Participants keeps the stored list.
func (r *mongoEventRepo) Update(ctx context.Context, e *Event) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{
		"title":       e.Title,
		"description": e.Description,
		"date":        e.Date,
		"location":    e.Location,
		"category":    e.Category,
	}
	if e.Participants != nil {
		set["participants"] = e.Participants
	}

	res := r.col.FindOneAndUpdate(ctx, bson.M{"_id": e.ID}, bson.M{"$set": set}, returnAfter)
	return decodeSingle(res, e, "update event")
}

func (r *mongoEventRepo) Delete(ctx context.Context, id primitive.ObjectID) (Event, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var e Event
	err := decodeSingle(r.col.FindOneAndDelete(ctx, bson.M{"_id": id}), &e, "delete event")
	return e, err
}

func (r *mongoEventRepo) AddParticipant(ctx context.Context, eventID, userID primitive.ObjectID) (Event, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// the $ne guard makes the duplicate check and the push one write
	var e Event
	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": eventID, "participants": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"participants": userID}},
		returnAfter)
	err := decodeSingle(res, &e, "add participant")
	if !errors.Is(err, ErrNotFound) {
		return e, err
	}

	n, cerr := r.col.CountDocuments(ctx, bson.M{"_id": eventID})
	if cerr != nil {
		return Event{}, fmt.Errorf("add participant: %w", cerr)
	}
	if n == 0 {
		return Event{}, ErrNotFound
	}
	return Event{}, ErrAlreadyParticipating
}

func (r *mongoEventRepo) RemoveParticipant(ctx context.Context, eventID, userID primitive.ObjectID) (Event, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var e Event
	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": eventID},
		bson.M{"$pull": bson.M{"participants": userID}},
		returnAfter)
	err := decodeSingle(res, &e, "remove participant")
	return e, err
}

func normalizeDetail(d *EventDetail) {
	if d.Participants == nil {
		d.Participants = []User{}
	}
}
