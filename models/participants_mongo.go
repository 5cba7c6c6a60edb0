package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoParticipantRepo struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewMongoParticipantRepository(col *mongo.Collection, timeout time.Duration) ParticipantRepository {
	return &mongoParticipantRepo{col: col, timeout: timeout}
}

func participantDetailPipeline(match bson.M) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	p = append(p, lookupOne(UsersCollection, "user")...)
	p = append(p, lookupOne(EventsCollection, "event")...)
	p = append(p, bson.D{{Key: "$project", Value: bson.D{{Key: "user.password", Value: 0}}}})
	return p
}

func (r *mongoParticipantRepo) list(ctx context.Context, match bson.M) ([]ParticipantDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := aggregate[ParticipantDetail](ctx, r.col, participantDetailPipeline(match))
	if err != nil {
		return nil, fmt.Errorf("find participants: %w", err)
	}
	return out, nil
}

func (r *mongoParticipantRepo) GetAll(ctx context.Context) ([]ParticipantDetail, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoParticipantRepo) GetByEvent(ctx context.Context, eventID primitive.ObjectID) ([]ParticipantDetail, error) {
	return r.list(ctx, bson.M{"event": eventID})
}

func (r *mongoParticipantRepo) GetByID(ctx context.Context, id primitive.ObjectID) (ParticipantDetail, error) {
	out, err := r.list(ctx, bson.M{"_id": id})
	if err != nil {
		return ParticipantDetail{}, err
	}
	if len(out) == 0 {
		return ParticipantDetail{}, ErrNotFound
	}
	return out[0], nil
}

func (r *mongoParticipantRepo) Create(ctx context.Context, p *Participant) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	p.ID = primitive.NewObjectID()
	if p.Status == "" {
		p.Status = StatusPending
	}
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (r *mongoParticipantRepo) Update(ctx context.Context, p *Participant) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if p.Status == "" {
		p.Status = StatusPending
	}
	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": bson.M{"user": p.User, "event": p.Event, "status": p.Status}},
		returnAfter)
	return decodeSingle(res, p, "update participant")
}

func (r *mongoParticipantRepo) Delete(ctx context.Context, id primitive.ObjectID) (Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var p Participant
	err := decodeSingle(r.col.FindOneAndDelete(ctx, bson.M{"_id": id}), &p, "delete participant")
	return p, err
}
