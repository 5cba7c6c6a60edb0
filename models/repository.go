package models

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrAlreadyParticipating = errors.New("user already participating")
)

const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusDeclined  = "declined"
)

type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name string             `bson:"name" json:"name"`
}

type Location struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name    string             `bson:"name" json:"name"`
	Address string             `bson:"address" json:"address"`
}

// Event is the stored form; Participants holds user ids.
type Event struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description" json:"description"`
	Date         time.Time            `bson:"date" json:"date"`
	Location     primitive.ObjectID   `bson:"location" json:"location"`
	Category     primitive.ObjectID   `bson:"category" json:"category"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
}

// EventDetail is an Event with location, category and participants resolved.
// A dangling reference resolves to null.
type EventDetail struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Date         time.Time          `bson:"date" json:"date"`
	Location     *Location          `bson:"location,omitempty" json:"location"`
	Category     *Category          `bson:"category,omitempty" json:"category"`
	Participants []User             `bson:"participants" json:"participants"`
}

type Participant struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User   primitive.ObjectID `bson:"user" json:"user"`
	Event  primitive.ObjectID `bson:"event" json:"event"`
	Status string             `bson:"status" json:"status"`
}

type ParticipantDetail struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	User   *User              `bson:"user,omitempty" json:"user"`
	Event  *Event             `bson:"event,omitempty" json:"event"`
	Status string             `bson:"status" json:"status"`
}

// User never serializes its password hash to JSON.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password,omitempty" json:"-"`
	IsAdmin  bool               `bson:"isAdmin" json:"isAdmin"`
}

// ===== Categories =====
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id primitive.ObjectID) (Category, error)
}

// ===== Locations =====
type LocationRepository interface {
	GetAll(ctx context.Context) ([]Location, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (Location, error)
	Create(ctx context.Context, l *Location) error
	Update(ctx context.Context, l *Location) error
	Delete(ctx context.Context, id primitive.ObjectID) (Location, error)
}

// ===== Events =====
type EventRepository interface {
	GetAll(ctx context.Context) ([]EventDetail, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (EventDetail, error)
	Create(ctx context.Context, e *Event) error
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id primitive.ObjectID) (Event, error)
	// AddParticipant fails with ErrAlreadyParticipating when userID is
	// already listed; RemoveParticipant is a no-op for absent ids.
	AddParticipant(ctx context.Context, eventID, userID primitive.ObjectID) (Event, error)
	RemoveParticipant(ctx context.Context, eventID, userID primitive.ObjectID) (Event, error)
}

// ===== Participants =====
type ParticipantRepository interface {
	GetAll(ctx context.Context) ([]ParticipantDetail, error)
	GetByEvent(ctx context.Context, eventID primitive.ObjectID) ([]ParticipantDetail, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (ParticipantDetail, error)
	Create(ctx context.Context, p *Participant) error
	Update(ctx context.Context, p *Participant) error
	Delete(ctx context.Context, id primitive.ObjectID) (Participant, error)
}

// ===== Users =====
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (User, error)
}

// Repositories bundles every store the HTTP layer needs.
type Repositories struct {
	Categories   CategoryRepository
	Locations    LocationRepository
	Events       EventRepository
	Participants ParticipantRepository
	Users        UserRepository
}
