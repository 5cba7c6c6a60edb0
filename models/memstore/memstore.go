// Package memstore keeps every repository in process memory. It backs the
// HTTP tests and `serve --in-memory`; data is lost on exit.
package memstore

import (
	"bytes"
	"context"
	"slices"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventapi/models"
)

type Store struct {
	mu           sync.RWMutex
	categories   map[primitive.ObjectID]models.Category
	locations    map[primitive.ObjectID]models.Location
	events       map[primitive.ObjectID]models.Event
	participants map[primitive.ObjectID]models.Participant
	users        map[primitive.ObjectID]models.User
}

func New() *Store {
	return &Store{
		categories:   map[primitive.ObjectID]models.Category{},
		locations:    map[primitive.ObjectID]models.Location{},
		events:       map[primitive.ObjectID]models.Event{},
		participants: map[primitive.ObjectID]models.Participant{},
		users:        map[primitive.ObjectID]models.User{},
	}
}

func (s *Store) Repositories() models.Repositories {
	return models.Repositories{
		Categories:   categoryRepo{s},
		Locations:    locationRepo{s},
		Events:       eventRepo{s},
		Participants: participantRepo{s},
		Users:        userRepo{s},
	}
}

// values returns map values ordered by id, i.e. by insertion.
func values[T any](m map[primitive.ObjectID]T) []T {
	ids := make([]primitive.ObjectID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

/* -------------------- Categories -------------------- */

type categoryRepo struct{ s *Store }

func (r categoryRepo) GetAll(context.Context) ([]models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return values(r.s.categories), nil
}

func (r categoryRepo) GetByID(_ context.Context, id primitive.ObjectID) (models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return models.Category{}, models.ErrNotFound
	}
	return c, nil
}

func (r categoryRepo) Create(_ context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	r.s.categories[c.ID] = *c
	return nil
}

func (r categoryRepo) Update(_ context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return models.ErrNotFound
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r categoryRepo) Delete(_ context.Context, id primitive.ObjectID) (models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return models.Category{}, models.ErrNotFound
	}
	delete(r.s.categories, id)
	return c, nil
}

/* -------------------- Locations -------------------- */

type locationRepo struct{ s *Store }

func (r locationRepo) GetAll(context.Context) ([]models.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return values(r.s.locations), nil
}

func (r locationRepo) GetByID(_ context.Context, id primitive.ObjectID) (models.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.locations[id]
	if !ok {
		return models.Location{}, models.ErrNotFound
	}
	return l, nil
}

func (r locationRepo) Create(_ context.Context, l *models.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = primitive.NewObjectID()
	r.s.locations[l.ID] = *l
	return nil
}

func (r locationRepo) Update(_ context.Context, l *models.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.locations[l.ID]; !ok {
		return models.ErrNotFound
	}
	r.s.locations[l.ID] = *l
	return nil
}

func (r locationRepo) Delete(_ context.Context, id primitive.ObjectID) (models.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok {
		return models.Location{}, models.ErrNotFound
	}
	delete(r.s.locations, id)
	return l, nil
}

/* -------------------- Events -------------------- */

type eventRepo struct{ s *Store }

// detail must be called with the lock held.
func (r eventRepo) detail(e models.Event) models.EventDetail {
	d := models.EventDetail{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Date:         e.Date,
		Participants: []models.User{},
	}
	if l, ok := r.s.locations[e.Location]; ok {
		d.Location = &l
	}
	if c, ok := r.s.categories[e.Category]; ok {
		d.Category = &c
	}
	for _, uid := range e.Participants {
		if u, ok := r.s.users[uid]; ok {
			u.Password = ""
			d.Participants = append(d.Participants, u)
		}
	}
	return d
}

func (r eventRepo) GetAll(context.Context) ([]models.EventDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	events := values(r.s.events)
	out := make([]models.EventDetail, 0, len(events))
	for _, e := range events {
		out = append(out, r.detail(e))
	}
	return out, nil
}

func (r eventRepo) GetByID(_ context.Context, id primitive.ObjectID) (models.EventDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok {
		return models.EventDetail{}, models.ErrNotFound
	}
	return r.detail(e), nil
}

func (r eventRepo) Create(_ context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = primitive.NewObjectID()
	if e.Participants == nil {
		e.Participants = []primitive.ObjectID{}
	}
	e.Participants = slices.Clone(e.Participants)
	r.s.events[e.ID] = *e
	return nil
}

func (r eventRepo) Update(_ context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.events[e.ID]
	if !ok {
		return models.ErrNotFound
	}
	if e.Participants == nil {
		e.Participants = old.Participants
	}
	e.Participants = slices.Clone(e.Participants)
	r.s.events[e.ID] = *e
	return nil
}

func (r eventRepo) Delete(_ context.Context, id primitive.ObjectID) (models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	delete(r.s.events, id)
	return e, nil
}

func (r eventRepo) AddParticipant(_ context.Context, eventID, userID primitive.ObjectID) (models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	if slices.Contains(e.Participants, userID) {
		return models.Event{}, models.ErrAlreadyParticipating
	}
	e.Participants = append(slices.Clone(e.Participants), userID)
	r.s.events[eventID] = e
	return e, nil
}

func (r eventRepo) RemoveParticipant(_ context.Context, eventID, userID primitive.ObjectID) (models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	kept := make([]primitive.ObjectID, 0, len(e.Participants))
	for _, p := range e.Participants {
		if p != userID {
			kept = append(kept, p)
		}
	}
	e.Participants = kept
	r.s.events[eventID] = e
	return e, nil
}

/* -------------------- Participants -------------------- */

type participantRepo struct{ s *Store }

func (r participantRepo) detail(p models.Participant) models.ParticipantDetail {
	d := models.ParticipantDetail{ID: p.ID, Status: p.Status}
	if u, ok := r.s.users[p.User]; ok {
		u.Password = ""
		d.User = &u
	}
	if e, ok := r.s.events[p.Event]; ok {
		d.Event = &e
	}
	return d
}

func (r participantRepo) list(keep func(models.Participant) bool) []models.ParticipantDetail {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.ParticipantDetail{}
	for _, p := range values(r.s.participants) {
		if keep(p) {
			out = append(out, r.detail(p))
		}
	}
	return out
}

func (r participantRepo) GetAll(context.Context) ([]models.ParticipantDetail, error) {
	return r.list(func(models.Participant) bool { return true }), nil
}

func (r participantRepo) GetByEvent(_ context.Context, eventID primitive.ObjectID) ([]models.ParticipantDetail, error) {
	return r.list(func(p models.Participant) bool { return p.Event == eventID }), nil
}

func (r participantRepo) GetByID(_ context.Context, id primitive.ObjectID) (models.ParticipantDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.participants[id]
	if !ok {
		return models.ParticipantDetail{}, models.ErrNotFound
	}
	return r.detail(p), nil
}

func (r participantRepo) Create(_ context.Context, p *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = primitive.NewObjectID()
	if p.Status == "" {
		p.Status = models.StatusPending
	}
	r.s.participants[p.ID] = *p
	return nil
}

func (r participantRepo) Update(_ context.Context, p *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.participants[p.ID]; !ok {
		return models.ErrNotFound
	}
	if p.Status == "" {
		p.Status = models.StatusPending
	}
	r.s.participants[p.ID] = *p
	return nil
}

func (r participantRepo) Delete(_ context.Context, id primitive.ObjectID) (models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok {
		return models.Participant{}, models.ErrNotFound
	}
	delete(r.s.participants, id)
	return p, nil
}

/* -------------------- Users -------------------- */

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return models.ErrDuplicateEmail
		}
	}
	u.ID = primitive.NewObjectID()
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (r userRepo) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	u.Password = ""
	return u, nil
}
