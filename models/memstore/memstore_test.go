package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventapi/models"
)

func TestEvents_PopulateAndParticipants(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	loc := models.Location{Name: "Main hall", Address: "Street 1"}
	require.NoError(t, repos.Locations.Create(ctx, &loc))
	cat := models.Category{Name: "Music"}
	require.NoError(t, repos.Categories.Create(ctx, &cat))
	user := models.User{Name: "Ann", Email: "ann@example.com", Password: "hash"}
	require.NoError(t, repos.Users.Create(ctx, &user))

	ev := models.Event{Title: "Concert", Description: "Loud", Date: time.Now(), Location: loc.ID, Category: cat.ID}
	require.NoError(t, repos.Events.Create(ctx, &ev))

	_, err := repos.Events.AddParticipant(ctx, ev.ID, user.ID)
	require.NoError(t, err)
	_, err = repos.Events.AddParticipant(ctx, ev.ID, user.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyParticipating)

	detail, err := repos.Events.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Location)
	assert.Equal(t, "Main hall", detail.Location.Name)
	require.NotNil(t, detail.Category)
	require.Len(t, detail.Participants, 1)
	assert.Empty(t, detail.Participants[0].Password)

	after, err := repos.Events.RemoveParticipant(ctx, ev.ID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Len(t, after.Participants, 1)

	after, err = repos.Events.RemoveParticipant(ctx, ev.ID, user.ID)
	require.NoError(t, err)
	assert.Empty(t, after.Participants)

	_, err = repos.Events.AddParticipant(ctx, primitive.NewObjectID(), user.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEvents_UpdateKeepsParticipantsWhenNil(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	uid := primitive.NewObjectID()
	ev := models.Event{Title: "Old title", Participants: []primitive.ObjectID{uid}}
	require.NoError(t, repos.Events.Create(ctx, &ev))

	upd := models.Event{ID: ev.ID, Title: "New title"}
	require.NoError(t, repos.Events.Update(ctx, &upd))

	deleted, err := repos.Events.Delete(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "New title", deleted.Title)
	assert.Equal(t, []primitive.ObjectID{uid}, deleted.Participants)

	err = repos.Events.Update(ctx, &upd)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUsers_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	require.NoError(t, repos.Users.Create(ctx, &models.User{Email: "a@b.com", Password: "h"}))
	err := repos.Users.Create(ctx, &models.User{Email: "a@b.com", Password: "h"})
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)

	u, err := repos.Users.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "h", u.Password)

	byID, err := repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, byID.Password)
}

func TestParticipants_DefaultStatusAndByEvent(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	evA, evB := primitive.NewObjectID(), primitive.NewObjectID()
	p := models.Participant{User: primitive.NewObjectID(), Event: evA}
	require.NoError(t, repos.Participants.Create(ctx, &p))
	assert.Equal(t, models.StatusPending, p.Status)
	require.NoError(t, repos.Participants.Create(ctx, &models.Participant{Event: evB, Status: models.StatusDeclined}))

	all, err := repos.Participants.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, p.ID, all[0].ID)

	byEvent, err := repos.Participants.GetByEvent(ctx, evA)
	require.NoError(t, err)
	require.Len(t, byEvent, 1)
	assert.Nil(t, byEvent[0].User)

	_, err = repos.Participants.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCategoriesAndLocations_NotFound(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	_, err := repos.Categories.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = repos.Locations.Delete(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)
	err = repos.Categories.Update(ctx, &models.Category{ID: primitive.NewObjectID()})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
