package models_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventapi/config"
	"eventapi/db"
	"eventapi/models"
)

// mongoRepos connects to MONGO_TEST_URI and hands out repositories over a
// throwaway database. Without the variable the test is skipped.
func mongoRepos(t *testing.T) models.Repositories {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()

	client, err := db.Connect(ctx, config.MongoConfig{URI: uri, Timeout: 5 * time.Second})
	require.NoError(t, err)
	database := client.Database("eventapi_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = database.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	require.NoError(t, db.EnsureIndexes(ctx, database))

	return models.NewMongoRepositories(database, 5*time.Second)
}

func TestMongo_EventPopulateAndParticipants(t *testing.T) {
	repos := mongoRepos(t)
	ctx := context.Background()

	loc := models.Location{Name: "Main hall", Address: "1 Long Street"}
	require.NoError(t, repos.Locations.Create(ctx, &loc))
	cat := models.Category{Name: "Concerts"}
	require.NoError(t, repos.Categories.Create(ctx, &cat))
	user := models.User{Name: "Ann", Email: "ann@example.com", Password: "hash"}
	require.NoError(t, repos.Users.Create(ctx, &user))

	date := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	ev := models.Event{Title: "Spring concert", Description: "Strings", Date: date, Location: loc.ID, Category: cat.ID}
	require.NoError(t, repos.Events.Create(ctx, &ev))

	joined, err := repos.Events.AddParticipant(ctx, ev.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{user.ID}, joined.Participants)

	_, err = repos.Events.AddParticipant(ctx, ev.ID, user.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyParticipating)
	_, err = repos.Events.AddParticipant(ctx, primitive.NewObjectID(), user.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	detail, err := repos.Events.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.True(t, date.Equal(detail.Date))
	require.NotNil(t, detail.Location)
	assert.Equal(t, "Main hall", detail.Location.Name)
	require.NotNil(t, detail.Category)
	assert.Equal(t, "Concerts", detail.Category.Name)
	require.Len(t, detail.Participants, 1)
	assert.Equal(t, "Ann", detail.Participants[0].Name)
	assert.Empty(t, detail.Participants[0].Password)

	left, err := repos.Events.RemoveParticipant(ctx, ev.ID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Len(t, left.Participants, 1)
	left, err = repos.Events.RemoveParticipant(ctx, ev.ID, user.ID)
	require.NoError(t, err)
	assert.Empty(t, left.Participants)

	// a dangling reference resolves to null
	_, err = repos.Locations.Delete(ctx, loc.ID)
	require.NoError(t, err)
	detail, err = repos.Events.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Location)
}

func TestMongo_UsersAndParticipants(t *testing.T) {
	repos := mongoRepos(t)
	ctx := context.Background()

	user := models.User{Name: "Ann", Email: "ann@example.com", Password: "hash"}
	require.NoError(t, repos.Users.Create(ctx, &user))
	dup := models.User{Name: "Other", Email: "ann@example.com", Password: "hash"}
	assert.ErrorIs(t, repos.Users.Create(ctx, &dup), models.ErrDuplicateEmail)

	byEmail, err := repos.Users.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", byEmail.Password)
	byID, err := repos.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, byID.Password)

	ev := models.Event{Title: "Spring concert", Description: "Strings", Date: time.Now().UTC()}
	require.NoError(t, repos.Events.Create(ctx, &ev))
	p := models.Participant{User: user.ID, Event: ev.ID}
	require.NoError(t, repos.Participants.Create(ctx, &p))
	assert.Equal(t, models.StatusPending, p.Status)

	list, err := repos.Participants.GetByEvent(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].User)
	assert.Empty(t, list[0].User.Password)
	require.NotNil(t, list[0].Event)
	assert.Equal(t, "Spring concert", list[0].Event.Title)

	_, err = repos.Participants.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
