package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hexID = "64b7f0c2a1b2c3d4e5f60718"

func validEvent() Record {
	return Record{
		"title":       "Go meetup",
		"description": "Monthly gophers",
		"date":        "2026-11-01T18:00:00Z",
		"location":    hexID,
		"category":    hexID,
	}
}

func messageOf(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	return verr.Message
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(EventSchema, validEvent()))
	assert.NoError(t, Validate(CategorySchema, Record{"name": "Music"}))
	assert.NoError(t, Validate(LocationSchema, Record{"name": "Main hall", "address": "Street 1"}))
	assert.NoError(t, Validate(ParticipantSchema, Record{"user": hexID, "event": hexID}))
	assert.NoError(t, Validate(UserSchema, Record{"name": "A", "email": "a@b.com", "password": "x", "isAdmin": true}))
}

func TestValidate_FirstErrorMessages(t *testing.T) {
	cases := []struct {
		name   string
		schema Schema
		rec    Record
		want   string
	}{
		{"required", CategorySchema, Record{}, `"name" is required`},
		{"too short", CategorySchema, Record{"name": "abc"}, `"name" length must be at least 5 characters long`},
		{"too long", CategorySchema, Record{"name": strings.Repeat("a", 256)}, `"name" length must be less than or equal to 255 characters long`},
		{"not string", CategorySchema, Record{"name": 12.0}, `"name" must be a string`},
		{"empty", CategorySchema, Record{"name": ""}, `"name" is not allowed to be empty`},
		{"unknown key", CategorySchema, Record{"name": "Music", "color": "red"}, `"color" is not allowed`},
		{"address long", LocationSchema, Record{"name": "Main hall", "address": strings.Repeat("a", 1025)}, `"address" length must be less than or equal to 1024 characters long`},
		{"bad enum", ParticipantSchema, Record{"user": hexID, "event": hexID, "status": "maybe"}, `"status" must be one of [confirmed, pending, declined]`},
		{"bad object id", ParticipantSchema, Record{"user": "nope", "event": hexID}, `"user" with value "nope" fails to match the valid mongo id pattern`},
		{"bad email", UserSchema, Record{"name": "A", "email": "not-an-email", "password": "x"}, `"email" must be a valid email`},
		{"bad bool", UserSchema, Record{"name": "A", "email": "a@b.com", "password": "x", "isAdmin": "yes"}, `"isAdmin" must be a boolean`},
		{"auth short password", AuthSchema, Record{"email": "a@b.com", "password": "123"}, `"password" length must be at least 5 characters long`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, messageOf(t, Validate(tc.schema, tc.rec)))
		})
	}
}

func TestValidate_EventFields(t *testing.T) {
	rec := validEvent()
	rec["location"] = "zz" + hexID[2:]
	assert.Equal(t, `"location" must only contain hexadecimal characters`, messageOf(t, Validate(EventSchema, rec)))

	rec = validEvent()
	rec["location"] = "0x" + hexID[2:]
	assert.Equal(t, `"location" must only contain hexadecimal characters`, messageOf(t, Validate(EventSchema, rec)))

	rec = validEvent()
	rec["participants"] = []any{"0X" + hexID[2:]}
	assert.Equal(t, `"participants[0]" must only contain hexadecimal characters`, messageOf(t, Validate(EventSchema, rec)))

	rec = validEvent()
	rec["category"] = "abc123"
	assert.Equal(t, `"category" length must be 24 characters long`, messageOf(t, Validate(EventSchema, rec)))

	rec = validEvent()
	rec["date"] = "tomorrow-ish"
	assert.Equal(t, `"date" must be a valid date`, messageOf(t, Validate(EventSchema, rec)))

	rec = validEvent()
	rec["participants"] = []any{hexID, "bad"}
	assert.Equal(t, `"participants[1]" length must be 24 characters long`, messageOf(t, Validate(EventSchema, rec)))

	rec = validEvent()
	rec["participants"] = "not-a-list"
	assert.Equal(t, `"participants" must be an array`, messageOf(t, Validate(EventSchema, rec)))
}

func TestValidate_FieldOrder(t *testing.T) {
	err := Validate(EventSchema, Record{"description": "x"})
	assert.Equal(t, `"title" is required`, messageOf(t, err))
}

func TestDecode(t *testing.T) {
	rec, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, rec)

	rec, err = Decode([]byte(`{"name":"Music"}`))
	require.NoError(t, err)
	assert.Equal(t, "Music", rec.String("name"))

	_, err = Decode([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = Decode([]byte(`null`))
	assert.ErrorIs(t, err, ErrNotObject)
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2026-11-01")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), got)

	got, ok = ParseDate(float64(0))
	require.True(t, ok)
	assert.Equal(t, time.Unix(0, 0).UTC(), got)

	_, ok = ParseDate(true)
	assert.False(t, ok)

	got, ok = ParseDate(8.64e15)
	require.True(t, ok)
	assert.Equal(t, 275760, got.Year())

	_, ok = ParseDate(1e300)
	assert.False(t, ok)
	_, ok = ParseDate(-9e15)
	assert.False(t, ok)
}

func TestRecordAccessors(t *testing.T) {
	rec := Record{"title": "x", "isAdmin": true, "participants": []any{"a", "b"}, "date": "2026-01-02T03:04:05Z"}
	assert.Equal(t, "x", rec.String("title"))
	assert.True(t, rec.Bool("isAdmin"))
	assert.Equal(t, []string{"a", "b"}, rec.Strings("participants"))
	assert.Equal(t, 2026, rec.Time("date").Year())
	assert.False(t, rec.Has("missing"))
	assert.Empty(t, rec.Strings("missing"))
}
