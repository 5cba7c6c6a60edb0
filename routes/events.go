package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventapi/middlewares"
	"eventapi/models"
	"eventapi/validation"
)

const eventNotFound = "Event not found"

func eventFromRecord(rec validation.Record) (models.Event, error) {
	e := models.Event{
		Title:       rec.String("title"),
		Description: rec.String("description"),
		Date:        rec.Time("date"),
	}
	var err error
	if e.Location, err = refID(rec, "location"); err != nil {
		return e, err
	}
	if e.Category, err = refID(rec, "category"); err != nil {
		return e, err
	}
	if rec.Has("participants") {
		if e.Participants, err = refIDs(rec, "participants"); err != nil {
			return e, err
		}
	}
	return e, nil
}

/* -------------------- Events -------------------- */

// GET /api/events
func (d *deps) getEvents(c *gin.Context) {
	events, err := d.events.GetAll(c.Request.Context())
	if err != nil {
		storageFailure(c, err, "Could not fetch events. Try again later.")
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /api/events/:id
func (d *deps) getEvent(c *gin.Context) {
	id, ok := objectID(c, "id", eventNotFound)
	if !ok {
		return
	}
	event, err := d.events.GetByID(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, eventNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not fetch event. Try again later.")
		return
	}
	c.JSON(http.StatusOK, event)
}

// POST /api/events
func (d *deps) createEvent(c *gin.Context) {
	rec, ok := bindRecord(c, validation.EventSchema)
	if !ok {
		return
	}

	event, err := eventFromRecord(rec)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := d.events.Create(c.Request.Context(), &event); err != nil {
		storageFailure(c, err, "Could not create event. Try again later.")
		return
	}
	d.inv.PurgeResources(c.Request.Context(), "events")
	c.JSON(http.StatusOK, event)
}

// PUT /api/events/:id answers with the updated event, references resolved.
func (d *deps) updateEvent(c *gin.Context) {
	id, ok := objectID(c, "id", eventNotFound)
	if !ok {
		return
	}
	rec, ok := bindRecord(c, validation.EventSchema)
	if !ok {
		return
	}

	event, err := eventFromRecord(rec)
	if err != nil {
		badRequest(c, err)
		return
	}
	event.ID = id
	err = d.events.Update(c.Request.Context(), &event)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, eventNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not update event. Try again later.")
		return
	}
	d.inv.PurgeResources(c.Request.Context(), "events")

	detail, err := d.events.GetByID(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		// deleted between the two round trips
		notFound(c, eventNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not fetch the event. Try again later.")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DELETE /api/events/:id
func (d *deps) deleteEvent(c *gin.Context) {
	id, ok := objectID(c, "id", eventNotFound)
	if !ok {
		return
	}
	event, err := d.events.Delete(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, eventNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not delete the event.")
		return
	}
	d.inv.PurgeResources(c.Request.Context(), "events")
	c.JSON(http.StatusOK, event)
}

/* --------------- Event participants ------------------ */

// POST /api/events/:id/participants adds the caller. A second add is
// rejected rather than ignored.
func (d *deps) joinEvent(c *gin.Context, caller middlewares.Caller) {
	id, ok := objectID(c, "id", eventNotFound)
	if !ok {
		return
	}
	event, err := d.events.AddParticipant(c.Request.Context(), id, caller.ID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		notFound(c, eventNotFound)
		return
	case errors.Is(err, models.ErrAlreadyParticipating):
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already participating"})
		return
	case err != nil:
		storageFailure(c, err, "Could not add participant.")
		return
	}
	d.inv.PurgeResources(c.Request.Context(), "events")
	c.JSON(http.StatusOK, event)
}

// DELETE /api/events/:id/participants/:userId removes by filter, so an id
// that was never listed (or is not an id at all) leaves the event unchanged.
func (d *deps) leaveEvent(c *gin.Context) {
	id, ok := objectID(c, "id", eventNotFound)
	if !ok {
		return
	}
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		userID = primitive.NilObjectID
	}

	event, err := d.events.RemoveParticipant(c.Request.Context(), id, userID)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, eventNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not remove participant.")
		return
	}
	d.inv.PurgeResources(c.Request.Context(), "events")
	c.JSON(http.StatusOK, event)
}
