package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventapi/models"
	"eventapi/validation"
)

const participantNotFound = "Participant not found"

func participantFromRecord(rec validation.Record) (models.Participant, error) {
	p := models.Participant{Status: rec.String("status")}
	var err error
	if p.User, err = refID(rec, "user"); err != nil {
		return p, err
	}
	if p.Event, err = refID(rec, "event"); err != nil {
		return p, err
	}
	return p, nil
}

// POST /api/participants
func (d *deps) createParticipant(c *gin.Context) {
	rec, ok := bindRecord(c, validation.ParticipantSchema)
	if !ok {
		return
	}

	participant, err := participantFromRecord(rec)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := d.participants.Create(c.Request.Context(), &participant); err != nil {
		storageFailure(c, err, "Could not create participant. Try again later.")
		return
	}
	c.JSON(http.StatusOK, participant)
}

// GET /api/participants
func (d *deps) getParticipants(c *gin.Context) {
	participants, err := d.participants.GetAll(c.Request.Context())
	if err != nil {
		storageFailure(c, err, "Could not fetch participants. Try again later.")
		return
	}
	c.JSON(http.StatusOK, participants)
}

// GET /api/participants/event/:eventId
func (d *deps) getEventParticipants(c *gin.Context) {
	eventID, ok := objectID(c, "eventId", eventNotFound)
	if !ok {
		return
	}
	participants, err := d.participants.GetByEvent(c.Request.Context(), eventID)
	if err != nil {
		storageFailure(c, err, "Could not fetch participants. Try again later.")
		return
	}
	c.JSON(http.StatusOK, participants)
}

// GET /api/participants/:id
func (d *deps) getParticipant(c *gin.Context) {
	id, ok := objectID(c, "id", participantNotFound)
	if !ok {
		return
	}
	participant, err := d.participants.GetByID(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, participantNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not fetch participant. Try again later.")
		return
	}
	c.JSON(http.StatusOK, participant)
}

// PUT /api/participants/:id answers with user and event resolved.
func (d *deps) updateParticipant(c *gin.Context) {
	id, ok := objectID(c, "id", participantNotFound)
	if !ok {
		return
	}
	rec, ok := bindRecord(c, validation.ParticipantSchema)
	if !ok {
		return
	}

	participant, err := participantFromRecord(rec)
	if err != nil {
		badRequest(c, err)
		return
	}
	participant.ID = id
	err = d.participants.Update(c.Request.Context(), &participant)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, participantNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not update participant. Try again later.")
		return
	}

	detail, err := d.participants.GetByID(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, participantNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not fetch participant. Try again later.")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DELETE /api/participants/:id
func (d *deps) deleteParticipant(c *gin.Context) {
	id, ok := objectID(c, "id", participantNotFound)
	if !ok {
		return
	}
	participant, err := d.participants.Delete(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, participantNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not delete participant.")
		return
	}
	c.JSON(http.StatusOK, participant)
}
