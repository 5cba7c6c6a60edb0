package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventapi/models"
	"eventapi/validation"
)

const locationNotFound = "Location not found"

// GET /api/locations
func (d *deps) getLocations(c *gin.Context) {
	locations, err := d.locations.GetAll(c.Request.Context())
	if err != nil {
		storageFailure(c, err, "Could not fetch locations. Try again later.")
		return
	}
	c.JSON(http.StatusOK, locations)
}

// GET /api/locations/:id
func (d *deps) getLocation(c *gin.Context) {
	id, ok := objectID(c, "id", locationNotFound)
	if !ok {
		return
	}
	location, err := d.locations.GetByID(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, locationNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not fetch location. Try again later.")
		return
	}
	c.JSON(http.StatusOK, location)
}

// POST /api/locations
func (d *deps) createLocation(c *gin.Context) {
	rec, ok := bindRecord(c, validation.LocationSchema)
	if !ok {
		return
	}

	location := models.Location{Name: rec.String("name"), Address: rec.String("address")}
	if err := d.locations.Create(c.Request.Context(), &location); err != nil {
		storageFailure(c, err, "Could not create location. Try again later.")
		return
	}
	d.inv.PurgeResources(c.Request.Context(), "locations")
	c.JSON(http.StatusOK, location)
}

// PUT /api/locations/:id
func (d *deps) updateLocation(c *gin.Context) {
	id, ok := objectID(c, "id", locationNotFound)
	if !ok {
		return
	}
	rec, ok := bindRecord(c, validation.LocationSchema)
	if !ok {
		return
	}

	location := models.Location{ID: id, Name: rec.String("name"), Address: rec.String("address")}
	err := d.locations.Update(c.Request.Context(), &location)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, locationNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not update location. Try again later.")
		return
	}
	d.inv.PurgeResources(c.Request.Context(), "locations", "events")
	c.JSON(http.StatusOK, location)
}

// DELETE /api/locations/:id
func (d *deps) deleteLocation(c *gin.Context) {
	id, ok := objectID(c, "id", locationNotFound)
	if !ok {
		return
	}
	location, err := d.locations.Delete(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, locationNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not delete location.")
		return
	}
	d.inv.PurgeResources(c.Request.Context(), "locations", "events")
	c.JSON(http.StatusOK, location)
}
