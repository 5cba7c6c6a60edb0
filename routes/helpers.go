package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eventapi/middlewares"
	"eventapi/validation"
)

// bindRecord decodes and validates the body. On failure it has already
// answered 400 with the first validation message.
func bindRecord(c *gin.Context, schema validation.Schema) (validation.Record, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return nil, false
	}
	rec, err := validation.Decode(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return nil, false
	}
	if err := validation.Validate(schema, rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return nil, false
	}
	return rec, true
}

// objectID parses a path parameter. A malformed id cannot match any stored
// record, so it answers 404 with notFound.
func objectID(c *gin.Context, param, notFound string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": notFound})
		return primitive.NilObjectID, false
	}
	return id, true
}

// refID reads an id field of a validated body. It still refuses anything
// ObjectIDFromHex cannot decode, so a zero id is never stored as a reference.
func refID(rec validation.Record, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(rec.String(field))
	if err != nil {
		return primitive.NilObjectID, &validation.Error{Field: field, Message: fmt.Sprintf("%q must be a valid id", field)}
	}
	return id, nil
}

func refIDs(rec validation.Record, field string) ([]primitive.ObjectID, error) {
	hexes := rec.Strings(field)
	out := make([]primitive.ObjectID, 0, len(hexes))
	for i, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			label := fmt.Sprintf("%s[%d]", field, i)
			return nil, &validation.Error{Field: label, Message: fmt.Sprintf("%q must be a valid id", label)}
		}
		out = append(out, id)
	}
	return out, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
}

// storageFailure logs err with the request logger and answers a generic 500.
func storageFailure(c *gin.Context, err error, msg string) {
	middlewares.Logger(c).Error().Err(err).Str("path", c.FullPath()).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"message": msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"message": msg})
}
