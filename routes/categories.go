package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventapi/models"
	"eventapi/validation"
)

const categoryNotFound = "Category not found"

// GET /api/categories
func (d *deps) getCategories(c *gin.Context) {
	categories, err := d.categories.GetAll(c.Request.Context())
	if err != nil {
		storageFailure(c, err, "Could not fetch categories. Try again later.")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GET /api/categories/:id
func (d *deps) getCategory(c *gin.Context) {
	id, ok := objectID(c, "id", categoryNotFound)
	if !ok {
		return
	}
	category, err := d.categories.GetByID(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, categoryNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not fetch category. Try again later.")
		return
	}
	c.JSON(http.StatusOK, category)
}

// POST /api/categories
func (d *deps) createCategory(c *gin.Context) {
	rec, ok := bindRecord(c, validation.CategorySchema)
	if !ok {
		return
	}

	category := models.Category{Name: rec.String("name")}
	if err := d.categories.Create(c.Request.Context(), &category); err != nil {
		storageFailure(c, err, "Could not create category. Try again later.")
		return
	}
	d.inv.PurgeResources(c.Request.Context(), "categories")
	c.JSON(http.StatusOK, category)
}

// PUT /api/categories/:id
func (d *deps) updateCategory(c *gin.Context) {
	id, ok := objectID(c, "id", categoryNotFound)
	if !ok {
		return
	}
	rec, ok := bindRecord(c, validation.CategorySchema)
	if !ok {
		return
	}

	category := models.Category{ID: id, Name: rec.String("name")}
	err := d.categories.Update(c.Request.Context(), &category)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, categoryNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not update category. Try again later.")
		return
	}
	d.inv.PurgeResources(c.Request.Context(), "categories", "events")
	c.JSON(http.StatusOK, category)
}

// DELETE /api/categories/:id
func (d *deps) deleteCategory(c *gin.Context) {
	id, ok := objectID(c, "id", categoryNotFound)
	if !ok {
		return
	}
	category, err := d.categories.Delete(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, categoryNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not delete category.")
		return
	}
	d.inv.PurgeResources(c.Request.Context(), "categories", "events")
	c.JSON(http.StatusOK, category)
}
