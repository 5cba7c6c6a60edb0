package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventapi/middlewares"
	"eventapi/models"
	"eventapi/utils"
	"eventapi/validation"
)

const (
	userNotFound       = "User not found"
	invalidCredentials = "Invalid email or password."
	alreadyRegistered  = "User already registered."
)

/* --------------------- Users --------------------- */

// POST /api/users/register
func (d *deps) register(c *gin.Context) {
	rec, ok := bindRecord(c, validation.UserSchema)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	_, err := d.users.GetByEmail(ctx, rec.String("email"))
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": alreadyRegistered})
		return
	}
	if !errors.Is(err, models.ErrNotFound) {
		storageFailure(c, err, "Could not save user.")
		return
	}

	hashed, err := utils.HashPassword(rec.String("password"))
	if err != nil {
		storageFailure(c, err, "Could not hash password.")
		return
	}

	user := models.User{
		Name:     rec.String("name"),
		Email:    rec.String("email"),
		Password: hashed,
		IsAdmin:  rec.Bool("isAdmin"),
	}
	err = d.users.Create(ctx, &user)
	if errors.Is(err, models.ErrDuplicateEmail) {
		// lost a race with a concurrent registration
		c.JSON(http.StatusBadRequest, gin.H{"message": alreadyRegistered})
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not save user.")
		return
	}
	c.JSON(http.StatusOK, user)
}

// POST /api/users/login answers with the token only.
func (d *deps) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidCredentials})
		return
	}

	user, ok := d.checkCredentials(c, req.Email, req.Password)
	if !ok {
		return
	}

	token, err := d.tokens.GenerateToken(user.ID.Hex(), user.IsAdmin)
	if err != nil {
		storageFailure(c, err, "Could not authenticate user.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GET /api/users/me
func (d *deps) currentUser(c *gin.Context, caller middlewares.Caller) {
	user, err := d.users.GetByID(c.Request.Context(), caller.ID)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, userNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not fetch user. Try again later.")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /api/users/:id
func (d *deps) getUser(c *gin.Context) {
	id, ok := objectID(c, "id", userNotFound)
	if !ok {
		return
	}
	user, err := d.users.GetByID(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		notFound(c, userNotFound)
		return
	}
	if err != nil {
		storageFailure(c, err, "Could not fetch user. Try again later.")
		return
	}
	c.JSON(http.StatusOK, user)
}

/* --------------------- Auth --------------------- */

// POST /api/auth answers with the profile and puts the token in a header.
func (d *deps) authenticate(c *gin.Context) {
	rec, ok := bindRecord(c, validation.AuthSchema)
	if !ok {
		return
	}

	user, ok := d.checkCredentials(c, rec.String("email"), rec.String("password"))
	if !ok {
		return
	}

	token, err := d.tokens.GenerateToken(user.ID.Hex(), user.IsAdmin)
	if err != nil {
		storageFailure(c, err, "Could not authenticate user.")
		return
	}
	c.Header(middlewares.TokenHeader, token)
	c.JSON(http.StatusOK, gin.H{"_id": user.ID, "name": user.Name, "email": user.Email})
}

// checkCredentials gives the same answer for an unknown email and a wrong
// password.
func (d *deps) checkCredentials(c *gin.Context, email, password string) (models.User, bool) {
	user, err := d.users.GetByEmail(c.Request.Context(), email)
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidCredentials})
		return models.User{}, false
	}
	if err != nil {
		storageFailure(c, err, "Could not authenticate user.")
		return models.User{}, false
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidCredentials})
		return models.User{}, false
	}
	return user, true
}
