package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yourorg/simulation-service/internal/model"
)

// RegisterValidators installs the custom binding validators used by the
// request models. Must run once before the router serves requests.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("timeframe", func(fl validator.FieldLevel) bool {
			return model.Timeframe(fl.Field().String()).IsValid()
		})
	}
}

// statusForError maps the service error kinds to HTTP status codes
func statusForError(err error) int {
	var (
		configErr   *model.ConfigurationError
		dataErr     *model.DataError
		orderErr    *model.InvalidOrderError
		notFoundErr *model.NotFoundError
	)

	switch {
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &configErr), errors.As(err, &orderErr):
		return http.StatusBadRequest
	case errors.As(err, &dataErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error with its mapped status code
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// currentUserID reads the authenticated user from the request context
func currentUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID.(int), true
}
