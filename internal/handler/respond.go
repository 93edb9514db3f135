package handler

import (
	"errors"
	"net/http"

	"github.com/arbdesk/arbgate/internal/pkg/apperrors"
	"github.com/arbdesk/arbgate/internal/repository"
	"github.com/arbdesk/arbgate/internal/validate"
	"github.com/gin-gonic/gin"
)

// respond writes the uniform success envelope.
func respond(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// fail attaches an error for the ErrorHandler middleware to render.
func fail(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		err = apperrors.NewNotFound("resource not found")
	}
	c.Error(apperrors.Wrap(err))
	c.Abort()
}

func failValidation(c *gin.Context, errs []validate.FieldError) {
	c.Error(apperrors.NewValidation(errs))
	c.Abort()
}

// bindJSON decodes the body; a malformed payload is a validation failure,
// not an internal error.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		failValidation(c, []validate.FieldError{{Field: "body", Message: "invalid JSON payload: " + err.Error()}})
		return false
	}
	return true
}
