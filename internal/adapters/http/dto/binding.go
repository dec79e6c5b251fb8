package dto

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/jsamuelsen/go-api-errors/internal/apierror"
	"github.com/jsamuelsen/go-api-errors/internal/validation"
)

// ErrBinding indicates JSON or query binding failed.
var ErrBinding = errors.New("binding failed")

// Validatable is an interface for types that can perform custom validation.
// Implement this for business rule validation beyond struct tags.
type Validatable interface {
	Validate() error
}

// BindAndValidate binds the JSON body to v and validates it.
//
// A body that cannot be decoded is reported as a 400 *apierror.HTTPError;
// field failures are reported as a *domain.ValidationError.
func BindAndValidate(c *gin.Context, v any) error {
	err := c.ShouldBindWith(v, binding.JSON)

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apierror.NewHTTPError(http.StatusRequestEntityTooLarge, "The request body is too large.").
			Wrap(fmt.Errorf("%w: %w", ErrBinding, err))
	}

	if err != nil {
		return apierror.NewHTTPError(http.StatusBadRequest, "The request body is not valid JSON.").
			Wrap(fmt.Errorf("%w: %w", ErrBinding, err))
	}

	return ValidateAll(v)
}

// BindQueryAndValidate binds query parameters to v and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	err := c.ShouldBindQuery(v)
	if err != nil {
		return apierror.NewHTTPError(http.StatusBadRequest, "The query string is invalid.").
			Wrap(fmt.Errorf("%w: %w", ErrBinding, err))
	}

	return ValidateAll(v)
}

// ValidateAll validates struct tags and calls custom Validate() if implemented.
func ValidateAll(v any) error {
	err := validation.Struct(v)
	if err != nil {
		return err
	}

	if validatable, ok := v.(Validatable); ok {
		return validatable.Validate()
	}

	return nil
}
