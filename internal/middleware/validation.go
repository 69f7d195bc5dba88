package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/jobboard-api/internal/handler"
	"github.com/jwalitptl/jobboard-api/pkg/strength"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationConfig represents validation middleware configuration
type ValidationConfig struct {
	CustomValidators    map[string]validator.Func
	CustomErrorMessages map[string]string
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		CustomValidators: map[string]validator.Func{
			"strength_level": validateStrengthLevel,
		},
		CustomErrorMessages: map[string]string{
			"required":       "Field is required",
			"max":            "Value is too long",
			"strength_level": fmt.Sprintf("Must be one of %s, %s, %s, %s", strength.LevelWeak, strength.LevelMedium, strength.LevelStrong, strength.LevelVeryStrong),
		},
	}
}

func validateStrengthLevel(fl validator.FieldLevel) bool {
	_, err := strength.ParseLevel(fl.Field().String())
	return err == nil
}

// RegisterValidators installs the custom tags on gin's validator engine
func RegisterValidators(config ValidationConfig) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	for tag, fn := range config.CustomValidators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register validator %q: %w", tag, err)
		}
	}

	// Report json field names instead of struct field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return nil
}

// Validation renders validator errors raised by handlers as a field list
func Validation(config ValidationConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		var validationErrors []ValidationError
		for _, err := range c.Errors {
			var errs validator.ValidationErrors
			if !errors.As(err.Err, &errs) {
				continue
			}
			for _, e := range errs {
				msg := config.CustomErrorMessages[e.Tag()]
				if msg == "" {
					msg = e.Error()
				}
				validationErrors = append(validationErrors, ValidationError{
					Field:   e.Field(),
					Message: msg,
				})
			}
		}

		if len(validationErrors) > 0 {
			resp := handler.NewErrorResponse("validation failed")
			resp.Data = validationErrors
			resp.RequestID = c.GetString(ContextRequestID)
			c.AbortWithStatusJSON(http.StatusBadRequest, resp)
		}
	}
}
