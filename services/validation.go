package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"ibaclean-backend/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Request structs declare their rules in binding tags, so gin validates them
// on ShouldBindJSON and services check them again with the same engine.
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		panic("gin binding engine is not go-playground/validator")
	}
	registerValidations(v)
}

func registerValidations(v *validator.Validate) {
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// ValidateRequest runs the binding tags of s and returns a *models.ValidationError
// listing every failing field, or nil.
func ValidateRequest(s interface{}) error {
	return ValidationErrorFrom(binding.Validator.ValidateStruct(s))
}

// ValidationErrorFrom converts validator field errors into a *models.ValidationError.
// Other errors are wrapped and returned as they are.
func ValidationErrorFrom(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	verr := &models.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return verr.Err()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "hhmm":
		return "must be a time in HH:MM 24-hour format"
	case "slug":
		return "must contain only lowercase letters, digits and dashes"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
