// controllers/errors.go
package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"ibaclean-backend/models"
	"ibaclean-backend/services"
	"ibaclean-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondWithServiceError maps service errors onto HTTP responses.
func respondWithServiceError(c *gin.Context, err error) {
	var (
		validationErr *models.ValidationError
		addOnErr      *models.InvalidAddOnError
	)
	switch {
	case errors.As(err, &validationErr):
		utils.RespondWithValidation(c, http.StatusBadRequest, validationErr.Fields)
	case errors.As(err, &addOnErr):
		utils.RespondWithValidation(c, http.StatusBadRequest, []models.FieldError{
			{Field: "extraServiceIds", Message: addOnErr.Error()},
		})
	case errors.Is(err, models.ErrInvalidCategory):
		utils.RespondWithValidation(c, http.StatusBadRequest, []models.FieldError{
			{Field: "propertyType", Message: "must be one of studio apartment house"},
		})
	case errors.Is(err, models.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, models.ErrInvalidTransition):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrAlreadyExists):
		utils.RespondWithError(c, http.StatusConflict, "Already exists")
	case errors.Is(err, models.ErrInvalidCredentials):
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
	default:
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// bindJSON decodes the body into obj and answers 400 with every invalid
// field when it fails. A wrongly typed value is reported next to the other
// rule violations, since the decoder still fills in the remaining fields.
func bindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		verr := &models.ValidationError{}
		verr.Add(typeErr.Field, "must be a "+jsonKind(typeErr.Type.Kind().String()))
		var rest *models.ValidationError
		if errors.As(services.ValidateRequest(obj), &rest) {
			for _, f := range rest.Fields {
				if f.Field != typeErr.Field {
					verr.Add(f.Field, f.Message)
				}
			}
		}
		respondWithServiceError(c, verr)
		return false
	}

	var verr *models.ValidationError
	if errors.As(services.ValidationErrorFrom(err), &verr) {
		respondWithServiceError(c, verr)
		return false
	}
	utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
	return false
}

func jsonKind(kind string) string {
	switch kind {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64", "float32", "float64":
		return "number"
	case "slice", "array":
		return "list"
	case "bool":
		return "boolean"
	case "struct", "map":
		return "object"
	default:
		return kind
	}
}

func bookingIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID")
		return 0, false
	}
	return uint(id), true
}

func currentCustomerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(utils.ContextCustomerID))
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Customer ID not found in context")
		return uuid.Nil, false
	}
	return id, true
}
