// utils/response.go
package utils

import (
	"ibaclean-backend/models"

	"github.com/gin-gonic/gin"
)

// RespondWithError aborts the request with a JSON error body
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

// RespondWithValidation aborts the request with every offending field
func RespondWithValidation(c *gin.Context, status int, fields []models.FieldError) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "errors": fields})
}
