// controllers/auth.go
package controllers

import (
	"net/http"

	"ibaclean-backend/services"
	"ibaclean-backend/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Auth *services.AuthService
}

func (ac *AuthController) Login(c *gin.Context) {
	var input services.LoginRequest
	if !bindJSON(c, &input) {
		return
	}

	resp, err := ac.Auth.Login(c.Request.Context(), input)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the account behind the token
func (ac *AuthController) Me(c *gin.Context) {
	customer, err := ac.Auth.Me(c.Request.Context(), c.GetString(utils.ContextCustomerID))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": customer})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
