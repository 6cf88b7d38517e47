// controllers/catalog.go
package controllers

import (
	"net/http"

	"ibaclean-backend/services"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	Catalog *services.CatalogService
}

// GetServices lists the add-ons customers can choose
func (cc *CatalogController) GetServices(c *gin.Context) {
	addOns, err := cc.Catalog.ListAddOns(c.Request.Context(), true)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": addOns})
}

func (cc *CatalogController) GetPricing(c *gin.Context) {
	rules, err := cc.Catalog.ListRules(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pricing": rules})
}

// Quote prices a job without booking it
func (cc *CatalogController) Quote(c *gin.Context) {
	var input services.QuoteRequest
	if !bindJSON(c, &input) {
		return
	}

	breakdown, err := cc.Catalog.Quote(c.Request.Context(), input)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}
