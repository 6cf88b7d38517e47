// controllers/admin.go
package controllers

import (
	"net/http"
	"strconv"

	"ibaclean-backend/models"
	"ibaclean-backend/repositories"
	"ibaclean-backend/services"
	"ibaclean-backend/utils"

	"github.com/gin-gonic/gin"
)

// AdminController handles the back office routes. All of them require the admin role.
type AdminController struct {
	Bookings *services.BookingService
	Catalog  *services.CatalogService
}

type UpdateStatusInput struct {
	Status models.BookingStatus `json:"status" binding:"required"`
}

type ResendInput struct {
	Channel models.Channel `json:"channel"`
}

func (ac *AdminController) ListBookings(c *gin.Context) {
	filter := repositories.BookingFilter{Status: models.BookingStatus(c.Query("status"))}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = n
	}

	bookings, err := ac.Bookings.List(c.Request.Context(), filter)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (ac *AdminController) UpdateBookingStatus(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	var input UpdateStatusInput
	if !bindJSON(c, &input) {
		return
	}

	booking, err := ac.Bookings.Transition(c.Request.Context(), id, input.Status)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "message": "Booking updated successfully"})
}

func (ac *AdminController) GetBookingNotifications(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	attempts, err := ac.Bookings.Notifications(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": attempts})
}

// ResendNotifications redelivers the confirmation. An empty body resends both channels.
func (ac *AdminController) ResendNotifications(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	var input ResendInput
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &input) {
			return
		}
	}

	outcomes, err := ac.Bookings.Resend(c.Request.Context(), id, input.Channel)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes})
}

func (ac *AdminController) GetAnalytics(c *gin.Context) {
	stats, err := ac.Bookings.Analytics(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (ac *AdminController) UpdatePricing(c *gin.Context) {
	var input services.RuleInput
	if !bindJSON(c, &input) {
		return
	}

	rule, err := ac.Catalog.UpdateRule(c.Request.Context(), models.PropertyType(c.Param("propertyType")), input)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// ListAddOns includes inactive add-ons
func (ac *AdminController) ListAddOns(c *gin.Context) {
	addOns, err := ac.Catalog.ListAddOns(c.Request.Context(), false)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": addOns})
}

func (ac *AdminController) CreateAddOn(c *gin.Context) {
	var input services.AddOnInput
	if !bindJSON(c, &input) {
		return
	}

	addOn, err := ac.Catalog.CreateAddOn(c.Request.Context(), input)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, addOn)
}

func (ac *AdminController) UpdateAddOn(c *gin.Context) {
	var input services.AddOnInput
	if !bindJSON(c, &input) {
		return
	}

	addOn, err := ac.Catalog.UpdateAddOn(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, addOn)
}
