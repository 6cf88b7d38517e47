// controllers/booking.go
package controllers

import (
	"net/http"

	"ibaclean-backend/models"
	"ibaclean-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BookingController serves the public booking form and the customer's own bookings.
type BookingController struct {
	Intake   *services.IntakeService
	Bookings *services.BookingService
}

// publicBooking hides the stored customer record. An email address alone
// must not reveal whose account it belongs to.
type publicBooking struct {
	*models.Booking
	CustomerID *uuid.UUID       `json:"customerId,omitempty"`
	Customer   *models.Customer `json:"customer,omitempty"`
}

func newPublicBooking(b *models.Booking) publicBooking {
	return publicBooking{Booking: b}
}

// CreateBooking takes a booking request from the public site
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var input services.IntakeRequest
	if !bindJSON(c, &input) {
		return
	}

	booking, err := bc.Intake.Intake(c.Request.Context(), input)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"booking":   newPublicBooking(booking),
		"contact":   input.Contact(),
		"breakdown": booking.Breakdown(),
		"message":   "Booking created successfully",
	})
}

// GetBooking is used by the confirmation page and needs the booking reference.
func (bc *BookingController) GetBooking(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	booking, err := bc.Bookings.GetByReference(c.Request.Context(), id, c.Query("ref"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": newPublicBooking(booking), "breakdown": booking.Breakdown()})
}

// GetMyBookings lists the signed in customer's bookings, newest first
func (bc *BookingController) GetMyBookings(c *gin.Context) {
	customerID, ok := currentCustomerID(c)
	if !ok {
		return
	}

	bookings, err := bc.Bookings.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (bc *BookingController) CancelMyBooking(c *gin.Context) {
	customerID, ok := currentCustomerID(c)
	if !ok {
		return
	}
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}

	booking, err := bc.Bookings.Cancel(c.Request.Context(), id, customerID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking, "message": "Booking cancelled successfully"})
}
