package services

import (
	"testing"

	"ibaclean-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBooking() (*models.Booking, *models.Customer) {
	booking := &models.Booking{
		ID:            42,
		Reference:     "3f2a9c1e-0d4b-4e7a-9a55-1c2b3d4e5f60",
		Address:       "Flat 3 <b>Rose</b> & Crown",
		Postcode:      "E1 6AN",
		City:          "London",
		ScheduledDate: "2025-03-14",
		ScheduledTime: "09:30",
		BasePrice:     models.Pounds(150),
		BedroomCharge: models.Pounds(25),
		AddOns:        models.BookedAddOns{{ID: "oven", Name: "Oven Cleaning", Price: models.Pounds(35)}},
		TotalPrice:    models.Pounds(210),
	}
	return booking, &models.Customer{FirstName: "Jane", Email: "jane@example.com"}
}

func TestRenderMessage(t *testing.T) {
	booking, customer := sampleBooking()

	body, err := NewRenderer("IBA Global Service", "").Message(booking, customer)
	require.NoError(t, err)

	assert.Contains(t, body, "Hello Jane!")
	assert.Contains(t, body, "Date: 2025-03-14")
	assert.Contains(t, body, "Time: 09:30")
	assert.Contains(t, body, "Total: £210.00")
	assert.Contains(t, body, "Booking ID: #42")
	assert.Contains(t, body, "<b>Rose</b>")
}

func TestRenderEmail(t *testing.T) {
	booking, customer := sampleBooking()

	subject, body, err := NewRenderer("IBA Global Service", "https://iba.example/").Email(booking, customer)
	require.NoError(t, err)

	assert.Equal(t, "Booking Confirmation - IBA Global Service", subject)
	assert.Contains(t, body, "#42")
	assert.Contains(t, body, "£210.00")
	assert.Contains(t, body, "Oven Cleaning")
	assert.Contains(t, body, "https://iba.example/bookings/42?ref=3f2a9c1e-0d4b-4e7a-9a55-1c2b3d4e5f60")
	assert.NotContains(t, body, "<b>Rose</b>")
	assert.Contains(t, body, "&lt;b&gt;Rose&lt;/b&gt; &amp; Crown")
	assert.NotContains(t, body, "Extra bathrooms")
}
