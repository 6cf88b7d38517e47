package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Channel string

const (
	ChannelMessage Channel = "message"
	ChannelEmail   Channel = "email"
)

type AttemptOutcome string

const (
	OutcomeSent   AttemptOutcome = "sent"
	OutcomeFailed AttemptOutcome = "failed"
)

const (
	ErrorClassTimeout          = "timeout"
	ErrorClassInvalidRecipient = "invalid_recipient"
	ErrorClassProvider         = "provider_error"
	ErrorClassRender           = "render_error"
)

// NotificationAttempt is one try at delivering a confirmation on one channel.
// Rows are only ever inserted. A retry is a new row.
type NotificationAttempt struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID    uint              `gorm:"index:idx_attempt_booking_channel,priority:1;not null" json:"bookingId"`
	CustomerID   uuid.UUID         `gorm:"type:uuid;index;not null" json:"customerId"`
	Channel      Channel           `gorm:"type:varchar(20);index:idx_attempt_booking_channel,priority:2;not null" json:"channel"`
	Recipient    string            `gorm:"not null" json:"recipient"`
	Subject      string            `json:"subject,omitempty"`
	Body         string            `gorm:"type:text;not null" json:"body"`
	Outcome      AttemptOutcome    `gorm:"type:varchar(20);index;not null" json:"outcome"`
	ProviderRef  string            `json:"providerRef,omitempty"`
	ErrorClass   string            `gorm:"type:varchar(40)" json:"errorClass,omitempty"`
	ErrorMessage string            `gorm:"type:text" json:"errorMessage,omitempty"`
	Details      datatypes.JSONMap `gorm:"type:jsonb" json:"details,omitempty"`
	CreatedAt    time.Time         `gorm:"index" json:"createdAt"`
}

func (a *NotificationAttempt) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// Retry copies what is needed to deliver the same confirmation again.
func (a *NotificationAttempt) Retry() *NotificationAttempt {
	return &NotificationAttempt{
		BookingID:  a.BookingID,
		CustomerID: a.CustomerID,
		Channel:    a.Channel,
		Recipient:  a.Recipient,
		Subject:    a.Subject,
		Body:       a.Body,
	}
}
