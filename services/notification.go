package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ibaclean-backend/models"
	"ibaclean-backend/repositories"
	"ibaclean-backend/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ErrInvalidRecipient is wrapped by senders when the provider refuses the
// destination itself rather than failing to deliver.
var ErrInvalidRecipient = errors.New("invalid recipient")

// MessageSender delivers a plain text message to a phone number.
type MessageSender interface {
	Send(ctx context.Context, to, body string) (providerRef string, err error)
}

// EmailSender delivers an HTML email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) (providerRef string, err error)
}

// Outcome is the result of one delivery attempt on one channel.
type Outcome struct {
	Channel     models.Channel `json:"channel"`
	Sent        bool           `json:"sent"`
	AttemptID   uuid.UUID      `json:"attemptId"`
	ProviderRef string         `json:"providerRef,omitempty"`
	ErrorClass  string         `json:"errorClass,omitempty"`
	Error       string         `json:"error,omitempty"`
}

type DispatchResult struct {
	Message Outcome `json:"message"`
	Email   Outcome `json:"email"`
}

// Dispatcher sends booking confirmations on both channels and records one
// attempt row per send. It never reports failure to its caller; the outcome
// lives in the returned result and in the attempt log.
type Dispatcher struct {
	messages MessageSender
	email    EmailSender
	attempts repositories.AttemptRepository
	renderer *Renderer
	timeout  time.Duration
	logger   *logrus.Logger
}

func NewDispatcher(messages MessageSender, email EmailSender, attempts repositories.AttemptRepository, renderer *Renderer, timeout time.Duration, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		messages: messages,
		email:    email,
		attempts: attempts,
		renderer: renderer,
		timeout:  timeout,
		logger:   logger,
	}
}

// Dispatch sends the confirmation for booking on both channels concurrently
// and returns once both have finished or timed out.
func (d *Dispatcher) Dispatch(ctx context.Context, booking *models.Booking, customer *models.Customer) DispatchResult {
	var (
		result DispatchResult
		wg     sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		result.Message = d.sendMessage(ctx, booking, customer)
	}()
	go func() {
		defer wg.Done()
		result.Email = d.sendEmail(ctx, booking, customer)
	}()
	wg.Wait()
	return result
}

func (d *Dispatcher) sendMessage(ctx context.Context, booking *models.Booking, customer *models.Customer) Outcome {
	attempt := &models.NotificationAttempt{
		BookingID:  booking.ID,
		CustomerID: customer.ID,
		Channel:    models.ChannelMessage,
		Recipient:  customer.Phone,
	}
	body, err := d.renderer.Message(booking, customer)
	if err != nil {
		return d.record(ctx, attempt, models.ErrorClassRender, err, 0)
	}
	attempt.Body = body
	return d.deliver(ctx, attempt)
}

func (d *Dispatcher) sendEmail(ctx context.Context, booking *models.Booking, customer *models.Customer) Outcome {
	attempt := &models.NotificationAttempt{
		BookingID:  booking.ID,
		CustomerID: customer.ID,
		Channel:    models.ChannelEmail,
		Recipient:  customer.Email,
	}
	subject, body, err := d.renderer.Email(booking, customer)
	if err != nil {
		return d.record(ctx, attempt, models.ErrorClassRender, err, 0)
	}
	attempt.Subject = subject
	attempt.Body = body
	return d.deliver(ctx, attempt)
}

// DispatchChannel sends a fresh confirmation on a single channel.
func (d *Dispatcher) DispatchChannel(ctx context.Context, booking *models.Booking, customer *models.Customer, channel models.Channel) Outcome {
	if channel == models.ChannelEmail {
		return d.sendEmail(ctx, booking, customer)
	}
	return d.sendMessage(ctx, booking, customer)
}

// Redeliver sends a previously recorded attempt again, unchanged, and records
// the new attempt. The booking is not re-read.
func (d *Dispatcher) Redeliver(ctx context.Context, previous *models.NotificationAttempt) Outcome {
	attempt := previous.Retry()
	attempt.Details = datatypes.JSONMap{"retryOf": previous.ID.String()}
	return d.deliver(ctx, attempt)
}

func (d *Dispatcher) deliver(ctx context.Context, attempt *models.NotificationAttempt) Outcome {
	if !validRecipient(attempt.Channel, attempt.Recipient) {
		return d.record(ctx, attempt, models.ErrorClassInvalidRecipient,
			fmt.Errorf("%w: %q", ErrInvalidRecipient, attempt.Recipient), 0)
	}

	start := time.Now()
	ref, err := callWithTimeout(ctx, d.timeout, func(ctx context.Context) (string, error) {
		return d.send(ctx, attempt)
	})
	elapsed := time.Since(start)
	if err != nil {
		return d.record(ctx, attempt, classify(err), err, elapsed)
	}
	attempt.ProviderRef = ref
	return d.record(ctx, attempt, "", nil, elapsed)
}

func (d *Dispatcher) send(ctx context.Context, attempt *models.NotificationAttempt) (string, error) {
	switch attempt.Channel {
	case models.ChannelMessage:
		return d.messages.Send(ctx, attempt.Recipient, attempt.Body)
	case models.ChannelEmail:
		return d.email.Send(ctx, attempt.Recipient, attempt.Subject, attempt.Body)
	}
	return "", fmt.Errorf("unknown channel %q", attempt.Channel)
}

// record appends the attempt row. The append is detached from ctx so a
// cancelled caller still leaves a trace of what happened.
func (d *Dispatcher) record(ctx context.Context, attempt *models.NotificationAttempt, errorClass string, sendErr error, elapsed time.Duration) Outcome {
	if attempt.Details == nil {
		attempt.Details = datatypes.JSONMap{}
	}
	attempt.Details["elapsedMs"] = elapsed.Milliseconds()

	entry := d.logger.WithFields(logrus.Fields{
		"booking_id": attempt.BookingID,
		"channel":    attempt.Channel,
		"elapsed":    elapsed.String(),
	})

	if sendErr != nil {
		attempt.Outcome = models.OutcomeFailed
		attempt.ErrorClass = errorClass
		attempt.ErrorMessage = sendErr.Error()
		entry.WithError(sendErr).WithField("error_class", errorClass).Warn("Notification failed")
	} else {
		attempt.Outcome = models.OutcomeSent
		entry.WithField("provider_ref", attempt.ProviderRef).Info("Notification sent")
	}

	if err := d.attempts.Append(context.WithoutCancel(ctx), attempt); err != nil {
		entry.WithError(err).Error("Failed to record notification attempt")
	}

	return Outcome{
		Channel:     attempt.Channel,
		Sent:        attempt.Outcome == models.OutcomeSent,
		AttemptID:   attempt.ID,
		ProviderRef: attempt.ProviderRef,
		ErrorClass:  attempt.ErrorClass,
		Error:       attempt.ErrorMessage,
	}
}

func validRecipient(channel models.Channel, recipient string) bool {
	switch channel {
	case models.ChannelMessage:
		return utils.ValidatePhone(recipient)
	case models.ChannelEmail:
		return utils.ValidateEmailAddress(recipient)
	}
	return false
}

func classify(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return models.ErrorClassTimeout
	case errors.Is(err, ErrInvalidRecipient):
		return models.ErrorClassInvalidRecipient
	default:
		return models.ErrorClassProvider
	}
}

// callWithTimeout bounds fn by timeout even when fn ignores its context,
// which the Twilio client and net/smtp both do.
func callWithTimeout(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		ref string
		err error
	}
	done := make(chan result, 1)
	go func() {
		ref, err := fn(ctx)
		done <- result{ref: ref, err: err}
	}()

	select {
	case r := <-done:
		return r.ref, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("send: %w", ctx.Err())
	}
}
