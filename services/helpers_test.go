package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"ibaclean-backend/models"
	"ibaclean-backend/repositories"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newSeededStore(t *testing.T) *repositories.MemoryStore {
	t.Helper()
	store := repositories.NewMemoryStore()
	require.NoError(t, store.Catalog().Seed(context.Background(), DefaultPricingRules(), DefaultAddOns()))
	return store
}

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

// fakeSender implements both MessageSender and EmailSender.
type fakeSender struct {
	mu    sync.Mutex
	calls []sentMessage
	err   error
	// hang blocks Send, ignoring ctx, until the channel is closed
	hang chan struct{}
	// started, when set, receives once per Send before it blocks
	started chan struct{}
}

func (f *fakeSender) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSender) sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.calls...)
}

func (f *fakeSender) record(to, subject, body string) (string, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.hang != nil {
		<-f.hang
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sentMessage{To: to, Subject: subject, Body: body})
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("ref-%d", len(f.calls)), nil
}

type fakeMessageSender struct{ fakeSender }

func (f *fakeMessageSender) Send(ctx context.Context, to, body string) (string, error) {
	return f.record(to, "", body)
}

type fakeEmailSender struct{ fakeSender }

func (f *fakeEmailSender) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	return f.record(to, subject, htmlBody)
}

type testRig struct {
	store      *repositories.MemoryStore
	messages   *fakeMessageSender
	email      *fakeEmailSender
	dispatcher *Dispatcher
	pricing    *PricingEngine
	intake     *IntakeService
	bookings   *BookingService
	catalog    *CatalogService
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	logger := newTestLogger()
	store := newSeededStore(t)
	rig := &testRig{
		store:    store,
		messages: &fakeMessageSender{},
		email:    &fakeEmailSender{},
		pricing:  NewPricingEngine(store.Catalog()),
	}
	rig.dispatcher = NewDispatcher(rig.messages, rig.email, store.Attempts(),
		NewRenderer("IBA Global Service", "https://iba.example"), time.Second, logger)
	rig.intake = NewIntakeService(store, rig.pricing, NewIdentityResolver(), rig.dispatcher, logger)
	rig.bookings = NewBookingService(store, rig.dispatcher, logger)
	rig.catalog = NewCatalogService(store.Catalog(), rig.pricing, logger)
	return rig
}

func intPtr(n int) *int { return &n }

func validIntakeRequest() IntakeRequest {
	return IntakeRequest{
		PropertyType:  models.PropertyApartment,
		Bedrooms:      intPtr(2),
		Bathrooms:     intPtr(1),
		Address:       "12 High Street",
		Postcode:      "SW1A 1AA",
		City:          "London",
		ScheduledDate: "2025-03-14",
		ScheduledTime: "09:30",
		Email:         "jane@example.com",
		FirstName:     "Jane",
		LastName:      "Doe",
		Phone:         "+447700900123",
	}
}

func attemptsFor(t *testing.T, store repositories.Store, bookingID uint) []models.NotificationAttempt {
	t.Helper()
	attempts, err := store.Attempts().ListByBooking(context.Background(), bookingID)
	require.NoError(t, err)
	return attempts
}

func attemptsOn(attempts []models.NotificationAttempt, channel models.Channel) []models.NotificationAttempt {
	var out []models.NotificationAttempt
	for _, a := range attempts {
		if a.Channel == channel {
			out = append(out, a)
		}
	}
	return out
}
