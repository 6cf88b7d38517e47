package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ibaclean-backend/models"

	"github.com/google/uuid"
)

type memoryState struct {
	rules     map[models.PropertyType]models.PricingRule
	addOns    map[string]models.AddOn
	customers map[uuid.UUID]models.Customer
	emails    map[string]uuid.UUID
	bookings  map[uint]models.Booking
	attempts  []models.NotificationAttempt
	nextID    uint
}

func newMemoryState() *memoryState {
	return &memoryState{
		rules:     map[models.PropertyType]models.PricingRule{},
		addOns:    map[string]models.AddOn{},
		customers: map[uuid.UUID]models.Customer{},
		emails:    map[string]uuid.UUID{},
		bookings:  map[uint]models.Booking{},
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for k, v := range s.rules {
		c.rules[k] = v
	}
	for k, v := range s.addOns {
		c.addOns[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.emails {
		c.emails[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = copyBooking(v)
	}
	c.attempts = append([]models.NotificationAttempt(nil), s.attempts...)
	c.nextID = s.nextID
	return c
}

func copyBooking(b models.Booking) models.Booking {
	b.AddOns = append(models.BookedAddOns{}, b.AddOns...)
	b.Customer = nil
	return b
}

// MemoryStore keeps everything in process. Writes outside a transaction and
// whole transactions are serialised, a failed transaction restores the
// snapshot taken when it began, and the email index is unique like the
// database one.
type MemoryStore struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *memoryState
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState(), now: time.Now}
}

func (s *MemoryStore) Catalog() CatalogRepository { return &memoryCatalog{s, false} }
func (s *MemoryStore) Customers() CustomerRepository { return &memoryCustomers{s, false} }
func (s *MemoryStore) Bookings() BookingRepository { return &memoryBookings{s, false} }
func (s *MemoryStore) Attempts() AttemptRepository { return &memoryAttempts{s, false} }

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.state.clone()
	s.mu.Unlock()

	if err := fn(&memoryTx{s}); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// lockWrite takes the data lock, plus the transaction lock for writes made
// outside a transaction. Call the returned func to release.
func (s *MemoryStore) lockWrite(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

// memoryTx is the view handed to a transaction body. Nested transactions join the outer one.
type memoryTx struct {
	s *MemoryStore
}

func (t *memoryTx) Catalog() CatalogRepository { return &memoryCatalog{t.s, true} }
func (t *memoryTx) Customers() CustomerRepository { return &memoryCustomers{t.s, true} }
func (t *memoryTx) Bookings() BookingRepository { return &memoryBookings{t.s, true} }
func (t *memoryTx) Attempts() AttemptRepository { return &memoryAttempts{t.s, true} }

func (t *memoryTx) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(t)
}

type memoryCatalog struct {
	s    *MemoryStore
	inTx bool
}

func (r *memoryCatalog) GetRule(ctx context.Context, propertyType models.PropertyType) (*models.PricingRule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rule, ok := r.s.state.rules[propertyType]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &rule, nil
}

func (r *memoryCatalog) ListRules(ctx context.Context) ([]models.PricingRule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rules := make([]models.PricingRule, 0, len(r.s.state.rules))
	for _, rule := range r.s.state.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].BasePrice < rules[j].BasePrice })
	return rules, nil
}

func (r *memoryCatalog) UpdateRule(ctx context.Context, rule *models.PricingRule) error {
	defer r.s.lockWrite(r.inTx)()
	if _, ok := r.s.state.rules[rule.PropertyType]; !ok {
		return models.ErrNotFound
	}
	rule.UpdatedAt = r.s.now()
	r.s.state.rules[rule.PropertyType] = *rule
	return nil
}

func (r *memoryCatalog) GetAddOns(ctx context.Context, ids []string) ([]models.AddOn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var addOns []models.AddOn
	for _, id := range ids {
		if addOn, ok := r.s.state.addOns[id]; ok {
			addOns = append(addOns, addOn)
		}
	}
	return addOns, nil
}

func (r *memoryCatalog) ListAddOns(ctx context.Context, activeOnly bool) ([]models.AddOn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var addOns []models.AddOn
	for _, addOn := range r.s.state.addOns {
		if activeOnly && !addOn.IsActive {
			continue
		}
		addOns = append(addOns, addOn)
	}
	sort.Slice(addOns, func(i, j int) bool { return addOns[i].Name < addOns[j].Name })
	return addOns, nil
}

func (r *memoryCatalog) GetAddOn(ctx context.Context, id string) (*models.AddOn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	addOn, ok := r.s.state.addOns[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &addOn, nil
}

func (r *memoryCatalog) CreateAddOn(ctx context.Context, addOn *models.AddOn) error {
	defer r.s.lockWrite(r.inTx)()
	if _, ok := r.s.state.addOns[addOn.ID]; ok {
		return models.ErrAlreadyExists
	}
	now := r.s.now()
	addOn.CreatedAt, addOn.UpdatedAt = now, now
	r.s.state.addOns[addOn.ID] = *addOn
	return nil
}

func (r *memoryCatalog) UpdateAddOn(ctx context.Context, addOn *models.AddOn) error {
	defer r.s.lockWrite(r.inTx)()
	existing, ok := r.s.state.addOns[addOn.ID]
	if !ok {
		return models.ErrNotFound
	}
	addOn.CreatedAt = existing.CreatedAt
	addOn.UpdatedAt = r.s.now()
	r.s.state.addOns[addOn.ID] = *addOn
	return nil
}

func (r *memoryCatalog) Seed(ctx context.Context, rules []models.PricingRule, addOns []models.AddOn) error {
	defer r.s.lockWrite(r.inTx)()
	now := r.s.now()
	for _, rule := range rules {
		if _, ok := r.s.state.rules[rule.PropertyType]; !ok {
			rule.UpdatedAt = now
			r.s.state.rules[rule.PropertyType] = rule
		}
	}
	for _, addOn := range addOns {
		if _, ok := r.s.state.addOns[addOn.ID]; !ok {
			addOn.CreatedAt, addOn.UpdatedAt = now, now
			r.s.state.addOns[addOn.ID] = addOn
		}
	}
	return nil
}

type memoryCustomers struct {
	s    *MemoryStore
	inTx bool
}

func (r *memoryCustomers) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.state.emails[models.NormalizeEmail(email)]
	if !ok {
		return nil, models.ErrNotFound
	}
	customer := r.s.state.customers[id]
	return &customer, nil
}

func (r *memoryCustomers) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	customer, ok := r.s.state.customers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &customer, nil
}

func (r *memoryCustomers) InsertIfAbsent(ctx context.Context, customer *models.Customer) (bool, error) {
	defer r.s.lockWrite(r.inTx)()
	customer.Email = models.NormalizeEmail(customer.Email)
	if _, taken := r.s.state.emails[customer.Email]; taken {
		return false, nil
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	now := r.s.now()
	customer.CreatedAt, customer.UpdatedAt = now, now
	r.s.state.customers[customer.ID] = *customer
	r.s.state.emails[customer.Email] = customer.ID
	return true, nil
}

func (r *memoryCustomers) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	defer r.s.lockWrite(r.inTx)()
	customer, ok := r.s.state.customers[id]
	if !ok {
		return models.ErrNotFound
	}
	customer.LastLogin = &at
	r.s.state.customers[id] = customer
	return nil
}

func (r *memoryCustomers) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var count int64
	for _, customer := range r.s.state.customers {
		if customer.Role == models.RoleCustomer {
			count++
		}
	}
	return count, nil
}

type memoryBookings struct {
	s    *MemoryStore
	inTx bool
}

func (r *memoryBookings) Create(ctx context.Context, booking *models.Booking) error {
	defer r.s.lockWrite(r.inTx)()
	if _, ok := r.s.state.customers[booking.CustomerID]; !ok {
		return models.StoreError("create booking", fmt.Errorf("customer %s does not exist", booking.CustomerID))
	}
	r.s.state.nextID++
	now := r.s.now()
	booking.ID = r.s.state.nextID
	booking.Status = models.BookingStatusPending
	booking.CreatedAt, booking.UpdatedAt = now, now
	if booking.AddOns == nil {
		booking.AddOns = models.BookedAddOns{}
	}
	r.s.state.bookings[booking.ID] = copyBooking(*booking)
	return nil
}

// withCustomer must be called with the lock held.
func (r *memoryBookings) withCustomer(b models.Booking) models.Booking {
	b = copyBooking(b)
	if customer, ok := r.s.state.customers[b.CustomerID]; ok {
		b.Customer = &customer
	}
	return b
}

func (r *memoryBookings) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	booking, ok := r.s.state.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	booking = r.withCustomer(booking)
	return &booking, nil
}

func (r *memoryBookings) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Booking, error) {
	return r.List(ctx, BookingFilter{CustomerID: customerID})
}

func (r *memoryBookings) List(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	bookings := []models.Booking{}
	for _, b := range r.s.state.bookings {
		if filter.CustomerID != uuid.Nil && b.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		bookings = append(bookings, r.withCustomer(b))
	}
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
		}
		return bookings[i].ID > bookings[j].ID
	})
	if filter.Limit > 0 && len(bookings) > filter.Limit {
		bookings = bookings[:filter.Limit]
	}
	return bookings, nil
}

func (r *memoryBookings) TransitionStatus(ctx context.Context, id uint, next models.BookingStatus) (*models.Booking, error) {
	defer r.s.lockWrite(r.inTx)()
	booking, ok := r.s.state.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if !booking.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, booking.Status, next)
	}
	booking.Status = next
	booking.UpdatedAt = r.s.now()
	r.s.state.bookings[id] = booking
	booking = r.withCustomer(booking)
	return &booking, nil
}

func (r *memoryBookings) Stats(ctx context.Context) (*models.BookingStats, error) {
	r.s.mu.RLock()
	stats := &models.BookingStats{ByStatus: map[models.BookingStatus]int64{}}
	for _, b := range r.s.state.bookings {
		stats.TotalBookings++
		stats.ByStatus[b.Status]++
		if b.Status == models.BookingStatusCompleted {
			stats.Completed++
			stats.Revenue += b.TotalPrice
		}
	}
	r.s.mu.RUnlock()

	customers, err := (&memoryCustomers{r.s, r.inTx}).Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.Customers = customers
	return stats, nil
}

type memoryAttempts struct {
	s    *MemoryStore
	inTx bool
}

func (r *memoryAttempts) Append(ctx context.Context, attempt *models.NotificationAttempt) error {
	defer r.s.lockWrite(r.inTx)()
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	attempt.CreatedAt = r.s.now()
	r.s.state.attempts = append(r.s.state.attempts, *attempt)
	return nil
}

func (r *memoryAttempts) ListByBooking(ctx context.Context, bookingID uint) ([]models.NotificationAttempt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	attempts := []models.NotificationAttempt{}
	for _, a := range r.s.state.attempts {
		if a.BookingID == bookingID {
			attempts = append(attempts, a)
		}
	}
	return attempts, nil
}

func (r *memoryAttempts) ListSince(ctx context.Context, since time.Time) ([]models.NotificationAttempt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	attempts := []models.NotificationAttempt{}
	for _, a := range r.s.state.attempts {
		if !a.CreatedAt.Before(since) {
			attempts = append(attempts, a)
		}
	}
	return attempts, nil
}
