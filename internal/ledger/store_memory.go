package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"fides/internal/sentinel"
	id "fides/pkg/domain"
	"fides/pkg/requestcontext"
)

// MemoryCustomerStore keeps customers in RWMutex-guarded maps. It backs unit
// tests, the demo seeder, and FIDES_STORE=memory mode. Values are copied on
// the way in and out so callers never alias store state.
type MemoryCustomerStore struct {
	mu        sync.RWMutex
	customers map[id.CustomerID]*Customer
	byEmail   map[string]id.CustomerID
}

func NewMemoryCustomerStore() *MemoryCustomerStore {
	return &MemoryCustomerStore{
		customers: make(map[id.CustomerID]*Customer),
		byEmail:   make(map[string]id.CustomerID),
	}
}

var _ CustomerStore = (*MemoryCustomerStore)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func copyCustomer(c *Customer) *Customer {
	dup := *c
	return &dup
}

func (s *MemoryCustomerStore) Create(ctx context.Context, customer *Customer) error {
	if customer == nil {
		return fmt.Errorf("customer is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(customer.Email)
	if _, exists := s.byEmail[key]; exists {
		return fmt.Errorf("customer email taken: %w", sentinel.ErrDuplicate)
	}

	now := requestcontext.Now(ctx)
	if customer.ID.IsNil() {
		customer.ID = id.NewCustomerID()
	}
	customer.CreatedAt = now
	customer.UpdatedAt = now

	s.customers[customer.ID] = copyCustomer(customer)
	s.byEmail[key] = customer.ID
	return nil
}

func (s *MemoryCustomerStore) Get(_ context.Context, customerID id.CustomerID) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", customerID, sentinel.ErrNotFound)
	}
	return copyCustomer(c), nil
}

func (s *MemoryCustomerStore) GetByEmail(_ context.Context, email string) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customerID, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("customer by email: %w", sentinel.ErrNotFound)
	}
	return copyCustomer(s.customers[customerID]), nil
}

func (s *MemoryCustomerStore) CountByEmailDomain(_ context.Context, domain string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	domain = strings.ToLower(domain)
	count := 0
	for _, c := range s.customers {
		if c.EmailDomain() == domain {
			count++
		}
	}
	return count, nil
}

func (s *MemoryCustomerStore) HasDuplicate(_ context.Context, match DuplicateMatch, exclude id.CustomerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.customers {
		if c.ID == exclude {
			continue
		}
		if customerMatches(c, match) {
			return true, nil
		}
	}
	return false, nil
}

// customerMatches applies the inclusive-OR duplicate criteria. Empty fields
// on the criteria never match.
func customerMatches(c *Customer, match DuplicateMatch) bool {
	if match.Email != "" && normalizeEmail(c.Email) == normalizeEmail(match.Email) {
		return true
	}
	if match.FirstName != "" && strings.EqualFold(c.FirstName, match.FirstName) {
		return true
	}
	if match.LastName != "" && strings.EqualFold(c.LastName, match.LastName) {
		return true
	}
	if !match.DateOfBirth.IsZero() && sameDate(c.DateOfBirth, match.DateOfBirth) {
		return true
	}
	if match.PhoneNumber != "" && c.PhoneNumber == match.PhoneNumber {
		return true
	}
	return false
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s *MemoryCustomerStore) MarkFlaggedForFraud(ctx context.Context, customerID id.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[customerID]
	if !ok {
		return fmt.Errorf("customer %s: %w", customerID, sentinel.ErrNotFound)
	}
	c.FlaggedForFraud = true
	c.UpdatedAt = requestcontext.Now(ctx)
	return nil
}

func (s *MemoryCustomerStore) ListFlagged(_ context.Context) ([]*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flagged := make([]*Customer, 0)
	for _, c := range s.customers {
		if c.FlaggedForFraud {
			flagged = append(flagged, copyCustomer(c))
		}
	}
	sort.Slice(flagged, func(i, j int) bool {
		return flagged[i].CreatedAt.Before(flagged[j].CreatedAt)
	})
	return flagged, nil
}

// MemoryApplicationStore keeps loan applications and their fraud flags in
// memory. Transition and TransitionFlagged hold the write lock across the
// whole validate-mutate-flag unit, which gives the memory store the same
// atomicity the Postgres store gets from a row-locked transaction.
type MemoryApplicationStore struct {
	mu        sync.RWMutex
	apps      map[id.ApplicationID]*LoanApplication
	flags     map[id.ApplicationID][]*FraudFlag
	customers *MemoryCustomerStore // email lookups for admin filters
}

// NewMemoryApplicationStore wires the application store to the customer store
// it resolves email filters against.
func NewMemoryApplicationStore(customers *MemoryCustomerStore) *MemoryApplicationStore {
	return &MemoryApplicationStore{
		apps:      make(map[id.ApplicationID]*LoanApplication),
		flags:     make(map[id.ApplicationID][]*FraudFlag),
		customers: customers,
	}
}

var _ ApplicationStore = (*MemoryApplicationStore)(nil)

func copyApplication(a *LoanApplication) *LoanApplication {
	dup := *a
	return &dup
}

func copyFlag(f *FraudFlag) *FraudFlag {
	dup := *f
	return &dup
}

func (s *MemoryApplicationStore) Create(ctx context.Context, app *LoanApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(ctx, app)
}

func (s *MemoryApplicationStore) createLocked(ctx context.Context, app *LoanApplication) error {
	if app == nil {
		return fmt.Errorf("application is required")
	}
	now := requestcontext.Now(ctx)
	if app.ID.IsNil() {
		app.ID = id.NewApplicationID()
	}
	if app.DateApplied.IsZero() {
		app.DateApplied = now
	}
	app.DateUpdated = now

	s.apps[app.ID] = copyApplication(app)
	return nil
}

func (s *MemoryApplicationStore) CreateFlagged(ctx context.Context, app *LoanApplication, entries []FlagEntry) ([]*FraudFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.createLocked(ctx, app); err != nil {
		return nil, err
	}
	return s.appendFlagsLocked(ctx, app.ID, entries), nil
}

func (s *MemoryApplicationStore) appendFlagsLocked(ctx context.Context, appID id.ApplicationID, entries []FlagEntry) []*FraudFlag {
	now := requestcontext.Now(ctx)
	created := make([]*FraudFlag, 0, len(entries))
	for _, e := range entries {
		flag := &FraudFlag{
			ID:            id.NewFlagID(),
			ApplicationID: appID,
			Reason:        e.Reason,
			Comments:      e.Comments,
			CreatedAt:     now,
		}
		s.flags[appID] = append(s.flags[appID], flag)
		created = append(created, copyFlag(flag))
	}
	return created
}

func (s *MemoryApplicationStore) Get(_ context.Context, appID id.ApplicationID) (*LoanApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(appID)
}

func (s *MemoryApplicationStore) getLocked(appID id.ApplicationID) (*LoanApplication, error) {
	a, ok := s.apps[appID]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", appID, sentinel.ErrNotFound)
	}
	return copyApplication(a), nil
}

func (s *MemoryApplicationStore) CountSince(_ context.Context, customerID id.CustomerID, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, a := range s.apps {
		if a.CustomerID == customerID && !a.DateApplied.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryApplicationStore) List(ctx context.Context, filter ApplicationFilter) ([]*LoanApplication, error) {
	var emailOwner id.CustomerID
	filterByEmail := filter.CustomerEmail != ""
	if filterByEmail {
		owner, err := s.customers.GetByEmail(ctx, filter.CustomerEmail)
		if err != nil {
			// no such customer means an empty listing, not an error
			return []*LoanApplication{}, nil
		}
		emailOwner = owner.ID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*LoanApplication, 0)
	for _, a := range s.apps {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filterByEmail && a.CustomerID != emailOwner {
			continue
		}
		if !filter.AppliedAfter.IsZero() && a.DateApplied.Before(filter.AppliedAfter) {
			continue
		}
		if !filter.AppliedBefore.IsZero() && a.DateApplied.After(filter.AppliedBefore) {
			continue
		}
		matched = append(matched, copyApplication(a))
	}
	sortApplications(matched)
	return matched, nil
}

func (s *MemoryApplicationStore) ListByCustomer(_ context.Context, customerID id.CustomerID) ([]*LoanApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]*LoanApplication, 0)
	for _, a := range s.apps {
		if a.CustomerID == customerID {
			owned = append(owned, copyApplication(a))
		}
	}
	sortApplications(owned)
	return owned, nil
}

// sortApplications orders newest-first with the id as a tiebreaker so
// listings are deterministic.
func sortApplications(apps []*LoanApplication) {
	sort.Slice(apps, func(i, j int) bool {
		if !apps[i].DateApplied.Equal(apps[j].DateApplied) {
			return apps[i].DateApplied.After(apps[j].DateApplied)
		}
		return apps[i].ID.String() < apps[j].ID.String()
	})
}

func (s *MemoryApplicationStore) Transition(ctx context.Context, appID id.ApplicationID,
	validate func(*LoanApplication) error, mutate func(*LoanApplication)) (*LoanApplication, error) {

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(ctx, appID, validate, mutate)
}

func (s *MemoryApplicationStore) transitionLocked(ctx context.Context, appID id.ApplicationID,
	validate func(*LoanApplication) error, mutate func(*LoanApplication)) (*LoanApplication, error) {

	a, ok := s.apps[appID]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", appID, sentinel.ErrNotFound)
	}
	if err := validate(copyApplication(a)); err != nil {
		return nil, err
	}
	mutate(a)
	a.DateUpdated = requestcontext.Now(ctx)
	return copyApplication(a), nil
}

func (s *MemoryApplicationStore) TransitionFlagged(ctx context.Context, appID id.ApplicationID,
	validate func(*LoanApplication) error, mutate func(*LoanApplication),
	entries []FlagEntry) (*LoanApplication, []*FraudFlag, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.transitionLocked(ctx, appID, validate, mutate)
	if err != nil {
		return nil, nil, err
	}
	created := s.appendFlagsLocked(ctx, appID, entries)
	return updated, created, nil
}

func (s *MemoryApplicationStore) ListFlags(_ context.Context, appID id.ApplicationID) ([]*FraudFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flags := make([]*FraudFlag, 0, len(s.flags[appID]))
	for _, f := range s.flags[appID] {
		flags = append(flags, copyFlag(f))
	}
	return flags, nil
}

func (s *MemoryApplicationStore) CreateFlag(ctx context.Context, flag *FraudFlag) error {
	if flag == nil {
		return fmt.Errorf("flag is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.apps[flag.ApplicationID]; !ok {
		return fmt.Errorf("application %s: %w", flag.ApplicationID, sentinel.ErrNotFound)
	}
	if flag.ID.IsNil() {
		flag.ID = id.NewFlagID()
	}
	if flag.CreatedAt.IsZero() {
		flag.CreatedAt = requestcontext.Now(ctx)
	}
	s.flags[flag.ApplicationID] = append(s.flags[flag.ApplicationID], copyFlag(flag))
	return nil
}
