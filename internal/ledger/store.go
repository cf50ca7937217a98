package ledger

import (
	"context"
	"time"

	id "fides/pkg/domain"
)

// CustomerStore persists customers.
// Error Contract: Get methods wrap sentinel.ErrNotFound when the customer
// does not exist; Create wraps sentinel.ErrDuplicate on an email collision.
type CustomerStore interface {
	Create(ctx context.Context, customer *Customer) error
	Get(ctx context.Context, customerID id.CustomerID) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)

	// CountByEmailDomain counts registered customers sharing the given
	// email domain, owner included. Feeds the suspicious-domain rule.
	CountByEmailDomain(ctx context.Context, domain string) (int, error)

	// HasDuplicate reports whether any customer other than exclude matches
	// the criteria on at least one populated field (inclusive OR).
	HasDuplicate(ctx context.Context, match DuplicateMatch, exclude id.CustomerID) (bool, error)

	// MarkFlaggedForFraud permanently blocks the customer from submitting.
	MarkFlaggedForFraud(ctx context.Context, customerID id.CustomerID) error

	ListFlagged(ctx context.Context) ([]*Customer, error)
}

// DuplicateMatch carries the fields the duplicate-account rule compares.
// Empty fields do not participate in the match.
type DuplicateMatch struct {
	Email       string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	PhoneNumber string
}

// MatchFor builds the duplicate criteria from a customer record.
func MatchFor(c *Customer) DuplicateMatch {
	return DuplicateMatch{
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		DateOfBirth: c.DateOfBirth,
		PhoneNumber: c.PhoneNumber,
	}
}

// ApplicationFilter narrows admin listings. Zero values mean "no constraint".
type ApplicationFilter struct {
	Status        Status
	CustomerEmail string
	AppliedAfter  time.Time
	AppliedBefore time.Time
}

// ApplicationStore persists loan applications and their fraud flags.
//
// Status mutations go through Transition/TransitionFlagged so each store can
// make the validate-then-mutate sequence atomic: the Postgres store locks the
// row inside one transaction, the memory store holds its mutex across the
// unit. The validate callback sees the current row and returns a domain error
// to abort without mutating; flags passed to the flagged variants are created
// in the same unit as the status change, never partially.
//
// Error Contract: Get/Transition methods wrap sentinel.ErrNotFound when the
// application does not exist.
type ApplicationStore interface {
	// Create persists a CLEAN submission as-is, assigning identity.
	Create(ctx context.Context, app *LoanApplication) error

	// CreateFlagged persists a fraud-struck candidate together with one
	// FraudFlag per entry in a single atomic unit.
	CreateFlagged(ctx context.Context, app *LoanApplication, entries []FlagEntry) ([]*FraudFlag, error)

	Get(ctx context.Context, appID id.ApplicationID) (*LoanApplication, error)

	// CountSince counts the customer's applications with DateApplied at or
	// after since. Feeds the cooldown gate and the too-many-applications rule.
	CountSince(ctx context.Context, customerID id.CustomerID, since time.Time) (int, error)

	List(ctx context.Context, filter ApplicationFilter) ([]*LoanApplication, error)
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*LoanApplication, error)

	// Transition atomically applies mutate to the application after validate
	// accepts its current state.
	Transition(ctx context.Context, appID id.ApplicationID,
		validate func(*LoanApplication) error,
		mutate func(*LoanApplication)) (*LoanApplication, error)

	// TransitionFlagged is Transition plus flag creation in the same unit.
	TransitionFlagged(ctx context.Context, appID id.ApplicationID,
		validate func(*LoanApplication) error,
		mutate func(*LoanApplication),
		entries []FlagEntry) (*LoanApplication, []*FraudFlag, error)

	ListFlags(ctx context.Context, appID id.ApplicationID) ([]*FraudFlag, error)
	CreateFlag(ctx context.Context, flag *FraudFlag) error
}
