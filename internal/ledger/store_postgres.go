package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"fides/internal/sentinel"
	id "fides/pkg/domain"
	"fides/pkg/requestcontext"
)

const pgUniqueViolation = "23505"

// PostgresCustomerStore persists customers in PostgreSQL.
type PostgresCustomerStore struct {
	db *sql.DB
}

func NewPostgresCustomerStore(db *sql.DB) *PostgresCustomerStore {
	return &PostgresCustomerStore{db: db}
}

var _ CustomerStore = (*PostgresCustomerStore)(nil)

const customerColumns = `id, first_name, last_name, email, phone_number,
	date_of_birth, password_hash, flagged_for_fraud, created_at, updated_at`

func (s *PostgresCustomerStore) Create(ctx context.Context, customer *Customer) error {
	if customer == nil {
		return fmt.Errorf("customer is required")
	}
	now := requestcontext.Now(ctx)
	if customer.ID.IsNil() {
		customer.ID = id.NewCustomerID()
	}
	customer.CreatedAt = now
	customer.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(customer.ID), customer.FirstName, customer.LastName,
		customer.Email, customer.PhoneNumber, customer.DateOfBirth,
		customer.PasswordHash, customer.FlaggedForFraud,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("customer email taken: %w", sentinel.ErrDuplicate)
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (s *PostgresCustomerStore) Get(ctx context.Context, customerID id.CustomerID) (*Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+` FROM customers WHERE id = $1`,
		uuid.UUID(customerID),
	)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %s: %w", customerID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return customer, nil
}

func (s *PostgresCustomerStore) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+` FROM customers WHERE LOWER(email) = LOWER($1)`,
		strings.TrimSpace(email),
	)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer by email: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get customer by email: %w", err)
	}
	return customer, nil
}

func (s *PostgresCustomerStore) CountByEmailDomain(ctx context.Context, domain string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM customers
		WHERE LOWER(SPLIT_PART(email, '@', 2)) = LOWER($1)`,
		domain,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count customers by domain: %w", err)
	}
	return count, nil
}

func (s *PostgresCustomerStore) HasDuplicate(ctx context.Context, match DuplicateMatch, exclude id.CustomerID) (bool, error) {
	// Inclusive OR across the populated criteria fields; empty fields are
	// neutralized by comparing against NULL, which never matches.
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM customers
			WHERE id <> $1
			  AND (  LOWER(email) = LOWER(NULLIF($2, ''))
			      OR LOWER(first_name) = LOWER(NULLIF($3, ''))
			      OR LOWER(last_name) = LOWER(NULLIF($4, ''))
			      OR date_of_birth = $5
			      OR phone_number = NULLIF($6, ''))
		)`,
		uuid.UUID(exclude), match.Email, match.FirstName, match.LastName,
		nullDate(match.DateOfBirth), match.PhoneNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duplicate customers: %w", err)
	}
	return exists, nil
}

func (s *PostgresCustomerStore) MarkFlaggedForFraud(ctx context.Context, customerID id.CustomerID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers SET flagged_for_fraud = TRUE, updated_at = $2
		WHERE id = $1`,
		uuid.UUID(customerID), requestcontext.Now(ctx),
	)
	if err != nil {
		return fmt.Errorf("flag customer: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("flag customer rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("customer %s: %w", customerID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresCustomerStore) ListFlagged(ctx context.Context) ([]*Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+` FROM customers
		WHERE flagged_for_fraud ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list flagged customers: %w", err)
	}
	defer rows.Close()

	var flagged []*Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flagged customer: %w", err)
		}
		flagged = append(flagged, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list flagged customers: %w", err)
	}
	return flagged, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*Customer, error) {
	var (
		c        Customer
		rawID    uuid.UUID
		rawEmail string
	)
	err := row.Scan(&rawID, &c.FirstName, &c.LastName, &rawEmail,
		&c.PhoneNumber, &c.DateOfBirth, &c.PasswordHash,
		&c.FlaggedForFraud, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ID = id.CustomerID(rawID)
	c.Email = rawEmail
	return &c, nil
}

func nullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// PostgresApplicationStore persists loan applications and fraud flags.
// Status transitions lock the application row inside one transaction so the
// validate-mutate-flag sequence is atomic even across concurrent admins.
type PostgresApplicationStore struct {
	db *sql.DB
}

func NewPostgresApplicationStore(db *sql.DB) *PostgresApplicationStore {
	return &PostgresApplicationStore{db: db}
}

var _ ApplicationStore = (*PostgresApplicationStore)(nil)

const applicationColumns = `id, customer_id, amount, purpose, status, date_applied, date_updated`

func (s *PostgresApplicationStore) Create(ctx context.Context, app *LoanApplication) error {
	return insertApplication(ctx, s.db, app)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertApplication(ctx context.Context, db execer, app *LoanApplication) error {
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

	_, err := db.ExecContext(ctx, `
		INSERT INTO loan_applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(app.ID), uuid.UUID(app.CustomerID), app.Amount,
		string(app.Purpose), string(app.Status), app.DateApplied, app.DateUpdated,
	)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (s *PostgresApplicationStore) CreateFlagged(ctx context.Context, app *LoanApplication, entries []FlagEntry) ([]*FraudFlag, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create flagged tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	if err := insertApplication(ctx, tx, app); err != nil {
		return nil, err
	}
	flags, err := insertFlags(ctx, tx, app.ID, entries)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create flagged tx: %w", err)
	}
	return flags, nil
}

func insertFlags(ctx context.Context, tx *sql.Tx, appID id.ApplicationID, entries []FlagEntry) ([]*FraudFlag, error) {
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
		_, err := tx.ExecContext(ctx, `
			INSERT INTO fraud_flags (id, application_id, reason, comments, resolved, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.UUID(flag.ID), uuid.UUID(flag.ApplicationID),
			string(flag.Reason), flag.Comments, flag.Resolved, flag.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("create fraud flag: %w", err)
		}
		created = append(created, flag)
	}
	return created, nil
}

func (s *PostgresApplicationStore) Get(ctx context.Context, appID id.ApplicationID) (*LoanApplication, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+` FROM loan_applications WHERE id = $1`,
		uuid.UUID(appID),
	)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("application %s: %w", appID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

func (s *PostgresApplicationStore) CountSince(ctx context.Context, customerID id.CustomerID, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM loan_applications
		WHERE customer_id = $1 AND date_applied >= $2`,
		uuid.UUID(customerID), since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return count, nil
}

func (s *PostgresApplicationStore) List(ctx context.Context, filter ApplicationFilter) ([]*LoanApplication, error) {
	query := `
		SELECT a.id, a.customer_id, a.amount, a.purpose, a.status, a.date_applied, a.date_updated
		FROM loan_applications a
		JOIN customers c ON c.id = a.customer_id
		WHERE ($1 = '' OR a.status = $1)
		  AND ($2 = '' OR LOWER(c.email) = LOWER($2))
		  AND ($3::timestamptz IS NULL OR a.date_applied >= $3)
		  AND ($4::timestamptz IS NULL OR a.date_applied <= $4)
		ORDER BY a.date_applied DESC, a.id`
	rows, err := s.db.QueryContext(ctx, query,
		string(filter.Status), filter.CustomerEmail,
		nullDate(filter.AppliedAfter), nullDate(filter.AppliedBefore),
	)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (s *PostgresApplicationStore) ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]*LoanApplication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+applicationColumns+` FROM loan_applications
		WHERE customer_id = $1
		ORDER BY date_applied DESC, id`,
		uuid.UUID(customerID),
	)
	if err != nil {
		return nil, fmt.Errorf("list applications by customer: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func collectApplications(rows *sql.Rows) ([]*LoanApplication, error) {
	apps := make([]*LoanApplication, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

func scanApplication(row rowScanner) (*LoanApplication, error) {
	var (
		a          LoanApplication
		rawID      uuid.UUID
		rawOwner   uuid.UUID
		rawPurpose string
		rawStatus  string
	)
	err := row.Scan(&rawID, &rawOwner, &a.Amount, &rawPurpose, &rawStatus,
		&a.DateApplied, &a.DateUpdated)
	if err != nil {
		return nil, err
	}
	a.ID = id.ApplicationID(rawID)
	a.CustomerID = id.CustomerID(rawOwner)
	a.Purpose = Purpose(rawPurpose)
	a.Status = Status(rawStatus)
	return &a, nil
}

func (s *PostgresApplicationStore) Transition(ctx context.Context, appID id.ApplicationID,
	validate func(*LoanApplication) error, mutate func(*LoanApplication)) (*LoanApplication, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	app, err := transitionInTx(ctx, tx, appID, validate, mutate)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition tx: %w", err)
	}
	return app, nil
}

func (s *PostgresApplicationStore) TransitionFlagged(ctx context.Context, appID id.ApplicationID,
	validate func(*LoanApplication) error, mutate func(*LoanApplication),
	entries []FlagEntry) (*LoanApplication, []*FraudFlag, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transition flagged tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	app, err := transitionInTx(ctx, tx, appID, validate, mutate)
	if err != nil {
		return nil, nil, err
	}
	flags, err := insertFlags(ctx, tx, appID, entries)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit transition flagged tx: %w", err)
	}
	return app, flags, nil
}

// transitionInTx loads the row FOR UPDATE, runs the caller's validate and
// mutate callbacks, and writes the result back. Domain errors from validate
// abort the transaction without touching the row.
func transitionInTx(ctx context.Context, tx *sql.Tx, appID id.ApplicationID,
	validate func(*LoanApplication) error, mutate func(*LoanApplication)) (*LoanApplication, error) {

	row := tx.QueryRowContext(ctx, `
		SELECT `+applicationColumns+` FROM loan_applications
		WHERE id = $1 FOR UPDATE`,
		uuid.UUID(appID),
	)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("application %s: %w", appID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("lock application: %w", err)
	}

	if err := validate(app); err != nil {
		return nil, err
	}
	mutate(app)
	app.DateUpdated = requestcontext.Now(ctx)

	_, err = tx.ExecContext(ctx, `
		UPDATE loan_applications SET status = $2, date_updated = $3
		WHERE id = $1`,
		uuid.UUID(app.ID), string(app.Status), app.DateUpdated,
	)
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	return app, nil
}

func (s *PostgresApplicationStore) ListFlags(ctx context.Context, appID id.ApplicationID) ([]*FraudFlag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, reason, comments, resolved, created_at
		FROM fraud_flags WHERE application_id = $1
		ORDER BY created_at, id`,
		uuid.UUID(appID),
	)
	if err != nil {
		return nil, fmt.Errorf("list fraud flags: %w", err)
	}
	defer rows.Close()

	flags := make([]*FraudFlag, 0)
	for rows.Next() {
		var (
			f        FraudFlag
			rawID    uuid.UUID
			rawApp   uuid.UUID
			rawCause string
		)
		if err := rows.Scan(&rawID, &rawApp, &rawCause, &f.Comments, &f.Resolved, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fraud flag: %w", err)
		}
		f.ID = id.FlagID(rawID)
		f.ApplicationID = id.ApplicationID(rawApp)
		f.Reason = ReasonCode(rawCause)
		flags = append(flags, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fraud flags: %w", err)
	}
	return flags, nil
}

func (s *PostgresApplicationStore) CreateFlag(ctx context.Context, flag *FraudFlag) error {
	if flag == nil {
		return fmt.Errorf("flag is required")
	}
	if flag.ID.IsNil() {
		flag.ID = id.NewFlagID()
	}
	if flag.CreatedAt.IsZero() {
		flag.CreatedAt = requestcontext.Now(ctx)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fraud_flags (id, application_id, reason, comments, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(flag.ID), uuid.UUID(flag.ApplicationID),
		string(flag.Reason), flag.Comments, flag.Resolved, flag.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create fraud flag: %w", err)
	}
	return nil
}
