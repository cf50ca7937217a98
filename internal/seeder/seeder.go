package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"fides/internal/audit"
	"fides/internal/ledger"
	"fides/pkg/secrets"
)

// Seeder populates in-memory stores with demo data so the API is explorable
// without a registration round trip. All demo accounts share one password.
const demoPassword = "fides-demo-password"

type Seeder struct {
	customers    ledger.CustomerStore
	applications ledger.ApplicationStore
	audit        audit.Store
	logger       *slog.Logger
}

// New creates a new seeder.
func New(customers ledger.CustomerStore, applications ledger.ApplicationStore, auditStore audit.Store, logger *slog.Logger) *Seeder {
	return &Seeder{
		customers:    customers,
		applications: applications,
		audit:        auditStore,
		logger:       logger,
	}
}

// SeedAll populates all stores with demo data.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo data...")

	customers, err := s.seedCustomers(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed customers: %w", err)
	}

	apps, err := s.seedApplications(ctx, customers)
	if err != nil {
		return fmt.Errorf("failed to seed loan applications: %w", err)
	}

	if err := s.seedAuditEvents(ctx, apps); err != nil {
		return fmt.Errorf("failed to seed audit events: %w", err)
	}

	s.logger.Info("demo data seeded successfully",
		"customers", len(customers),
		"applications", len(apps),
		"password", demoPassword,
	)

	return nil
}

func (s *Seeder) seedCustomers(ctx context.Context) ([]*ledger.Customer, error) {
	hash, err := secrets.Hash(demoPassword)
	if err != nil {
		return nil, err
	}

	demo := []struct {
		email     string
		firstName string
		lastName  string
		birthYear int
		flagged   bool
	}{
		{"alice@example.com", "Alice", "Anderson", 1990, false},
		{"bob@example.com", "Bob", "Brown", 1985, false},
		{"charlie@example.com", "Charlie", "Chen", 1978, false},
		{"diana@example.com", "Diana", "Davis", 1995, false},
		{"eve@example.com", "Eve", "Evans", 1982, true},
		{"frank@example.com", "Frank", "Foster", 2002, false},
	}

	var customers []*ledger.Customer
	for _, d := range demo {
		customer := &ledger.Customer{
			FirstName:    d.firstName,
			LastName:     d.lastName,
			Email:        d.email,
			PhoneNumber:  "+15550100",
			DateOfBirth:  time.Date(d.birthYear, 6, 15, 0, 0, 0, 0, time.UTC),
			PasswordHash: hash,
		}
		if err := s.customers.Create(ctx, customer); err != nil {
			return nil, err
		}
		if d.flagged {
			if err := s.customers.MarkFlaggedForFraud(ctx, customer.ID); err != nil {
				return nil, err
			}
		}
		customers = append(customers, customer)
	}

	return customers, nil
}

func (s *Seeder) seedApplications(ctx context.Context, customers []*ledger.Customer) ([]*ledger.LoanApplication, error) {
	now := time.Now().UTC()

	demo := []struct {
		customerIdx int
		amount      string
		purpose     ledger.Purpose
		status      ledger.Status
		daysAgo     int
		reasons     []ledger.ReasonCode
	}{
		{0, "25000", ledger.PurposePersonal, ledger.StatusPending, 1, nil},
		{1, "120000", ledger.PurposeBusiness, ledger.StatusApproved, 7, nil},
		{2, "8000", ledger.PurposeEducation, ledger.StatusRejected, 14, nil},
		{3, "45000", ledger.PurposeMedical, ledger.StatusPending, 2, nil},
		{4, "6000000", ledger.PurposeBusiness, ledger.StatusFlagged, 3, []ledger.ReasonCode{ledger.ReasonAmountExceedsLimit}},
		{5, "15000", ledger.PurposeOther, ledger.StatusPending, 1, nil},
	}

	var apps []*ledger.LoanApplication
	for _, d := range demo {
		if d.customerIdx >= len(customers) {
			continue
		}
		amount, err := decimal.NewFromString(d.amount)
		if err != nil {
			return nil, err
		}

		applied := now.AddDate(0, 0, -d.daysAgo)
		app := &ledger.LoanApplication{
			CustomerID:  customers[d.customerIdx].ID,
			Amount:      amount,
			Purpose:     d.purpose,
			Status:      ledger.StatusPending,
			DateApplied: applied,
			DateUpdated: applied,
		}

		if d.status == ledger.StatusFlagged {
			app.Status = ledger.StatusFlagged
			entries := make([]ledger.FlagEntry, 0, len(d.reasons))
			for _, r := range d.reasons {
				entries = append(entries, ledger.FlagEntry{Reason: r, Comments: "seeded demo flag"})
			}
			if _, err := s.applications.CreateFlagged(ctx, app, entries); err != nil {
				return nil, err
			}
		} else {
			if err := s.applications.Create(ctx, app); err != nil {
				return nil, err
			}
			if d.status != ledger.StatusPending {
				target := d.status
				if _, err := s.applications.Transition(ctx, app.ID,
					func(*ledger.LoanApplication) error { return nil },
					func(a *ledger.LoanApplication) {
						a.Status = target
						a.DateUpdated = applied.Add(24 * time.Hour)
					}); err != nil {
					return nil, err
				}
				app.Status = target
			}
		}

		apps = append(apps, app)
	}

	return apps, nil
}

func (s *Seeder) seedAuditEvents(ctx context.Context, apps []*ledger.LoanApplication) error {
	for _, app := range apps {
		event := audit.Event{
			Timestamp:     app.DateApplied,
			Action:        string(audit.EventLoanSubmitted),
			CustomerID:    app.CustomerID.String(),
			ApplicationID: app.ID.String(),
			Amount:        decimal.NewNullDecimal(app.Amount),
			Actor:         "seeder",
			Detail:        "seeded demo data",
		}
		if err := s.audit.Append(ctx, event); err != nil {
			return err
		}

		var followup audit.AuditEvent
		switch app.Status {
		case ledger.StatusApproved:
			followup = audit.EventLoanApproved
		case ledger.StatusRejected:
			followup = audit.EventLoanRejected
		case ledger.StatusFlagged:
			followup = audit.EventLoanFlagged
		default:
			continue
		}

		event.Action = string(followup)
		event.Timestamp = app.DateUpdated
		if err := s.audit.Append(ctx, event); err != nil {
			return err
		}
	}

	return nil
}
