package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PostgresStore persists audit events in the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

const eventColumns = `occurred_at, action, customer_id, application_id,
	amount, reasons, actor, request_id, detail`

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (`+eventColumns+`)
		VALUES ($1, $2, NULLIF($3, '')::uuid, NULLIF($4, '')::uuid, $5, $6, $7, $8, $9)`,
		event.Timestamp, event.Action, event.CustomerID, event.ApplicationID,
		event.Amount, strings.Join(event.Reasons, ","),
		event.Actor, event.RequestID, event.Detail,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByApplication(ctx context.Context, applicationID string) ([]Event, error) {
	return s.list(ctx, `application_id = $1::uuid`, applicationID)
}

func (s *PostgresStore) ListByCustomer(ctx context.Context, customerID string) ([]Event, error) {
	return s.list(ctx, `customer_id = $1::uuid`, customerID)
}

func (s *PostgresStore) list(ctx context.Context, where, arg string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM audit_events
		WHERE `+where+`
		ORDER BY occurred_at, id`,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e          Event
			customer   sql.NullString
			app        sql.NullString
			reasonList string
		)
		if err := rows.Scan(
			&e.Timestamp, &e.Action, &customer, &app,
			&e.Amount, &reasonList, &e.Actor, &e.RequestID, &e.Detail,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.CustomerID = customer.String
		e.ApplicationID = app.String
		if reasonList != "" {
			e.Reasons = strings.Split(reasonList, ",")
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
