// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "fides/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a CustomerID where an
// ApplicationID is expected.
type (
	CustomerID    uuid.UUID
	ApplicationID uuid.UUID
	FlagID        uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseCustomerID(s string) (CustomerID, error) {
	id, err := parseUUID(s, "customer ID")
	return CustomerID(id), err
}

func ParseApplicationID(s string) (ApplicationID, error) {
	id, err := parseUUID(s, "application ID")
	return ApplicationID(id), err
}

func ParseFlagID(s string) (FlagID, error) {
	id, err := parseUUID(s, "flag ID")
	return FlagID(id), err
}

// New functions - used by stores when assigning identity on create.

func NewCustomerID() CustomerID       { return CustomerID(uuid.New()) }
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }
func NewFlagID() FlagID               { return FlagID(uuid.New()) }

// String methods - for logging and debugging.

func (id CustomerID) String() string    { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id FlagID) String() string        { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id CustomerID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id FlagID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here so store lookups can return proper "not found"
// errors; use IsNil() at the service layer for business validation.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" is not a valid UUID")
	}
	return parsed, nil
}
