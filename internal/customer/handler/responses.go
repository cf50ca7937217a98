package handler

import (
	"time"

	"fides/internal/ledger"
)

// CustomerResponse is the public view of a customer. Password material and
// internal timestamps stay out of the envelope.
type CustomerResponse struct {
	ID              string `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	DateOfBirth     string `json:"date_of_birth"`
	FlaggedForFraud bool   `json:"flagged_for_fraud"`
	CreatedAt       string `json:"created_at"`
}

type CustomerListResponse struct {
	Customers []CustomerResponse `json:"customers"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func toCustomerResponse(c *ledger.Customer) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID.String(),
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		Email:           c.Email,
		PhoneNumber:     c.PhoneNumber,
		DateOfBirth:     c.DateOfBirth.Format("2006-01-02"),
		FlaggedForFraud: c.FlaggedForFraud,
		CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
