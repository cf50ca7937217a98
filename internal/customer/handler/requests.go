package handler

import (
	"strings"
	"time"

	"fides/internal/customer/service"
	dErrors "fides/pkg/domain-errors"
	s "fides/pkg/string"
	"fides/pkg/validation"
)

// HTTP Request DTOs - contain JSON tags for API serialization.
// These are converted to service inputs before processing.

const dateOfBirthLayout = "2006-01-02"

type RegisterCustomerRequest struct {
	FirstName   string `json:"first_name" validate:"required,notblank,max=100"`
	LastName    string `json:"last_name" validate:"required,notblank,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=32"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
}

func (r *RegisterCustomerRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.FirstName, &r.LastName, &r.Email, &r.PhoneNumber, &r.DateOfBirth)
	r.Email = strings.ToLower(r.Email)
}

func (r *RegisterCustomerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request is required")
	}
	return validation.Validate(r)
}

// ToInput converts the HTTP request to a service input.
func (r *RegisterCustomerRequest) ToInput() (service.RegisterInput, error) {
	dob, err := time.Parse(dateOfBirthLayout, r.DateOfBirth)
	if err != nil {
		return service.RegisterInput{}, dErrors.New(dErrors.CodeValidation, "date_of_birth must be a date in 2006-01-02 format")
	}

	return service.RegisterInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		DateOfBirth: dob,
		Password:    r.Password,
	}, nil
}

type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *TokenRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *TokenRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request is required")
	}
	return validation.Validate(r)
}
