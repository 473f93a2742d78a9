package domain

import "errors"

var (
	ErrNotFound           = errors.New("not_found")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidTaxID       = errors.New("invalid_tax_id")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPaymentTerm = errors.New("invalid_payment_term")
	ErrDuplicateTaxID     = errors.New("duplicate_tax_id")
)
