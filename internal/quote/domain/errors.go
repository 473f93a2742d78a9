package domain

import (
	"errors"
	"fmt"

	"github.com/quipuerp/quipu/internal/credit"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("not_found")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidDocType  = errors.New("invalid_doc_type")
	ErrEmptyDocument   = errors.New("empty_document")
	ErrNotEditable     = errors.New("not_editable")
	ErrQuoteConverted  = errors.New("quote_converted")
	ErrNotAQuote       = errors.New("not_a_quote")
	ErrNotSubmitted    = errors.New("not_submitted")
	// ErrRenderUnavailable reports a deployment without a PDF renderer wired.
	ErrRenderUnavailable = errors.New("render_unavailable")
)

// CreditExceededError carries the two amounts the user must see when a
// submission fails the credit check.
type CreditExceededError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *CreditExceededError) Error() string {
	return fmt.Sprintf("credit exceeded: requested %s, available %s",
		e.Requested.StringFixed(2), e.Available.StringFixed(2))
}

func (e *CreditExceededError) Unwrap() error { return credit.ErrExceeded }
