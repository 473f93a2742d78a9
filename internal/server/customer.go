package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/quipuerp/quipu/internal/customer/domain"
	"github.com/quipuerp/quipu/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type createCustomerRequest struct {
	Name        string `json:"name"`
	TaxID       string `json:"tax_id"`
	Email       string `json:"email"`
	PaymentTerm string `json:"payment_term"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:        strings.TrimSpace(req.Name),
		TaxID:       strings.TrimSpace(req.TaxID),
		Email:       strings.TrimSpace(req.Email),
		PaymentTerm: customerdomain.PaymentTerm(strings.ToUpper(strings.TrimSpace(req.PaymentTerm))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCustomers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name        string `form:"name"`
		TaxID       string `form:"tax_id"`
		CreatedFrom string `form:"created_from"`
		CreatedTo   string `form:"created_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, err := parseOptionalTime(query.CreatedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("created_from", "invalid_created_from", "invalid created_from"))
		return
	}

	createdTo, err := parseOptionalTime(query.CreatedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("created_to", "invalid_created_to", "invalid created_to"))
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		PageToken:   query.PageToken,
		PageSize:    query.PageSize,
		Name:        strings.TrimSpace(query.Name),
		TaxID:       strings.TrimSpace(query.TaxID),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	resp, err := s.customerSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateCustomerCreditRequest struct {
	CreditEnabled  *bool   `json:"credit_enabled,omitempty"`
	CreditLimitPEN *string `json:"credit_limit_pen,omitempty"`
	CreditLimitUSD *string `json:"credit_limit_usd,omitempty"`
}

func (s *Server) UpdateCustomerCredit(c *gin.Context) {
	var req updateCustomerCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	limitPEN, err := parseOptionalDecimal(req.CreditLimitPEN)
	if err != nil {
		AbortWithError(c, newValidationError("credit_limit_pen", "invalid_credit_limit", "invalid credit limit"))
		return
	}
	limitUSD, err := parseOptionalDecimal(req.CreditLimitUSD)
	if err != nil {
		AbortWithError(c, newValidationError("credit_limit_usd", "invalid_credit_limit", "invalid credit limit"))
		return
	}

	resp, err := s.customerSvc.UpdateCredit(c.Request.Context(), customerdomain.UpdateCreditRequest{
		ID:             strings.TrimSpace(c.Param("id")),
		CreditEnabled:  req.CreditEnabled,
		CreditLimitPEN: limitPEN,
		CreditLimitUSD: limitUSD,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseOptionalDecimal(raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func isCustomerValidationError(err error) bool {
	switch err {
	case customerdomain.ErrInvalidID,
		customerdomain.ErrInvalidName,
		customerdomain.ErrInvalidTaxID,
		customerdomain.ErrInvalidEmail,
		customerdomain.ErrInvalidPaymentTerm:
		return true
	default:
		return false
	}
}
