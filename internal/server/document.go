package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quipuerp/quipu/internal/credit"
	"github.com/quipuerp/quipu/internal/pricing"
	quotedomain "github.com/quipuerp/quipu/internal/quote/domain"
	"github.com/quipuerp/quipu/pkg/db/pagination"
)

type documentLineRequest struct {
	ProductID       string  `json:"product_id,omitempty"`
	Code            string  `json:"code,omitempty"`
	Name            string  `json:"name,omitempty"`
	Unit            string  `json:"unit,omitempty"`
	BasePrice       string  `json:"base_price,omitempty"`
	Quantity        string  `json:"quantity"`
	SalePrice       *string `json:"sale_price,omitempty"`
	DiscountPercent *string `json:"discount_percent,omitempty"`
}

type createDocumentRequest struct {
	CustomerID   string                `json:"customer_id"`
	Currency     string                `json:"currency"`
	TaxCode      string                `json:"tax_code"`
	ValidUntil   *time.Time            `json:"valid_until,omitempty"`
	DeliveryDate *time.Time            `json:"delivery_date,omitempty"`
	Notes        string                `json:"notes,omitempty"`
	Lines        []documentLineRequest `json:"lines"`
}

func (s *Server) CreateQuote(c *gin.Context) {
	s.createDocument(c, quotedomain.DocTypeQuote)
}

func (s *Server) CreateOrder(c *gin.Context) {
	s.createDocument(c, quotedomain.DocTypeOrder)
}

func (s *Server) createDocument(c *gin.Context, docType quotedomain.DocType) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.documentSvc.Create(c.Request.Context(), quotedomain.CreateRequest{
		DocType:      docType,
		CustomerID:   strings.TrimSpace(req.CustomerID),
		Currency:     pricing.Currency(strings.ToUpper(strings.TrimSpace(req.Currency))),
		TaxCode:      pricing.TaxCode(strings.ToUpper(strings.TrimSpace(req.TaxCode))),
		ValidUntil:   req.ValidUntil,
		DeliveryDate: req.DeliveryDate,
		Notes:        strings.TrimSpace(req.Notes),
		Lines:        toLineInputs(req.Lines),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordDocumentCreated(c.Request.Context(), string(resp.DocType))

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListQuotes(c *gin.Context) {
	s.listDocuments(c, quotedomain.DocTypeQuote)
}

func (s *Server) ListOrders(c *gin.Context) {
	s.listDocuments(c, quotedomain.DocTypeOrder)
}

func (s *Server) listDocuments(c *gin.Context, docType quotedomain.DocType) {
	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.documentSvc.List(c.Request.Context(), quotedomain.ListRequest{
		PageToken:  query.PageToken,
		PageSize:   query.PageSize,
		DocType:    docType,
		Status:     quotedomain.Status(strings.ToUpper(strings.TrimSpace(query.Status))),
		CustomerID: strings.TrimSpace(query.CustomerID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDocumentByID(c *gin.Context) {
	resp, err := s.documentSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateDocumentLinesRequest struct {
	Currency string                `json:"currency,omitempty"`
	TaxCode  string                `json:"tax_code,omitempty"`
	Lines    []documentLineRequest `json:"lines"`
}

func (s *Server) UpdateDocumentLines(c *gin.Context) {
	var req updateDocumentLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.documentSvc.UpdateLines(c.Request.Context(), quotedomain.UpdateLinesRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		Currency: pricing.Currency(strings.ToUpper(strings.TrimSpace(req.Currency))),
		TaxCode:  pricing.TaxCode(strings.ToUpper(strings.TrimSpace(req.TaxCode))),
		Lines:    toLineInputs(req.Lines),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SubmitDocument(c *gin.Context) {
	resp, err := s.documentSvc.Submit(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		s.recordSubmitFailure(c, err)
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordDocumentSubmitted(c.Request.Context(), string(resp.DocType), string(resp.Currency))

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ConvertQuote(c *gin.Context) {
	resp, err := s.documentSvc.Convert(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordDocumentCreated(c.Request.Context(), string(resp.DocType))

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RenderQuotePDF(c *gin.Context) {
	reader, err := s.documentSvc.RenderPDF(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

func (s *Server) recordSubmitFailure(c *gin.Context, err error) {
	if errors.Is(err, credit.ErrExceeded) {
		s.obsMetrics.RecordCreditDenied(c.Request.Context(), "")
	}
}

func toLineInputs(lines []documentLineRequest) []quotedomain.LineInput {
	out := make([]quotedomain.LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, quotedomain.LineInput{
			ProductID:       strings.TrimSpace(line.ProductID),
			Code:            strings.TrimSpace(line.Code),
			Name:            strings.TrimSpace(line.Name),
			Unit:            strings.TrimSpace(line.Unit),
			BasePrice:       strings.TrimSpace(line.BasePrice),
			Quantity:        strings.TrimSpace(line.Quantity),
			SalePrice:       line.SalePrice,
			DiscountPercent: line.DiscountPercent,
		})
	}
	return out
}

func isDocumentValidationError(err error) bool {
	switch err {
	case quotedomain.ErrInvalidID,
		quotedomain.ErrInvalidCustomer,
		quotedomain.ErrInvalidDocType,
		quotedomain.ErrEmptyDocument,
		quotedomain.ErrNotAQuote:
		return true
	default:
		return false
	}
}
