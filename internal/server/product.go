package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/quipuerp/quipu/internal/product/domain"
	"github.com/quipuerp/quipu/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type createProductRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Unit        string  `json:"unit"`
	ListPrice   string  `json:"list_price"`
	TaxCode     string  `json:"tax_code"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	listPrice, err := decimal.NewFromString(strings.TrimSpace(req.ListPrice))
	if err != nil {
		AbortWithError(c, newValidationError("list_price", "invalid_price", "invalid list price"))
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), productdomain.CreateRequest{
		Code:        strings.TrimSpace(req.Code),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Unit:        productdomain.Unit(strings.ToUpper(strings.TrimSpace(req.Unit))),
		ListPrice:   listPrice,
		TaxCode:     strings.TrimSpace(req.TaxCode),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name   string `form:"name"`
		Code   string `form:"code"`
		Active string `form:"active"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active, err := parseOptionalBool(query.Active)
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
		Name:      strings.TrimSpace(query.Name),
		Code:      strings.TrimSpace(query.Code),
		Active:    active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.productSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type adjustStockRequest struct {
	Delta string `json:"delta"`
}

func (s *Server) AdjustProductStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	delta, err := decimal.NewFromString(strings.TrimSpace(req.Delta))
	if err != nil {
		AbortWithError(c, newValidationError("delta", "invalid_delta", "invalid delta"))
		return
	}

	resp, err := s.productSvc.AdjustStock(c.Request.Context(), strings.TrimSpace(c.Param("id")), delta)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isProductValidationError(err error) bool {
	switch err {
	case productdomain.ErrInvalidID,
		productdomain.ErrInvalidCode,
		productdomain.ErrInvalidName,
		productdomain.ErrInvalidPrice:
		return true
	default:
		return false
	}
}
