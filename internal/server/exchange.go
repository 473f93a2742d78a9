package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// GetExchangeRate returns the PEN/USD sale rate for a date, today when
// omitted. The service never fails: provider outages surface as the
// configured fallback rate with the fallback flag set.
func (s *Server) GetExchangeRate(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = time.Now().UTC().Format(dateOnlyLayout)
	} else if _, err := time.Parse(dateOnlyLayout, date); err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "invalid date"))
		return
	}

	rate := s.exchangeSvc.RateForDate(c.Request.Context(), date)
	if rate.Fallback {
		s.obsMetrics.RecordExchangeFallback(c.Request.Context(), "provider_unavailable")
	}

	c.JSON(http.StatusOK, gin.H{"data": rate})
}
