package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opdev7/LendTez/internal/contract"
)

// respondErr maps contract error kinds onto HTTP statuses. Anything outside
// the four kinds is a host/ledger failure, not a caller mistake.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, contract.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, contract.ErrPaused):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, contract.ErrIllegalTxAmount), errors.Is(err, contract.ErrIllegalArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "ledger_error"})
	}
}
