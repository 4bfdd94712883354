package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opdev7/LendTez/internal/http/middleware"
)

type TransferService interface {
	AcceptTransfer(ctx context.Context, sender string, attached uint64) error
}

// TransferHandler fronts the no-op entry point: incidental native transfers
// into contract custody.
type TransferHandler struct {
	svc TransferService
}

func NewTransferHandler(svc TransferService) *TransferHandler {
	return &TransferHandler{svc: svc}
}

type transferRequest struct {
	AttachedAmount uint64 `json:"attached_amount"`
}

func (h *TransferHandler) Accept(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	sender := middleware.CallerAddress(c)
	if err := h.svc.AcceptTransfer(c.Request.Context(), sender, req.AttachedAmount); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
