package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opdev7/LendTez/internal/contract"
	"github.com/opdev7/LendTez/internal/http/middleware"
)

type DealService interface {
	MakeDeal(ctx context.Context, sender string, attached uint64, id uint64) (*contract.Deal, error)
	CloseDeal(ctx context.Context, sender string, attached uint64, id uint64) error
	Deals() []contract.Deal
	Deal(id uint64) (contract.Deal, bool)
}

type DealHandler struct {
	svc DealService
}

func NewDealHandler(svc DealService) *DealHandler {
	return &DealHandler{svc: svc}
}

type attachedRequest struct {
	AttachedAmount uint64 `json:"attached_amount"`
}

func (h *DealHandler) FundLoan(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_loan_id"})
		return
	}
	var req attachedRequest
	_ = c.ShouldBindJSON(&req)

	sender := middleware.CallerAddress(c)
	deal, err := h.svc.MakeDeal(c.Request.Context(), sender, req.AttachedAmount, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, deal)
}

func (h *DealHandler) CloseDeal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_deal_id"})
		return
	}
	var req attachedRequest
	_ = c.ShouldBindJSON(&req)

	sender := middleware.CallerAddress(c)
	if err := h.svc.CloseDeal(c.Request.Context(), sender, req.AttachedAmount, id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *DealHandler) ListDeals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"deals": h.svc.Deals()})
}

func (h *DealHandler) GetDeal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_deal_id"})
		return
	}
	deal, ok := h.svc.Deal(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, deal)
}
