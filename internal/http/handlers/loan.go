package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opdev7/LendTez/internal/contract"
	"github.com/opdev7/LendTez/internal/http/middleware"
)

type LoanService interface {
	AddLoan(ctx context.Context, sender string, attached uint64, in contract.AddLoanInput) (*contract.Loan, error)
	CancelLoan(ctx context.Context, sender string, attached uint64, id uint64) error
	Loans() []contract.Loan
	Loan(id uint64) (contract.Loan, bool)
	Tokens() []contract.Token
}

type LoanHandler struct {
	svc LoanService
}

func NewLoanHandler(svc LoanService) *LoanHandler {
	return &LoanHandler{svc: svc}
}

type addLoanRequest struct {
	LoanTokenID     uint64  `json:"loan_token_id"`
	LoanAmount      uint64  `json:"loan_amount"`
	Reward          uint64  `json:"reward"`
	DepositTokenID  uint64  `json:"deposit_token_id"`
	DepositAmount   uint64  `json:"deposit_amount"`
	DurationSeconds uint64  `json:"duration_seconds"`
	Validity        *string `json:"validity"`
	AttachedAmount  uint64  `json:"attached_amount"`
}

func (h *LoanHandler) AddLoan(c *gin.Context) {
	var req addLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	var validity *time.Time
	if req.Validity != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Validity)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_validity"})
			return
		}
		validity = &parsed
	}

	sender := middleware.CallerAddress(c)
	loan, err := h.svc.AddLoan(c.Request.Context(), sender, req.AttachedAmount, contract.AddLoanInput{
		LoanTokenID:    req.LoanTokenID,
		LoanAmount:     req.LoanAmount,
		Reward:         req.Reward,
		DepositTokenID: req.DepositTokenID,
		DepositAmount:  req.DepositAmount,
		Duration:       time.Duration(req.DurationSeconds) * time.Second,
		Validity:       validity,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, loan)
}

type cancelLoanRequest struct {
	AttachedAmount uint64 `json:"attached_amount"`
}

func (h *LoanHandler) CancelLoan(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_loan_id"})
		return
	}
	var req cancelLoanRequest
	_ = c.ShouldBindJSON(&req) // empty body means zero attached

	sender := middleware.CallerAddress(c)
	if err := h.svc.CancelLoan(c.Request.Context(), sender, req.AttachedAmount, id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *LoanHandler) ListLoans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"loans": h.svc.Loans()})
}

func (h *LoanHandler) GetLoan(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_loan_id"})
		return
	}
	loan, ok := h.svc.Loan(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (h *LoanHandler) ListTokens(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tokens": h.svc.Tokens()})
}
