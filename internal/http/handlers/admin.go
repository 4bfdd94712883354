package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opdev7/LendTez/internal/contract"
	"github.com/opdev7/LendTez/internal/host"
	"github.com/opdev7/LendTez/internal/http/middleware"
)

type AdminService interface {
	Withdraw(ctx context.Context, sender string, attached uint64, to string, tokenID, amount uint64) error
	AddAdmin(ctx context.Context, sender string, attached uint64, address string) error
	RemoveAdmin(ctx context.Context, sender string, attached uint64, address string) error
	SetDelegate(ctx context.Context, sender string, attached uint64, delegate *string) error
	SetPause(ctx context.Context, sender string, attached uint64, pause bool) error
	SetDurationBounds(ctx context.Context, sender string, attached uint64, min, max time.Duration) error
	AddToken(ctx context.Context, sender string, attached uint64, in contract.AddTokenInput) (*contract.Token, error)
	SetTokenActive(ctx context.Context, sender string, attached uint64, id uint64, active bool) error
	IsAdmin(address string) bool
}

type JournalReader interface {
	List(ctx context.Context, limit int32) ([]host.Transition, error)
}

type AdminHandler struct {
	svc     AdminService
	journal JournalReader
}

func NewAdminHandler(svc AdminService, journal JournalReader) *AdminHandler {
	return &AdminHandler{svc: svc, journal: journal}
}

type withdrawRequest struct {
	To             string `json:"to" binding:"required"`
	TokenID        uint64 `json:"token_id"`
	Amount         uint64 `json:"amount"`
	AttachedAmount uint64 `json:"attached_amount"`
}

func (h *AdminHandler) Withdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	sender := middleware.CallerAddress(c)
	if err := h.svc.Withdraw(c.Request.Context(), sender, req.AttachedAmount, req.To, req.TokenID, req.Amount); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type adminRequest struct {
	Address        string `json:"address" binding:"required"`
	AttachedAmount uint64 `json:"attached_amount"`
}

func (h *AdminHandler) AddAdmin(c *gin.Context) {
	var req adminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	sender := middleware.CallerAddress(c)
	if err := h.svc.AddAdmin(c.Request.Context(), sender, req.AttachedAmount, req.Address); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"address": req.Address})
}

func (h *AdminHandler) RemoveAdmin(c *gin.Context) {
	address := c.Param("address")
	sender := middleware.CallerAddress(c)
	if err := h.svc.RemoveAdmin(c.Request.Context(), sender, 0, address); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address})
}

type delegateRequest struct {
	Delegate       *string `json:"delegate"`
	AttachedAmount uint64  `json:"attached_amount"`
}

func (h *AdminHandler) SetDelegate(c *gin.Context) {
	var req delegateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	sender := middleware.CallerAddress(c)
	if err := h.svc.SetDelegate(c.Request.Context(), sender, req.AttachedAmount, req.Delegate); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delegate": req.Delegate})
}

type pauseRequest struct {
	Pause          *bool  `json:"pause" binding:"required"`
	AttachedAmount uint64 `json:"attached_amount"`
}

func (h *AdminHandler) SetPause(c *gin.Context) {
	var req pauseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Pause == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	sender := middleware.CallerAddress(c)
	if err := h.svc.SetPause(c.Request.Context(), sender, req.AttachedAmount, *req.Pause); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pause": *req.Pause})
}

type boundsRequest struct {
	MinSeconds     uint64 `json:"min_seconds"`
	MaxSeconds     uint64 `json:"max_seconds"`
	AttachedAmount uint64 `json:"attached_amount"`
}

func (h *AdminHandler) SetDurationBounds(c *gin.Context) {
	var req boundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	sender := middleware.CallerAddress(c)
	min := time.Duration(req.MinSeconds) * time.Second
	max := time.Duration(req.MaxSeconds) * time.Second
	if err := h.svc.SetDurationBounds(c.Request.Context(), sender, req.AttachedAmount, min, max); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"min_seconds": req.MinSeconds, "max_seconds": req.MaxSeconds})
}

type addTokenRequest struct {
	Name           string `json:"name" binding:"required"`
	Address        string `json:"address"`
	Kind           uint8  `json:"kind"`
	SubID          uint64 `json:"sub_id"`
	Decimals       uint32 `json:"decimals"`
	AttachedAmount uint64 `json:"attached_amount"`
}

func (h *AdminHandler) AddToken(c *gin.Context) {
	var req addTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	sender := middleware.CallerAddress(c)
	token, err := h.svc.AddToken(c.Request.Context(), sender, req.AttachedAmount, contract.AddTokenInput{
		Name:     req.Name,
		Address:  req.Address,
		Kind:     contract.TokenKind(req.Kind),
		SubID:    req.SubID,
		Decimals: req.Decimals,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

type tokenActiveRequest struct {
	Active         *bool  `json:"active" binding:"required"`
	AttachedAmount uint64 `json:"attached_amount"`
}

func (h *AdminHandler) SetTokenActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_token_id"})
		return
	}
	var req tokenActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	sender := middleware.CallerAddress(c)
	if err := h.svc.SetTokenActive(c.Request.Context(), sender, req.AttachedAmount, id, *req.Active); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "active": *req.Active})
}

func (h *AdminHandler) ListJournal(c *gin.Context) {
	if !h.svc.IsAdmin(middleware.CallerAddress(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access_denied"})
		return
	}
	if h.journal == nil {
		c.JSON(http.StatusOK, gin.H{"transitions": []host.Transition{}})
		return
	}
	limit := int32(100)
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 32); err == nil && parsed > 0 {
			limit = int32(parsed)
		}
	}
	records, err := h.journal.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transitions": records})
}
