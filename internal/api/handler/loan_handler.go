package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookhub/internal/api/middleware"
	"bookhub/internal/api/service"
)

type LoanHandler struct {
	svc     service.LoanService
	timeout time.Duration
}

func NewLoanHandler(svc service.LoanService, timeout time.Duration) *LoanHandler {
	return &LoanHandler{svc: svc, timeout: timeout}
}

func (h *LoanHandler) RegisterRoutes(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	rg.POST("/books/:id/borrow", authn, h.Borrow)
	rg.GET("/borrowed-books", authn, h.ListMine)
	rg.POST("/borrowed-books/:id/return", authn, h.Return)
}

// Borrow takes one copy of the book for the calling user.
func (h *LoanHandler) Borrow(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	loan, err := h.svc.Borrow(ctx, identity.UserID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, loan)
}

// ListMine returns the caller's active loans, most recent first.
func (h *LoanHandler) ListMine(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	loans, err := h.svc.ListActiveForUser(ctx, identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loans)
}

// Return closes one of the caller's active loans. Another user's loan,
// or one already returned, is indistinguishable from a missing loan.
func (h *LoanHandler) Return(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	loan, err := h.svc.Return(ctx, c.Param("id"), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "book returned successfully",
		"borrowed_book": loan,
	})
}
