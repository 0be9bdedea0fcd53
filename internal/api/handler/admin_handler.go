package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookhub/internal/api/service"
)

// AdminHandler serves the read-only aggregate views.
type AdminHandler struct {
	loanService service.LoanService
	authService service.AuthService
	timeout     time.Duration
}

func NewAdminHandler(loanService service.LoanService, authService service.AuthService, timeout time.Duration) *AdminHandler {
	return &AdminHandler{
		loanService: loanService,
		authService: authService,
		timeout:     timeout,
	}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup, authn, admin gin.HandlerFunc) {
	rg.GET("/borrowed-books", authn, admin, h.ListAllLoans)
	rg.GET("/users", authn, admin, h.ListUsers)
}

// ListAllLoans returns every active loan joined with its book and
// borrower.
func (h *AdminHandler) ListAllLoans(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	loans, err := h.loanService.ListAllActive(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loans)
}

// ListUsers returns all users; the password hash never serializes.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	users, err := h.authService.ListUsers(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}
