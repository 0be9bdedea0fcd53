package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookhub/internal/api/dto"
	"bookhub/internal/api/service"
)

type BookHandler struct {
	svc     service.BookService
	timeout time.Duration
}

func NewBookHandler(svc service.BookService, timeout time.Duration) *BookHandler {
	return &BookHandler{svc: svc, timeout: timeout}
}

func bookInputFromRequest(req dto.BookRequest) service.BookInput {
	return service.BookInput{
		Name:     req.Name,
		Details:  req.Details,
		Image:    req.Image,
		Quantity: *req.Quantity,
	}
}

// RegisterRoutes wires the catalog routes. Listing is public; mutations
// are admin only.
func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup, authn, admin gin.HandlerFunc) {
	rg.GET("/books", h.List)
	rg.POST("/books", authn, admin, h.Create)
	rg.PUT("/books/:id", authn, admin, h.Update)
	rg.DELETE("/books/:id", authn, admin, h.Delete)
}

func (h *BookHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	books, err := h.svc.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, books)
}

func (h *BookHandler) Create(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, details and quantity are required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	book, err := h.svc.Create(ctx, bookInputFromRequest(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, book)
}

func (h *BookHandler) Update(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, details and quantity are required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	book, err := h.svc.Update(ctx, c.Param("id"), bookInputFromRequest(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "book deleted successfully"})
}
