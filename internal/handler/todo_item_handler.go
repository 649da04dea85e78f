package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/todolistapi/backend/internal/database/repository"
	"github.com/todolistapi/backend/internal/database/service"
)

// ToDoItemHandler handles HTTP requests for to-do items
type ToDoItemHandler struct {
	service service.ToDoItemService
	logger  *slog.Logger
}

// NewToDoItemHandler creates a new to-do item handler
func NewToDoItemHandler(service service.ToDoItemService, logger *slog.Logger) *ToDoItemHandler {
	return &ToDoItemHandler{
		service: service,
		logger:  logger,
	}
}

type ToDoItemRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"required,min=1,max=200"`
}

// List returns one page of the caller's items, optionally filtered and sorted
func (h *ToDoItemHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing identity claim."})
		return
	}

	page, err := intQuery(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid page parameter."})
		return
	}
	limit, err := intQuery(c, "limit", 10)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid limit parameter."})
		return
	}

	result, err := h.service.List(c.Request.Context(), userID, page, limit, c.Query("filter"), c.Query("sortBy"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetByID returns a single item owned by the caller
func (h *ToDoItemHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing identity claim."})
		return
	}

	itemID, err := itemIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid item id."})
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), userID, itemID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Create adds a new item owned by the caller and points Location at it
func (h *ToDoItemHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing identity claim."})
		return
	}

	var req ToDoItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("⚠️ [Handler] Invalid create item request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title (1-100 chars) and description (1-200 chars) are required."})
		return
	}

	item, err := h.service.Create(c.Request.Context(), userID, req.Title, req.Description)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/ToDoItems/%d", item.ID))
	c.JSON(http.StatusCreated, item)
}

// Update replaces the title and description of an item owned by the caller
func (h *ToDoItemHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing identity claim."})
		return
	}

	itemID, err := itemIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid item id."})
		return
	}

	var req ToDoItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("⚠️ [Handler] Invalid update item request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title (1-100 chars) and description (1-200 chars) are required."})
		return
	}

	item, err := h.service.Update(c.Request.Context(), userID, itemID, req.Title, req.Description)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Delete removes an item owned by the caller
func (h *ToDoItemHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing identity claim."})
		return
	}

	itemID, err := itemIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid item id."})
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), userID, itemID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "To-do item not found."})
		return
	}

	c.Status(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses
func (h *ToDoItemHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPagination), errors.Is(err, service.ErrInvalidSortField):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, repository.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "To-do item not found."})
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred."})
	}
}

// currentUserID reads the user id placed in the context by the auth middleware
func currentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint)
	return userID, ok
}

func itemIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
