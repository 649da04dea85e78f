package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/todolistapi/backend/internal/database/models"
	"github.com/todolistapi/backend/internal/database/repository"
)

// PagedResult is one page of items plus the total count after filtering but
// before pagination.
type PagedResult struct {
	Data  []models.ToDoItem `json:"data"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
}

// ToDoItemService defines the interface for to-do item business logic. Every
// operation is scoped to the requesting user; items owned by someone else are
// indistinguishable from missing ones.
type ToDoItemService interface {
	List(ctx context.Context, userID uint, page, limit int, filter, sortBy string) (*PagedResult, error)
	GetByID(ctx context.Context, userID, itemID uint) (*models.ToDoItem, error)
	Create(ctx context.Context, userID uint, title, description string) (*models.ToDoItem, error)
	Update(ctx context.Context, userID, itemID uint, title, description string) (*models.ToDoItem, error)
	Delete(ctx context.Context, userID, itemID uint) (bool, error)
}

type toDoItemService struct {
	itemRepo repository.ToDoItemRepository
	logger   *slog.Logger
}

// NewToDoItemService creates a new to-do item service instance
func NewToDoItemService(itemRepo repository.ToDoItemRepository, logger *slog.Logger) ToDoItemService {
	return &toDoItemService{
		itemRepo: itemRepo,
		logger:   logger,
	}
}

// sortColumns whitelists the accepted sortBy values (compared case-insensitively)
var sortColumns = map[string]string{
	"title":       "title",
	"description": "description",
	"id":          "id",
}

// List filters, sorts and paginates the user's items. A filter that parses as
// an integer matches by exact id; any other filter matches items whose title
// or description contains it as a case-insensitive substring.
func (s *toDoItemService) List(ctx context.Context, userID uint, page, limit int, filter, sortBy string) (*PagedResult, error) {
	if page <= 0 || limit <= 0 {
		return nil, ErrInvalidPagination
	}

	query := repository.ItemQuery{
		UserID: userID,
		Offset: (page - 1) * limit,
		Limit:  limit,
	}

	if filter != "" {
		if id, err := strconv.Atoi(filter); err == nil {
			query.FilterID = &id
		} else {
			query.FilterText = filter
		}
	}

	if sortBy != "" {
		column, ok := sortColumns[strings.ToLower(sortBy)]
		if !ok {
			s.logger.Warn("⚠️ [ToDoItemService] Rejected sort field", "sort_by", sortBy)
			return nil, ErrInvalidSortField
		}
		query.OrderBy = column
	}

	items, total, err := s.itemRepo.List(ctx, query)
	if err != nil {
		s.logger.Error("❌ [ToDoItemService] Failed to list items", "user_id", userID, "error", err)
		return nil, err
	}

	return &PagedResult{
		Data:  items,
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

func (s *toDoItemService) GetByID(ctx context.Context, userID, itemID uint) (*models.ToDoItem, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, repository.ErrItemNotFound
	}
	return item, nil
}

// Create binds the new item to its owner; ownership is never reassigned.
func (s *toDoItemService) Create(ctx context.Context, userID uint, title, description string) (*models.ToDoItem, error) {
	item := &models.ToDoItem{
		Title:       title,
		Description: description,
		UserID:      userID,
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		s.logger.Error("❌ [ToDoItemService] Failed to create item", "user_id", userID, "error", err)
		return nil, err
	}

	s.logger.Info("✅ [ToDoItemService] Item created", "item_id", item.ID, "user_id", userID)
	return item, nil
}

// Update replaces the title and description of an existing item. Only those
// two fields are mutable.
func (s *toDoItemService) Update(ctx context.Context, userID, itemID uint, title, description string) (*models.ToDoItem, error) {
	item, err := s.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	item.Title = title
	item.Description = description

	if err := s.itemRepo.Update(ctx, item); err != nil {
		s.logger.Error("❌ [ToDoItemService] Failed to update item", "item_id", itemID, "error", err)
		return nil, err
	}

	return item, nil
}

func (s *toDoItemService) Delete(ctx context.Context, userID, itemID uint) (bool, error) {
	if _, err := s.GetByID(ctx, userID, itemID); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return false, nil
		}
		return false, err
	}

	deleted, err := s.itemRepo.Delete(ctx, itemID)
	if err != nil {
		s.logger.Error("❌ [ToDoItemService] Failed to delete item", "item_id", itemID, "error", err)
		return false, err
	}

	if deleted {
		s.logger.Info("🗑️ [ToDoItemService] Item deleted", "item_id", itemID, "user_id", userID)
	}
	return deleted, nil
}

// Service errors
var (
	ErrInvalidPagination = errors.New("page and limit must be greater than zero")
	ErrInvalidSortField  = errors.New("invalid sort field")
)
