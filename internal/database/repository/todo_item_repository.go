package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/todolistapi/backend/internal/database/models"
)

// ItemQuery describes a validated list query. Exactly one of FilterID and
// FilterText is set when a filter was supplied; OrderBy is a whitelisted
// column name or empty for insertion order.
type ItemQuery struct {
	UserID     uint
	Offset     int
	Limit      int
	FilterID   *int
	FilterText string
	OrderBy    string
}

// ToDoItemRepository defines the interface for to-do item data operations
type ToDoItemRepository interface {
	Create(ctx context.Context, item *models.ToDoItem) error
	FindByID(ctx context.Context, id uint) (*models.ToDoItem, error)
	List(ctx context.Context, query ItemQuery) ([]models.ToDoItem, int64, error)
	Update(ctx context.Context, item *models.ToDoItem) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type toDoItemRepository struct {
	db *gorm.DB
}

// NewToDoItemRepository creates a new to-do item repository instance
func NewToDoItemRepository(db *gorm.DB) ToDoItemRepository {
	return &toDoItemRepository{db: db}
}

func (r *toDoItemRepository) Create(ctx context.Context, item *models.ToDoItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *toDoItemRepository) FindByID(ctx context.Context, id uint) (*models.ToDoItem, error) {
	var item models.ToDoItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// List returns one page of the user's items plus the total count after
// filtering but before pagination.
func (r *toDoItemRepository) List(ctx context.Context, query ItemQuery) ([]models.ToDoItem, int64, error) {
	var items []models.ToDoItem
	var total int64

	scope := r.db.WithContext(ctx).Model(&models.ToDoItem{}).
		Where("user_id = ?", query.UserID)

	switch {
	case query.FilterID != nil:
		scope = scope.Where("id = ?", *query.FilterID)
	case query.FilterText != "":
		pattern := "%" + strings.ToLower(query.FilterText) + "%"
		scope = scope.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.OrderBy != "" {
		scope = scope.Order(query.OrderBy)
	}

	err := scope.Offset(query.Offset).Limit(query.Limit).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *toDoItemRepository) Update(ctx context.Context, item *models.ToDoItem) error {
	result := r.db.WithContext(ctx).Save(item)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Delete removes an item by id. Deleting a missing id reports false rather
// than an error.
func (r *toDoItemRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.ToDoItem{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Repository errors
var (
	ErrItemNotFound = errors.New("to-do item not found")
)
