package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tasktrack/contexts/task-tracking/todo-service/domain/entities"
	domainerrors "tasktrack/contexts/task-tracking/todo-service/domain/errors"
	"tasktrack/contexts/task-tracking/todo-service/ports"

	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the todos table and its owner index.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&todoModel{})
}

func (r *Repository) Create(ctx context.Context, todo entities.Todo) error {
	row := todoModelFromEntity(todo)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, todoID string) (entities.Todo, error) {
	var row todoModel
	err := r.db.WithContext(ctx).
		Where("todo_id = ?", strings.TrimSpace(todoID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Todo{}, domainerrors.ErrTodoNotFound
		}
		return entities.Todo{}, storeErr(err)
	}
	return row.toEntity(), nil
}

// Update applies the allow-listed fields in one statement. A non-empty
// scopeOwnerID adds owner_id to the WHERE clause, making the mutation
// conditional on current ownership.
func (r *Repository) Update(ctx context.Context, todoID string, fields ports.TodoUpdate, scopeOwnerID string, now time.Time) (entities.Todo, error) {
	updates := map[string]any{"updated_at": now.UTC()}
	if fields.Title != nil {
		updates["title"] = strings.TrimSpace(*fields.Title)
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.DueDate != nil {
		updates["due_date"] = fields.DueDate.UTC()
	}
	if fields.ClearDueDate {
		updates["due_date"] = nil
	}
	if fields.Category != nil {
		updates["category"] = string(*fields.Category)
	}
	if fields.Completed != nil {
		updates["completed"] = *fields.Completed
	}

	tx := r.db.WithContext(ctx).
		Model(&todoModel{}).
		Where("todo_id = ?", strings.TrimSpace(todoID))
	if scopeOwnerID != "" {
		tx = tx.Where("owner_id = ?", scopeOwnerID)
	}
	result := tx.Updates(updates)
	if result.Error != nil {
		return entities.Todo{}, storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.Todo{}, domainerrors.ErrTodoNotFound
	}
	return r.Get(ctx, todoID)
}

// Delete is a single conditional statement; the owner scope rides in the
// WHERE clause rather than in a prior read.
func (r *Repository) Delete(ctx context.Context, todoID string, scopeOwnerID string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("todo_id = ?", strings.TrimSpace(todoID))
	if scopeOwnerID != "" {
		tx = tx.Where("owner_id = ?", scopeOwnerID)
	}
	result := tx.Delete(&todoModel{})
	if result.Error != nil {
		return false, storeErr(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) List(ctx context.Context, filter ports.TodoFilter) ([]entities.Todo, error) {
	tx := r.db.WithContext(ctx).Model(&todoModel{})
	if filter.OwnerID != "" {
		tx = tx.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Category != "" {
		tx = tx.Where("category = ?", string(filter.Category))
	}
	if filter.Completed != nil {
		tx = tx.Where("completed = ?", *filter.Completed)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var rows []todoModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, storeErr(err)
	}

	todos := make([]entities.Todo, 0, len(rows))
	for _, row := range rows {
		todos = append(todos, row.toEntity())
	}
	return todos, nil
}

func (r *Repository) PurgeOwner(ctx context.Context, ownerID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", strings.TrimSpace(ownerID)).
		Delete(&todoModel{})
	if result.Error != nil {
		return 0, storeErr(result.Error)
	}
	return result.RowsAffected, nil
}

type todoModel struct {
	TodoID      string     `gorm:"column:todo_id;primaryKey"`
	Title       string     `gorm:"column:title"`
	Description string     `gorm:"column:description"`
	DueDate     *time.Time `gorm:"column:due_date"`
	Category    string     `gorm:"column:category"`
	Completed   bool       `gorm:"column:completed"`
	OwnerID     string     `gorm:"column:owner_id;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (todoModel) TableName() string { return "todos" }

func todoModelFromEntity(todo entities.Todo) todoModel {
	row := todoModel{
		TodoID:      strings.TrimSpace(todo.TodoID),
		Title:       todo.Title,
		Description: todo.Description,
		Category:    string(todo.Category),
		Completed:   todo.Completed,
		OwnerID:     strings.TrimSpace(todo.OwnerID),
		CreatedAt:   todo.CreatedAt.UTC(),
		UpdatedAt:   todo.UpdatedAt.UTC(),
	}
	if todo.DueDate != nil {
		due := todo.DueDate.UTC()
		row.DueDate = &due
	}
	return row
}

func (m todoModel) toEntity() entities.Todo {
	todo := entities.Todo{
		TodoID:      m.TodoID,
		Title:       m.Title,
		Description: m.Description,
		Category:    entities.Category(m.Category),
		Completed:   m.Completed,
		OwnerID:     m.OwnerID,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
	if m.DueDate != nil {
		due := m.DueDate.UTC()
		todo.DueDate = &due
	}
	return todo
}

func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domainerrors.ErrStoreUnavailable
	}
	return err
}
