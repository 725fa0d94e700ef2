package entities

import "time"

// Category classifies a todo's urgency.
type Category string

const (
	CategoryUrgent    Category = "urgent"
	CategoryNonUrgent Category = "non-urgent"
)

func IsValidCategory(category Category) bool {
	switch category {
	case CategoryUrgent, CategoryNonUrgent:
		return true
	default:
		return false
	}
}

// Todo is a task record owned by exactly one account. OwnerID is assigned at
// creation and immutable afterwards; updates cannot reach it.
type Todo struct {
	TodoID      string
	Title       string
	Description string
	DueDate     *time.Time
	Category    Category
	Completed   bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOverdue is derived at read time, never stored.
func (t Todo) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}
