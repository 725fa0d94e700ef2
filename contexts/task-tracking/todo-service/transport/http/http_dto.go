package http

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type TodoView struct {
	TodoID      string  `json:"todo_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Category    string  `json:"category"`
	Completed   bool    `json:"completed"`
	IsOverdue   bool    `json:"is_overdue"`
	OwnerID     string  `json:"owner_id"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// CreateTodoRequest carries the creatable fields. OwnerID is honored only on
// the admin route; the owner of a regular create is always the caller.
type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Category    string `json:"category,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
}

// UpdateTodoRequest covers the allow-listed mutable fields. Absent fields are
// left untouched; an empty due_date string clears the due date. There is no
// owner field: ownership cannot be reassigned through update.
type UpdateTodoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Category    *string `json:"category,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

type TodoResponse struct {
	Status string   `json:"status"`
	Data   TodoView `json:"data"`
}

type ListTodosResponse struct {
	Status string     `json:"status"`
	Data   []TodoView `json:"data"`
}

type DeleteTodoResponse struct {
	Status string `json:"status"`
	Data   struct {
		TodoID string `json:"todo_id"`
	} `json:"data"`
}
