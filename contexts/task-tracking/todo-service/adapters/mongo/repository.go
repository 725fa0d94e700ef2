package mongoadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tasktrack/contexts/task-tracking/todo-service/domain/entities"
	domainerrors "tasktrack/contexts/task-tracking/todo-service/domain/errors"
	"tasktrack/contexts/task-tracking/todo-service/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository is the document-store task adapter. The owner scope of
// conditional mutations rides in the filter document, so ownership is checked
// and acted on in one driver call.
type Repository struct {
	todos  *mongo.Collection
	logger *slog.Logger
}

func NewRepository(db *mongo.Database, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		todos:  db.Collection("todos"),
		logger: logger,
	}
}

// EnsureIndexes creates the owner index used by listing and cascade purge.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.todos.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}},
	})
	return storeErr(err)
}

func (r *Repository) Create(ctx context.Context, todo entities.Todo) error {
	_, err := r.todos.InsertOne(ctx, todoDocFromEntity(todo))
	return storeErr(err)
}

func (r *Repository) Get(ctx context.Context, todoID string) (entities.Todo, error) {
	var doc todoDoc
	err := r.todos.FindOne(ctx, bson.M{"_id": strings.TrimSpace(todoID)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entities.Todo{}, domainerrors.ErrTodoNotFound
		}
		return entities.Todo{}, storeErr(err)
	}
	return doc.toEntity(), nil
}

func (r *Repository) Update(ctx context.Context, todoID string, fields ports.TodoUpdate, scopeOwnerID string, now time.Time) (entities.Todo, error) {
	set := bson.M{"updated_at": now.UTC()}
	unset := bson.M{}
	if fields.Title != nil {
		set["title"] = strings.TrimSpace(*fields.Title)
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}
	if fields.DueDate != nil {
		set["due_date"] = fields.DueDate.UTC()
	}
	if fields.ClearDueDate {
		unset["due_date"] = ""
	}
	if fields.Category != nil {
		set["category"] = string(*fields.Category)
	}
	if fields.Completed != nil {
		set["completed"] = *fields.Completed
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	filter := bson.M{"_id": strings.TrimSpace(todoID)}
	if scopeOwnerID != "" {
		filter["owner_id"] = scopeOwnerID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc todoDoc
	err := r.todos.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entities.Todo{}, domainerrors.ErrTodoNotFound
		}
		return entities.Todo{}, storeErr(err)
	}
	return doc.toEntity(), nil
}

func (r *Repository) Delete(ctx context.Context, todoID string, scopeOwnerID string) (bool, error) {
	filter := bson.M{"_id": strings.TrimSpace(todoID)}
	if scopeOwnerID != "" {
		filter["owner_id"] = scopeOwnerID
	}
	result, err := r.todos.DeleteOne(ctx, filter)
	if err != nil {
		return false, storeErr(err)
	}
	return result.DeletedCount > 0, nil
}

func (r *Repository) List(ctx context.Context, filter ports.TodoFilter) ([]entities.Todo, error) {
	query := bson.M{}
	if filter.OwnerID != "" {
		query["owner_id"] = filter.OwnerID
	}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	if filter.Completed != nil {
		query["completed"] = *filter.Completed
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := primitiveRegex(search)
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}

	cursor, err := r.todos.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, storeErr(err)
	}
	defer cursor.Close(ctx)

	var docs []todoDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeErr(err)
	}

	todos := make([]entities.Todo, 0, len(docs))
	for _, doc := range docs {
		todos = append(todos, doc.toEntity())
	}
	return todos, nil
}

func (r *Repository) PurgeOwner(ctx context.Context, ownerID string) (int64, error) {
	result, err := r.todos.DeleteMany(ctx, bson.M{"owner_id": strings.TrimSpace(ownerID)})
	if err != nil {
		return 0, storeErr(err)
	}
	return result.DeletedCount, nil
}

func primitiveRegex(search string) bson.M {
	escaped := strings.NewReplacer(
		`\`, `\\`, `.`, `\.`, `*`, `\*`, `+`, `\+`, `?`, `\?`,
		`(`, `\(`, `)`, `\)`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`,
		`^`, `\^`, `$`, `\$`, `|`, `\|`,
	).Replace(search)
	return bson.M{"$regex": escaped, "$options": "i"}
}

type todoDoc struct {
	TodoID      string     `bson:"_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description,omitempty"`
	DueDate     *time.Time `bson:"due_date,omitempty"`
	Category    string     `bson:"category"`
	Completed   bool       `bson:"completed"`
	OwnerID     string     `bson:"owner_id"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

func todoDocFromEntity(todo entities.Todo) todoDoc {
	doc := todoDoc{
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
		doc.DueDate = &due
	}
	return doc
}

func (d todoDoc) toEntity() entities.Todo {
	todo := entities.Todo{
		TodoID:      d.TodoID,
		Title:       d.Title,
		Description: d.Description,
		Category:    entities.Category(d.Category),
		Completed:   d.Completed,
		OwnerID:     d.OwnerID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		todo.DueDate = &due
	}
	return todo
}

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		return domainerrors.ErrStoreUnavailable
	}
	return err
}
