package mongoadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tasktrack/contexts/identity-access/account-service/domain/entities"
	domainerrors "tasktrack/contexts/identity-access/account-service/domain/errors"
	"tasktrack/internal/shared/access"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository is the document-store credential adapter. Account ids are the
// document _id, so every mutation is a single-document atomic operation.
type Repository struct {
	accounts *mongo.Collection
	logger   *slog.Logger
}

func NewRepository(db *mongo.Database, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		accounts: db.Collection("accounts"),
		logger:   logger,
	}
}

// EnsureIndexes creates the unique identifier indexes the duplicate-identity
// check relies on.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.accounts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return storeErr(err)
}

func (r *Repository) Create(ctx context.Context, account entities.Account) error {
	_, err := r.accounts.InsertOne(ctx, accountDocFromEntity(account))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainerrors.ErrDuplicateIdentity
		}
		return storeErr(err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, accountID string) (entities.Account, error) {
	var doc accountDoc
	err := r.accounts.FindOne(ctx, bson.M{"_id": strings.TrimSpace(accountID)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entities.Account{}, domainerrors.ErrAccountNotFound
		}
		return entities.Account{}, storeErr(err)
	}
	return doc.toEntity(), nil
}

func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (entities.Account, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"username": identifier},
	}}
	var doc accountDoc
	err := r.accounts.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entities.Account{}, domainerrors.ErrAccountNotFound
		}
		return entities.Account{}, storeErr(err)
	}
	return doc.toEntity(), nil
}

func (r *Repository) List(ctx context.Context) ([]entities.Account, error) {
	cursor, err := r.accounts.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, storeErr(err)
	}
	defer cursor.Close(ctx)

	var docs []accountDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeErr(err)
	}

	accounts := make([]entities.Account, 0, len(docs))
	for _, doc := range docs {
		accounts = append(accounts, doc.toEntity())
	}
	return accounts, nil
}

func (r *Repository) SetRole(ctx context.Context, accountID string, role access.Role, now time.Time) (entities.Account, error) {
	update := bson.M{"$set": bson.M{
		"role":       string(role),
		"updated_at": now.UTC(),
	}}
	return r.findOneAndUpdate(ctx, accountID, update)
}

// ToggleFrozen flips the flag server-side with a pipeline update, so the flip
// is one atomic document mutation rather than a read followed by a write.
func (r *Repository) ToggleFrozen(ctx context.Context, accountID string, now time.Time) (entities.Account, error) {
	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"frozen":     bson.M{"$not": "$frozen"},
			"updated_at": now.UTC(),
		}},
	}
	return r.findOneAndUpdate(ctx, accountID, pipeline)
}

func (r *Repository) Delete(ctx context.Context, accountID string) error {
	result, err := r.accounts.DeleteOne(ctx, bson.M{"_id": strings.TrimSpace(accountID)})
	if err != nil {
		return storeErr(err)
	}
	if result.DeletedCount == 0 {
		return domainerrors.ErrAccountNotFound
	}
	return nil
}

func (r *Repository) findOneAndUpdate(ctx context.Context, accountID string, update any) (entities.Account, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc accountDoc
	err := r.accounts.
		FindOneAndUpdate(ctx, bson.M{"_id": strings.TrimSpace(accountID)}, update, opts).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entities.Account{}, domainerrors.ErrAccountNotFound
		}
		return entities.Account{}, storeErr(err)
	}
	return doc.toEntity(), nil
}

type accountDoc struct {
	AccountID    string    `bson:"_id"`
	Email        string    `bson:"email"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	Frozen       bool      `bson:"frozen"`
	Protected    bool      `bson:"protected"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func accountDocFromEntity(account entities.Account) accountDoc {
	return accountDoc{
		AccountID:    strings.TrimSpace(account.AccountID),
		Email:        account.Email,
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
		Role:         string(account.Role),
		Frozen:       account.Frozen,
		Protected:    account.Protected,
		CreatedAt:    account.CreatedAt.UTC(),
		UpdatedAt:    account.UpdatedAt.UTC(),
	}
}

func (d accountDoc) toEntity() entities.Account {
	return entities.Account{
		AccountID:    d.AccountID,
		Email:        d.Email,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Role:         access.Role(d.Role),
		Frozen:       d.Frozen,
		Protected:    d.Protected,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
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
