package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tasktrack/contexts/identity-access/account-service/domain/entities"
	domainerrors "tasktrack/contexts/identity-access/account-service/domain/errors"
	"tasktrack/internal/shared/access"

	"github.com/jackc/pgx/v5/pgconn"
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

// Migrate creates the accounts table and its unique identifier indexes.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&accountModel{})
}

func (r *Repository) Create(ctx context.Context, account entities.Account) error {
	row := accountModelFromEntity(account)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateIdentity
		}
		return storeErr(err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, accountID string) (entities.Account, error) {
	var row accountModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", strings.TrimSpace(accountID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Account{}, domainerrors.ErrAccountNotFound
		}
		return entities.Account{}, storeErr(err)
	}
	return row.toEntity(), nil
}

func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (entities.Account, error) {
	var row accountModel
	err := r.db.WithContext(ctx).
		Where("email = ? OR username = ?", identifier, identifier).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Account{}, domainerrors.ErrAccountNotFound
		}
		return entities.Account{}, storeErr(err)
	}
	return row.toEntity(), nil
}

func (r *Repository) List(ctx context.Context) ([]entities.Account, error) {
	var rows []accountModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).
		Error; err != nil {
		return nil, storeErr(err)
	}

	accounts := make([]entities.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.toEntity())
	}
	return accounts, nil
}

func (r *Repository) SetRole(ctx context.Context, accountID string, role access.Role, now time.Time) (entities.Account, error) {
	result := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ?", strings.TrimSpace(accountID)).
		Updates(map[string]any{
			"role":       string(role),
			"updated_at": now.UTC(),
		})
	if result.Error != nil {
		return entities.Account{}, storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	return r.FindByID(ctx, accountID)
}

// ToggleFrozen flips the flag in one statement so two concurrent toggles can
// never read the same stale value.
func (r *Repository) ToggleFrozen(ctx context.Context, accountID string, now time.Time) (entities.Account, error) {
	result := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ?", strings.TrimSpace(accountID)).
		Updates(map[string]any{
			"frozen":     gorm.Expr("NOT frozen"),
			"updated_at": now.UTC(),
		})
	if result.Error != nil {
		return entities.Account{}, storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	return r.FindByID(ctx, accountID)
}

func (r *Repository) Delete(ctx context.Context, accountID string) error {
	result := r.db.WithContext(ctx).
		Where("account_id = ?", strings.TrimSpace(accountID)).
		Delete(&accountModel{})
	if result.Error != nil {
		return storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAccountNotFound
	}
	return nil
}

type accountModel struct {
	AccountID    string    `gorm:"column:account_id;primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex"`
	Username     string    `gorm:"column:username;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role"`
	Frozen       bool      `gorm:"column:frozen"`
	Protected    bool      `gorm:"column:protected"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (accountModel) TableName() string { return "accounts" }

func accountModelFromEntity(account entities.Account) accountModel {
	return accountModel{
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

func (m accountModel) toEntity() entities.Account {
	return entities.Account{
		AccountID:    m.AccountID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         access.Role(m.Role),
		Frozen:       m.Frozen,
		Protected:    m.Protected,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domainerrors.ErrStoreUnavailable
	}
	return err
}
