package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tasktrack/contexts/identity-access/account-service/domain/entities"
	domainerrors "tasktrack/contexts/identity-access/account-service/domain/errors"
	"tasktrack/internal/shared/access"
)

// Store is the in-memory credential store used by tests and the memory
// storage driver. One mutex covers every record, so each operation is atomic
// from the point of view of concurrent callers.
type Store struct {
	mu       sync.RWMutex
	byID     map[string]entities.Account
	sequence uint64
}

func NewStore() *Store {
	return &Store{
		byID: make(map[string]entities.Account),
	}
}

func (s *Store) Create(_ context.Context, account entities.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byID {
		if existing.Email == account.Email || existing.Username == account.Username {
			return domainerrors.ErrDuplicateIdentity
		}
	}
	if _, ok := s.byID[account.AccountID]; ok {
		return domainerrors.ErrDuplicateIdentity
	}
	s.byID[account.AccountID] = account
	return nil
}

func (s *Store) FindByID(_ context.Context, accountID string) (entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[accountID]
	if !ok {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	return account, nil
}

func (s *Store) FindByIdentifier(_ context.Context, identifier string) (entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.byID {
		if account.Email == identifier || account.Username == identifier {
			return account, nil
		}
	}
	return entities.Account{}, domainerrors.ErrAccountNotFound
}

func (s *Store) List(_ context.Context) ([]entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]entities.Account, 0, len(s.byID))
	for _, account := range s.byID {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].AccountID < accounts[j].AccountID
		}
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (s *Store) SetRole(_ context.Context, accountID string, role access.Role, now time.Time) (entities.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.byID[accountID]
	if !ok {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	account.Role = role
	account.UpdatedAt = now.UTC()
	s.byID[accountID] = account
	return account, nil
}

func (s *Store) ToggleFrozen(_ context.Context, accountID string, now time.Time) (entities.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.byID[accountID]
	if !ok {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	account.Frozen = !account.Frozen
	account.UpdatedAt = now.UTC()
	s.byID[accountID] = account
	return account, nil
}

func (s *Store) Delete(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[accountID]; !ok {
		return domainerrors.ErrAccountNotFound
	}
	delete(s.byID, accountID)
	return nil
}

// Now implements ports.Clock.
func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

// NewID implements ports.IDGenerator with a deterministic sequence.
func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	return fmt.Sprintf("acct_%06d", s.sequence), nil
}
