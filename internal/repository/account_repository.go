package repository

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/simulation-service/internal/model"
)

// AccountRepository stores paper-trading accounts in memory behind an
// explicit create/get/remove boundary. Accounts live for the duration of
// the process; callers are expected to remove accounts they are done with.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*model.PaperAccount
}

// NewAccountRepository creates an empty account repository
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*model.PaperAccount),
	}
}

// Create opens a new account funded with the given balance and returns it
func (r *AccountRepository) Create(initialBalance float64) *model.PaperAccount {
	account := model.NewPaperAccount(uuid.NewString(), initialBalance, time.Now().UTC())

	r.mu.Lock()
	r.accounts[account.ID] = account
	r.mu.Unlock()

	return account
}

// Get returns the account with the given ID
func (r *AccountRepository) Get(id string) (*model.PaperAccount, error) {
	r.mu.RLock()
	account, ok := r.accounts[id]
	r.mu.RUnlock()

	if !ok {
		return nil, model.NewNotFoundError("paper account", id)
	}

	return account, nil
}

// Remove deletes the account with the given ID
func (r *AccountRepository) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return model.NewNotFoundError("paper account", id)
	}

	delete(r.accounts, id)
	return nil
}

// Count returns the number of live accounts
func (r *AccountRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}
