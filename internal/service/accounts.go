// Package service provides the account editing operations used by the
// presentation adapters, combining the account store, the field validator
// and the label codec.
package service

import (
	"github.com/atinyakov/IdentityGrid/internal/labels"
	"github.com/atinyakov/IdentityGrid/internal/models"
	"github.com/atinyakov/IdentityGrid/internal/validation"
)

// AccountStore defines the store operations needed by the AccountService.
type AccountStore interface {
	// Add creates an empty LOCAL account.
	Add() models.Account
	// Update applies a partial update; false means the id is unknown.
	Update(id string, upd models.AccountUpdate) bool
	// Remove deletes an account; false means the id is unknown.
	Remove(id string) bool
	// Clear deletes every account.
	Clear()
	// Get returns the account with the given id.
	Get(id string) (models.Account, bool)
	// List returns all accounts in display order.
	List() []models.Account
	// Count returns the number of accounts.
	Count() int
}

// AccountService implements account editing on top of an AccountStore.
type AccountService struct {
	// store is the authoritative account collection.
	store AccountStore
}

// NewAccountService constructs an AccountService over store.
func NewAccountService(store AccountStore) *AccountService {
	return &AccountService{store: store}
}

// Create adds a new empty account.
func (s *AccountService) Create() models.Account {
	return s.store.Add()
}

// Get returns the account with the given id.
func (s *AccountService) Get(id string) (models.Account, bool) {
	return s.store.Get(id)
}

// List returns every account.
func (s *AccountService) List() []models.Account {
	return s.store.List()
}

// Count returns the number of accounts.
func (s *AccountService) Count() int {
	return s.store.Count()
}

// Patch applies a partial update without validating it.
func (s *AccountService) Patch(id string, upd models.AccountUpdate) bool {
	return s.store.Update(id, upd)
}

// Remove deletes the account with the given id.
func (s *AccountService) Remove(id string) bool {
	return s.store.Remove(id)
}

// Clear deletes every account.
func (s *AccountService) Clear() {
	s.store.Clear()
}

// Validate checks a form without touching the store.
func (s *AccountService) Validate(form models.AccountForm) validation.Errors {
	return validation.ValidateForm(form)
}

// Submit validates form and, if it is valid, writes it to the account with
// the given id. The returned errors are empty on success. The boolean is
// false when the account does not exist; an invalid form is never written,
// so in that case the boolean only reports whether the id is known.
func (s *AccountService) Submit(id string, form models.AccountForm) (validation.Errors, bool) {
	if errs := validation.ValidateForm(form); errs.HasErrors() {
		_, found := s.store.Get(id)
		return errs, found
	}

	upd := models.AccountUpdate{
		Labels: labels.Parse(form.LabelString),
		Type:   models.TypePtr(form.Type),
		Login:  models.StringPtr(form.Login),
	}
	if form.Password != nil {
		upd.Password = models.StringPtr(*form.Password)
	}
	return validation.Errors{}, s.store.Update(id, upd)
}

// FormOf converts an account into its editable form.
func FormOf(acc models.Account) models.AccountForm {
	form := models.AccountForm{
		LabelString: labels.Stringify(acc.Labels),
		Type:        acc.Type,
		Login:       acc.Login,
	}
	if acc.Password != nil {
		form.Password = models.StringPtr(*acc.Password)
	}
	return form
}
