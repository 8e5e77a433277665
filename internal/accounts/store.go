// Package accounts holds the authoritative in-memory collection of
// credential accounts and enforces its invariants on every write.
package accounts

import (
	"sync"

	"github.com/google/uuid"

	"github.com/atinyakov/IdentityGrid/internal/models"
)

// Store owns the account collection. All methods are safe for concurrent
// use; each one runs to completion without I/O.
type Store struct {
	mu       sync.Mutex
	accounts []models.Account
	newID    func() string
	hooks    []func([]models.Account)
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		accounts: []models.Account{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to receive a snapshot of the collection after every
// successful mutation. Hooks are called with the store locked, so they must
// not block or call back into the store.
func (s *Store) OnChange(fn func([]models.Account)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Add appends a new empty LOCAL account and returns a copy of it.
func (s *Store) Add() models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := models.Account{
		ID:       s.newID(),
		Labels:   []models.LabelItem{},
		Type:     models.Local,
		Login:    "",
		Password: models.StringPtr(""),
	}
	s.accounts = append(s.accounts, acc)
	s.changed()
	return acc.Clone()
}

// Update applies upd to the account with the given id. It returns false,
// leaving the collection untouched, if there is no such account.
//
// Switching to (or staying) LDAP always clears the password, whatever
// password upd carries.
func (s *Store) Update(id string, upd models.AccountUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	cur := s.accounts[i]

	next := models.Account{
		ID:       cur.ID,
		Labels:   cur.Labels,
		Type:     cur.Type,
		Login:    cur.Login,
		Password: cur.Password,
	}
	if upd.Labels != nil {
		next.Labels = append([]models.LabelItem(nil), upd.Labels...)
	}
	if upd.Type != nil {
		next.Type = *upd.Type
	}
	if upd.Login != nil {
		next.Login = *upd.Login
	}
	if upd.Password != nil {
		next.Password = models.StringPtr(*upd.Password)
	}
	s.accounts[i] = normalize(next)
	s.changed()
	return true
}

// Remove deletes the account with the given id, keeping the order of the
// remaining accounts. It returns false if there is no such account.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.accounts = append(s.accounts[:i:i], s.accounts[i+1:]...)
	s.changed()
	return true
}

// Clear removes every account.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = []models.Account{}
	s.changed()
}

// Get returns a copy of the account with the given id.
func (s *Store) Get(id string) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Account{}, false
	}
	return s.accounts[i].Clone(), true
}

// Count returns the number of accounts.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

// List returns copies of all accounts in display order.
func (s *Store) List() []models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Replace swaps the whole collection, typically with one loaded from
// persistence. Records are normalized on the way in: unknown types become
// LOCAL, LDAP passwords are dropped, missing ids are generated and
// duplicate ids keep their first occurrence.
func (s *Store) Replace(accounts []models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(accounts))
	out := make([]models.Account, 0, len(accounts))
	for _, acc := range accounts {
		acc = acc.Clone()
		if acc.ID == "" {
			acc.ID = s.newID()
		}
		if _, dup := seen[acc.ID]; dup {
			continue
		}
		seen[acc.ID] = struct{}{}
		if !acc.Type.Valid() {
			acc.Type = models.Local
		}
		out = append(out, normalize(acc))
	}
	s.accounts = out
	s.changed()
}

// normalize enforces the type/password invariant on a single record.
func normalize(acc models.Account) models.Account {
	if !acc.Type.HasPassword() {
		acc.Password = nil
	}
	if acc.Labels == nil {
		acc.Labels = []models.LabelItem{}
	}
	return acc
}

func (s *Store) indexOf(id string) int {
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []models.Account {
	out := make([]models.Account, len(s.accounts))
	for i, acc := range s.accounts {
		out[i] = acc.Clone()
	}
	return out
}

func (s *Store) changed() {
	if len(s.hooks) == 0 {
		return
	}
	for _, fn := range s.hooks {
		fn(s.snapshot())
	}
}
