// Package models defines the core data structures for credential accounts.
package models

import "strings"

// LabelItem is a single label attached to an account.
type LabelItem struct {
	// Text is the label text as shown to the user.
	Text string `json:"text" msgpack:"text"`
}

// AccountType selects how an account authenticates.
type AccountType string

const (
	// LDAP accounts authenticate against a directory; they never carry a password.
	LDAP AccountType = "LDAP"
	// LOCAL accounts keep their password in the store.
	Local AccountType = "LOCAL"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	return t == LDAP || t == Local
}

// HasPassword reports whether accounts of this type keep a password.
func (t AccountType) HasPassword() bool {
	return t != LDAP
}

// ParseAccountType converts user input into an AccountType.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseAccountType(s string) (AccountType, bool) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Account is a credential record owned by the account store.
type Account struct {
	// ID is the unique identifier assigned by the store.
	ID string `json:"id" msgpack:"id"`
	// Labels are shown in this order.
	Labels []LabelItem `json:"labels" msgpack:"labels"`
	// Type is LDAP or LOCAL.
	Type AccountType `json:"type" msgpack:"type"`
	// Login is free text.
	Login string `json:"login" msgpack:"login"`
	// Password is nil for LDAP accounts.
	Password *string `json:"password" msgpack:"password"`
}

// Clone returns a deep copy of a.
func (a Account) Clone() Account {
	out := a
	out.Labels = append(make([]LabelItem, 0, len(a.Labels)), a.Labels...)
	if a.Password != nil {
		p := *a.Password
		out.Password = &p
	}
	return out
}

// AccountUpdate is a partial update of an account. Nil fields are left
// unchanged.
type AccountUpdate struct {
	Labels   []LabelItem  `json:"labels,omitempty"`
	Type     *AccountType `json:"type,omitempty"`
	Login    *string      `json:"login,omitempty"`
	Password *string      `json:"password,omitempty"`
}

// AccountForm is the editable form of an account, with labels kept as a
// single delimited string.
type AccountForm struct {
	// LabelString holds labels separated by ";".
	LabelString string      `json:"labelString"`
	Type        AccountType `json:"type"`
	Login       string      `json:"login"`
	Password    *string     `json:"password"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// TypePtr returns a pointer to t.
func TypePtr(t AccountType) *AccountType {
	return &t
}
