// Package validation checks account fields against presence and length
// rules. Validators are pure: a nil error means the field is valid.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/atinyakov/IdentityGrid/internal/models"
)

const (
	// MaxLabelLength limits the raw label string.
	MaxLabelLength = 50
	// MaxLoginLength limits the trimmed login.
	MaxLoginLength = 100
	// MaxPasswordLength limits the trimmed password of local accounts.
	MaxPasswordLength = 100
)

var (
	ErrLabelTooLong     = fmt.Errorf("label must not exceed %d characters", MaxLabelLength)
	ErrLoginRequired    = errors.New("login is required")
	ErrLoginTooLong     = fmt.Errorf("login must not exceed %d characters", MaxLoginLength)
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooLong  = fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	ErrUnknownType      = errors.New("account type must be LDAP or LOCAL")
)

// Field names an account form field.
type Field string

const (
	FieldLabel    Field = "label"
	FieldLogin    Field = "login"
	FieldPassword Field = "password"
	FieldType     Field = "type"
)

// Errors maps failing fields to their messages. A field that is absent
// passed validation.
type Errors map[Field]string

// HasErrors reports whether at least one field failed.
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// HasErrors reports whether errs holds at least one failing field.
func HasErrors(errs Errors) bool {
	return errs.HasErrors()
}

// Input is the data validated by ValidateAccount.
type Input struct {
	Label    string
	Login    string
	Password *string
	Type     models.AccountType
}

// ValidateLabel checks the raw label string. Empty is fine; blank labels
// are dropped when the string is parsed.
func ValidateLabel(label string) error {
	if utf8.RuneCountInString(label) > MaxLabelLength {
		return ErrLabelTooLong
	}
	return nil
}

// ValidateLogin checks a login after trimming surrounding whitespace.
func ValidateLogin(login string) error {
	trimmed := strings.TrimSpace(login)
	if trimmed == "" {
		return ErrLoginRequired
	}
	if utf8.RuneCountInString(trimmed) > MaxLoginLength {
		return ErrLoginTooLong
	}
	return nil
}

// ValidatePassword checks a password for the given account type. LDAP
// accounts have no password, so anything passes for them.
func ValidatePassword(password *string, t models.AccountType) error {
	if !t.HasPassword() {
		return nil
	}
	var trimmed string
	if password != nil {
		trimmed = strings.TrimSpace(*password)
	}
	if trimmed == "" {
		return ErrPasswordRequired
	}
	if utf8.RuneCountInString(trimmed) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// ValidateAccount runs every field validator and returns the failures.
func ValidateAccount(in Input) Errors {
	errs := Errors{}
	if err := ValidateLabel(in.Label); err != nil {
		errs[FieldLabel] = err.Error()
	}
	if err := ValidateLogin(in.Login); err != nil {
		errs[FieldLogin] = err.Error()
	}
	if err := ValidatePassword(in.Password, in.Type); err != nil {
		errs[FieldPassword] = err.Error()
	}
	return errs
}

// ValidateForm validates an account form. Besides the field rules of
// ValidateAccount it rejects account types other than LDAP and LOCAL.
func ValidateForm(form models.AccountForm) Errors {
	errs := ValidateAccount(Input{
		Label:    form.LabelString,
		Login:    form.Login,
		Password: form.Password,
		Type:     form.Type,
	})
	if !form.Type.Valid() {
		errs[FieldType] = ErrUnknownType.Error()
	}
	return errs
}
