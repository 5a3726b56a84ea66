// Package validation holds the client-side form checks run before anything
// is sent to the backend. Every failure is an *errors.ValidationError.
package validation

import (
	"net/mail"
	"strings"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/i18n"
	"github.com/jrsteele09/go-storefront/tenants"
)

const MinPasswordLength = 6

// CustomerSignup is the store signup form.
type CustomerSignup struct {
	Email           string  `json:"email"`
	FullName        string  `json:"full_name"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"password_confirm"`
	Phone           *string `json:"phone,omitempty"`
}

// InstructorSignup is the form that opens a new store.
type InstructorSignup struct {
	Email           string  `json:"email"`
	FullName        string  `json:"full_name"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"password_confirm"`
	Subdomain       string  `json:"subdomain"`
	StoreName       string  `json:"store_name"`
	Bio             *string `json:"bio,omitempty"`
	AgreeTerms      bool    `json:"agree_terms"`
}

// Validator reports the first failing check with a message in its locale.
type Validator struct {
	locale string
}

func New(locale string) *Validator {
	return &Validator{locale: i18n.Resolve(locale)}
}

func (v *Validator) Login(email, password string) error {
	if err := v.required("email", email); err != nil {
		return err
	}
	return v.required("password", password)
}

func (v *Validator) CustomerSignup(form CustomerSignup) error {
	return v.firstError(
		func() error { return v.required("email", form.Email) },
		func() error { return v.required("full_name", form.FullName) },
		func() error { return v.required("password", form.Password) },
		func() error { return v.email(form.Email) },
		func() error { return v.password(form.Password, form.PasswordConfirm) },
	)
}

func (v *Validator) InstructorSignup(form InstructorSignup) error {
	return v.firstError(
		func() error { return v.required("email", form.Email) },
		func() error { return v.required("full_name", form.FullName) },
		func() error { return v.required("password", form.Password) },
		func() error { return v.required("store_name", form.StoreName) },
		func() error { return v.email(form.Email) },
		func() error { return v.password(form.Password, form.PasswordConfirm) },
		func() error { return tenants.ValidateSubdomain(form.Subdomain, v.locale) },
		func() error {
			if !form.AgreeTerms {
				return sferrors.NewValidationError("agree_terms", i18n.Text(v.locale, i18n.MsgTermsRequired))
			}
			return nil
		},
	)
}

func (v *Validator) firstError(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return sferrors.NewValidationError(field, i18n.Text(v.locale, i18n.MsgFieldRequired, field))
	}
	return nil
}

func (v *Validator) email(value string) error {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != strings.TrimSpace(value) {
		return sferrors.NewValidationError("email", i18n.Text(v.locale, i18n.MsgEmailInvalid))
	}
	return nil
}

// password checks the confirmation before the length.
func (v *Validator) password(password, confirm string) error {
	if password != confirm {
		return sferrors.NewValidationError("password_confirm", i18n.Text(v.locale, i18n.MsgPasswordMismatch))
	}
	if len([]rune(password)) < MinPasswordLength {
		return sferrors.NewValidationError("password", i18n.Text(v.locale, i18n.MsgPasswordTooShort, MinPasswordLength))
	}
	return nil
}
