package validation_test

import (
	"testing"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/validation"
	"github.com/stretchr/testify/require"
)

func validCustomer() validation.CustomerSignup {
	return validation.CustomerSignup{
		Email:           "reader@example.com",
		FullName:        "Reader",
		Password:        "secret1",
		PasswordConfirm: "secret1",
	}
}

func validInstructor() validation.InstructorSignup {
	return validation.InstructorSignup{
		Email:           "owner@example.com",
		FullName:        "Owner",
		Password:        "secret1",
		PasswordConfirm: "secret1",
		Subdomain:       "acme",
		StoreName:       "ACME",
		AgreeTerms:      true,
	}
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	var validationErr *sferrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, field, validationErr.Field)
}

func TestValidator_Login(t *testing.T) {
	v := validation.New("en-US")

	require.NoError(t, v.Login("a@example.com", "x"))
	requireField(t, v.Login(" ", "x"), "email")
	requireField(t, v.Login("a@example.com", ""), "password")
}

func TestValidator_CustomerSignup(t *testing.T) {
	v := validation.New("en-US")

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, v.CustomerSignup(validCustomer()))
	})

	t.Run("missing name", func(t *testing.T) {
		form := validCustomer()
		form.FullName = ""
		err := v.CustomerSignup(form)
		requireField(t, err, "full_name")
		require.Equal(t, "full_name: full_name is required", err.Error())
	})

	t.Run("bad email", func(t *testing.T) {
		form := validCustomer()
		form.Email = "not-an-email"
		requireField(t, v.CustomerSignup(form), "email")
	})

	t.Run("mismatch is reported before length", func(t *testing.T) {
		form := validCustomer()
		form.Password = "abc"
		form.PasswordConfirm = "abd"
		requireField(t, v.CustomerSignup(form), "password_confirm")
	})

	t.Run("short password", func(t *testing.T) {
		form := validCustomer()
		form.Password = "abc12"
		form.PasswordConfirm = "abc12"
		err := v.CustomerSignup(form)
		requireField(t, err, "password")
		require.Contains(t, err.Error(), "at least 6 characters")
	})
}

func TestValidator_InstructorSignup(t *testing.T) {
	v := validation.New("ko-KR")

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, v.InstructorSignup(validInstructor()))
	})

	t.Run("reserved subdomain", func(t *testing.T) {
		form := validInstructor()
		form.Subdomain = "www"
		requireField(t, v.InstructorSignup(form), "subdomain")
	})

	t.Run("store name required", func(t *testing.T) {
		form := validInstructor()
		form.StoreName = ""
		requireField(t, v.InstructorSignup(form), "store_name")
	})

	t.Run("terms", func(t *testing.T) {
		form := validInstructor()
		form.AgreeTerms = false
		err := v.InstructorSignup(form)
		requireField(t, err, "agree_terms")
		require.Contains(t, err.Error(), "이용약관에 동의해주세요")
	})
}
