package sessions

import (
	"context"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/kv"
	"github.com/jrsteele09/go-storefront/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// InstructorSession is the logged in store owner. It is not bound to a
// tenant; the backend knows which store the instructor owns.
type InstructorSession struct {
	Token string `json:"token" yaml:"token"`
	Email string `json:"email" yaml:"email"`
}

func (s *Store) InstructorLogin(ctx context.Context, creds api.Credentials) (*InstructorSession, error) {
	if err := s.validator.Login(creds.Email, creds.Password); err != nil {
		return nil, err
	}
	token, err := s.auth.LoginInstructor(ctx, creds)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.InstructorLogin] login")
	}
	if err := s.InstructorLogout(ctx); err != nil {
		return nil, errors.Wrap(err, "[Store.InstructorLogin] clear previous session")
	}
	if err := s.kv.Set(ctx, kv.KeyAccessToken, token.AccessToken); err != nil {
		return nil, s.abandonInstructorLogin(ctx, errors.Wrap(err, "[Store.InstructorLogin] save token"))
	}
	if err := s.kv.Set(ctx, kv.KeyUserEmail, creds.Email); err != nil {
		return nil, s.abandonInstructorLogin(ctx, errors.Wrap(err, "[Store.InstructorLogin] save email"))
	}
	return &InstructorSession{Token: token.AccessToken, Email: creds.Email}, nil
}

// Instructor returns the instructor session, or nil. Expired JWTs are
// cleared the same way customer tokens are.
func (s *Store) Instructor(ctx context.Context) (*InstructorSession, error) {
	token, _, err := s.kv.Get(ctx, kv.KeyAccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Instructor] read token")
	}
	if token == "" {
		return nil, nil
	}
	if s.expired(token) {
		if err := s.InstructorLogout(ctx); err != nil {
			return nil, errors.Wrap(err, "[Store.Instructor] clear expired session")
		}
		return nil, nil
	}
	email, _, err := s.kv.Get(ctx, kv.KeyUserEmail)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Instructor] read email")
	}
	return &InstructorSession{Token: token, Email: email}, nil
}

func (s *Store) InstructorLogout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, kv.KeyAccessToken); err != nil {
		return errors.Wrap(err, "[Store.InstructorLogout] clear token")
	}
	if err := s.kv.Delete(ctx, kv.KeyUserEmail); err != nil {
		return errors.Wrap(err, "[Store.InstructorLogout] clear email")
	}
	return nil
}

func (s *Store) abandonInstructorLogin(ctx context.Context, err error) error {
	if clearErr := s.InstructorLogout(ctx); clearErr != nil {
		log.Err(clearErr).Msg("Failed to remove partial instructor session")
	}
	return err
}

// InstructorSignup validates form and opens a new store.
func (s *Store) InstructorSignup(ctx context.Context, form validation.InstructorSignup) (*api.Instructor, error) {
	if err := s.validator.InstructorSignup(form); err != nil {
		return nil, err
	}
	instructor, err := s.auth.SignupInstructor(ctx, api.SignupInstructorRequest{
		Email:     form.Email,
		Password:  form.Password,
		FullName:  form.FullName,
		Subdomain: form.Subdomain,
		StoreName: form.StoreName,
		Bio:       form.Bio,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Store.InstructorSignup] signup")
	}
	return instructor, nil
}
