package sessions

import (
	"context"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"golang.org/x/oauth2"
)

// TokenSource adapts a stored session to oauth2.TokenSource. Every Token
// call re-reads storage, so a logout elsewhere is seen on the next request.
// It also implements api.Invalidator.
type TokenSource struct {
	ctx   context.Context
	token func(ctx context.Context) (string, error)
	clear func(ctx context.Context) error
}

func (ts *TokenSource) Token() (*oauth2.Token, error) {
	token, err := ts.token(ts.ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, sferrors.ErrNoSession
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

func (ts *TokenSource) Invalidate(ctx context.Context) error {
	return ts.clear(ctx)
}

// TokenSource serves tenant's customer token.
func (s *Store) TokenSource(ctx context.Context, tenant string) *TokenSource {
	return &TokenSource{
		ctx: ctx,
		token: func(ctx context.Context) (string, error) {
			session, err := s.Current(ctx, tenant)
			if err != nil || session == nil {
				return "", err
			}
			return session.Token, nil
		},
		clear: func(ctx context.Context) error {
			s.HandleUnauthorized(ctx)
			return nil
		},
	}
}

// InstructorTokenSource serves the instructor token.
func (s *Store) InstructorTokenSource(ctx context.Context) *TokenSource {
	return &TokenSource{
		ctx: ctx,
		token: func(ctx context.Context) (string, error) {
			session, err := s.Instructor(ctx)
			if err != nil || session == nil {
				return "", err
			}
			return session.Token, nil
		},
		clear: s.InstructorLogout,
	}
}
