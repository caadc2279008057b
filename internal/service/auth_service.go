package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sakashimaa/storefront/internal/apiclient"
	"github.com/sakashimaa/storefront/internal/domain"
)

type AuthService interface {
	LoginWithEmail(ctx context.Context, req *domain.LoginRequest) (*domain.User, error)
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error)
	Me(ctx context.Context) (*domain.User, error)
	RequestPasswordReset(ctx context.Context, req *domain.PasswordResetRequest) error
	ConfirmPasswordReset(ctx context.Context, req *domain.PasswordResetConfirm) error
	Logout(ctx context.Context) error
	HasSession(ctx context.Context) (bool, error)
}

type authService struct {
	api    API
	tokens apiclient.TokenStore
	check  checker
	now    func() time.Time
}

type authResponse struct {
	domain.AuthTokens
	User *domain.User `json:"user,omitempty"`
}

func NewAuthService(api API, tokens apiclient.TokenStore, validate *validator.Validate) AuthService {
	return &authService{
		api:    api,
		tokens: tokens,
		check:  checker{validate: validate},
		now:    time.Now,
	}
}

func (s *authService) LoginWithEmail(ctx context.Context, req *domain.LoginRequest) (*domain.User, error) {
	if err := s.check.input(req); err != nil {
		return nil, err
	}

	return s.authenticate(ctx, apiclient.Request{
		Method:      http.MethodPost,
		Path:        "/auth/login/email",
		Body:        req,
		SkipRefresh: true,
	})
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	if err := s.check.input(req); err != nil {
		return nil, err
	}

	return s.authenticate(ctx, apiclient.Request{
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Body:        req,
		SkipRefresh: true,
	})
}

func (s *authService) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := s.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: "/auth/me"}, &user); err != nil {
		return nil, err
	}

	if err := s.check.response("user", &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, req *domain.PasswordResetRequest) error {
	if err := s.check.input(req); err != nil {
		return err
	}

	return s.api.Do(ctx, apiclient.Request{
		Method:      http.MethodPost,
		Path:        "/auth/password-reset/request",
		Body:        req,
		SkipRefresh: true,
	}, nil)
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, req *domain.PasswordResetConfirm) error {
	if err := s.check.input(req); err != nil {
		return err
	}

	return s.api.Do(ctx, apiclient.Request{
		Method:      http.MethodPost,
		Path:        "/auth/password-reset/confirm",
		Body:        req,
		SkipRefresh: true,
	}, nil)
}

// Logout is local: the persisted credentials are dropped, the anonymous session id stays.
func (s *authService) Logout(ctx context.Context) error {
	return s.tokens.Delete(ctx, apiclient.KeyAccessToken, apiclient.KeyRefreshToken)
}

// HasSession reports whether stored credentials can still authenticate a request: an access
// token that has not expired, or a refresh token to renew it with.
func (s *authService) HasSession(ctx context.Context) (bool, error) {
	refreshToken, err := s.tokens.Get(ctx, apiclient.KeyRefreshToken)
	if err != nil {
		return false, err
	}
	if refreshToken != "" {
		return true, nil
	}

	token, err := s.tokens.Get(ctx, apiclient.KeyAccessToken)
	if err != nil || token == "" {
		return false, err
	}

	claims, err := apiclient.DecodeAccessClaims(token)
	if err != nil {
		return true, nil
	}

	return !claims.ExpiresWithin(s.now(), 0), nil
}

func (s *authService) authenticate(ctx context.Context, req apiclient.Request) (*domain.User, error) {
	var res authResponse
	if err := s.api.Do(ctx, req, &res); err != nil {
		return nil, err
	}

	if err := s.check.response("tokens", &res.AuthTokens); err != nil {
		return nil, err
	}

	if err := s.tokens.Set(ctx, apiclient.KeyAccessToken, res.AccessToken); err != nil {
		return nil, fmt.Errorf("error saving access token: %w", err)
	}
	if err := s.tokens.Set(ctx, apiclient.KeyRefreshToken, res.RefreshToken); err != nil {
		return nil, fmt.Errorf("error saving refresh token: %w", err)
	}

	if res.User != nil {
		if err := s.check.response("user", res.User); err != nil {
			return nil, err
		}
		return res.User, nil
	}

	return s.Me(ctx)
}
