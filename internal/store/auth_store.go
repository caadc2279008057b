package store

import (
	"context"
	"errors"

	"github.com/sakashimaa/storefront/internal/apiclient"
	"github.com/sakashimaa/storefront/internal/domain"
	"github.com/sakashimaa/storefront/internal/service"
	"github.com/sakashimaa/storefront/pkg/mylogger"
	"go.uber.org/zap"
)

const (
	msgLogin          = "Invalid email or password."
	msgLoginFailed    = "Failed to log in. Please try again."
	msgRegister       = "Failed to create account. Please try again."
	msgLoadUser       = "Failed to load your account."
	msgLogout         = "Failed to log out. Please try again."
	msgResetRequest   = "Failed to send password reset email. Please try again."
	msgResetConfirm   = "Failed to reset password. The link may have expired."
	msgSessionExpired = "Your session has expired. Please log in again."
)

type AuthState struct {
	User *domain.User `json:"user"`
}

func cloneAuth(s AuthState) AuthState {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

type AuthStore struct {
	*container[AuthState]
	svc  service.AuthService
	cart *CartStore
	deps Deps
}

func NewAuthStore(svc service.AuthService, cart *CartStore, deps Deps) *AuthStore {
	return &AuthStore{
		container: newContainer(AuthState{}, cloneAuth),
		svc:       svc,
		cart:      cart,
		deps:      deps.withDefaults(),
	}
}

func (s *AuthStore) IsAuthenticated() bool {
	return s.State().Value.User != nil
}

func (s *AuthStore) Login(ctx context.Context, email, password string) error {
	ctx, span := startSpan(ctx, "AuthStore.Login")
	defer span.End()

	done := s.startLoading()
	defer done()
	user, err := s.svc.LoginWithEmail(ctx, &domain.LoginRequest{Email: email, Password: password})
	if err != nil {
		msg := msgLoginFailed
		if errors.Is(err, apiclient.ErrUnauthorized) {
			msg = msgLogin
		}
		return fail(ctx, s.deps, s.container, span, msg, err)
	}

	s.signedIn(ctx, user)
	return nil
}

func (s *AuthStore) Register(ctx context.Context, req *domain.RegisterRequest) error {
	ctx, span := startSpan(ctx, "AuthStore.Register")
	defer span.End()

	done := s.startLoading()
	defer done()
	user, err := s.svc.Register(ctx, req)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgRegister, err)
	}

	s.signedIn(ctx, user)
	return nil
}

// LoadCurrentUser restores the user from persisted tokens. Without a session it is a no-op.
func (s *AuthStore) LoadCurrentUser(ctx context.Context) error {
	ctx, span := startSpan(ctx, "AuthStore.LoadCurrentUser")
	defer span.End()

	ok, err := s.svc.HasSession(ctx)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgLoadUser, err)
	}
	if !ok {
		return nil
	}

	done := s.startLoading()
	defer done()
	user, err := s.svc.Me(ctx)
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgLoadUser, err)
	}

	s.set(AuthState{User: user})
	return nil
}

func (s *AuthStore) Logout(ctx context.Context) error {
	ctx, span := startSpan(ctx, "AuthStore.Logout")
	defer span.End()

	if err := s.svc.Logout(ctx); err != nil {
		return fail(ctx, s.deps, s.container, span, msgLogout, err)
	}

	s.set(AuthState{})
	mylogger.Info(ctx, s.deps.Logger, "user logged out")

	if s.cart != nil {
		_ = s.cart.Refresh(ctx)
	}
	return nil
}

func (s *AuthStore) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, span := startSpan(ctx, "AuthStore.RequestPasswordReset")
	defer span.End()

	done := s.startLoading()
	defer done()
	if err := s.svc.RequestPasswordReset(ctx, &domain.PasswordResetRequest{Email: email}); err != nil {
		return fail(ctx, s.deps, s.container, span, msgResetRequest, err)
	}

	s.deps.UI.PushToast(ToastInfo, "If the address is registered, a reset link is on its way.")
	return nil
}

func (s *AuthStore) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	ctx, span := startSpan(ctx, "AuthStore.ConfirmPasswordReset")
	defer span.End()

	done := s.startLoading()
	defer done()
	err := s.svc.ConfirmPasswordReset(ctx, &domain.PasswordResetConfirm{Token: token, Password: password})
	if err != nil {
		return fail(ctx, s.deps, s.container, span, msgResetConfirm, err)
	}

	s.deps.UI.PushToast(ToastSuccess, "Password updated. You can log in now.")
	return nil
}

// HandleSessionExpired runs after the API client gave up on refreshing the session.
func (s *AuthStore) HandleSessionExpired(ctx context.Context) {
	mylogger.Warn(ctx, s.deps.Logger, "session expired, login required")

	s.update(func(st *Snapshot[AuthState]) {
		st.Value = AuthState{}
		st.Error = msgSessionExpired
	})

	s.deps.UI.Open(FlagLoginRequired)
	s.deps.UI.PushToast(ToastError, msgSessionExpired)
}

func (s *AuthStore) signedIn(ctx context.Context, user *domain.User) {
	s.set(AuthState{User: user})
	s.deps.UI.Close(FlagLoginRequired)

	mylogger.Info(ctx, s.deps.Logger, "user signed in", zap.String("user_id", user.ID))

	if s.cart != nil {
		_ = s.cart.Refresh(ctx)
	}
}
