package service

import (
	"context"
	"strings"

	"github.com/sangkips/trademate-console/internal/application/poller"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/internal/logging"
	"github.com/sangkips/trademate-console/pkg/apperror"
	"github.com/sangkips/trademate-console/pkg/utils"
)

// AuthService handles sign-in, sign-up, and session teardown
type AuthService struct {
	authRepo     repository.AuthRepository
	terminalRepo repository.TerminalRepository
	registry     *poller.Registry
	forgetters   []SessionForgetter
}

// NewAuthService creates a new auth service
func NewAuthService(
	authRepo repository.AuthRepository,
	terminalRepo repository.TerminalRepository,
	registry *poller.Registry,
	forgetters ...SessionForgetter,
) *AuthService {
	return &AuthService{
		authRepo:     authRepo,
		terminalRepo: terminalRepo,
		registry:     registry,
		forgetters:   forgetters,
	}
}

// Login authenticates against the backend and returns the token and user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	res, err := s.authRepo.Login(ctx, email, password)
	if err != nil {
		if apperror.GetAppError(err).Code == 401 {
			return nil, apperror.NewAppError(401, "Invalid email or password")
		}
		return nil, err
	}
	if res.Token == "" {
		return nil, apperror.NewAppError(401, "Invalid email or password")
	}
	if res.User.IsAccountDeactivated {
		return nil, apperror.NewAppError(403, "This account has been deactivated")
	}
	return res, nil
}

// Logout tells the backend, then stops the session's pollers and drops its cart.
// Local teardown happens even when the backend call fails.
func (s *AuthService) Logout(ctx context.Context, sessionID string) {
	if err := s.authRepo.Logout(ctx); err != nil {
		logging.FromContext(ctx).Debug("backend logout failed", "error", err)
	}
	s.EndSession(ctx, sessionID)
}

// EndSession releases everything the console holds for a session.
func (s *AuthService) EndSession(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	s.registry.StopPrefix(sessionID + ":")
	for _, f := range s.forgetters {
		f.Forget(sessionID)
	}
	if err := s.terminalRepo.Delete(ctx, sessionID); err != nil {
		logging.FromContext(ctx).Warn("failed to delete terminal", "error", err)
	}
}

// RegisterShop creates a shop owner account. The backend then emails a verification code.
func (s *AuthService) RegisterShop(ctx context.Context, input *repository.RegisterShopInput) error {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	return s.authRepo.RegisterShop(ctx, input)
}

// VerifyAccount submits the 6-digit code from the verification email.
func (s *AuthService) VerifyAccount(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if len(code) != 6 || !utils.IsDigits(code) {
		return apperror.NewValidationError([]apperror.FieldError{{Field: "code", Message: "Enter the 6-digit code"}})
	}
	return s.authRepo.VerifyAccount(ctx, code)
}
