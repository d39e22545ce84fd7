// Package twofa verifies time-based one-time codes for users who have
// OTP enabled.
package twofa

import (
	"context"
	"fmt"

	"github.com/pquerna/otp/totp"

	domainerrors "github.com/vaultex/vaultex_service/internal/domain/errors"
	"github.com/vaultex/vaultex_service/pkg/logger"
)

// SecretStore loads a user's TOTP secret. An empty secret means OTP is
// not enabled for the user.
type SecretStore interface {
	GetTOTPSecret(ctx context.Context, userID int64) (string, error)
}

// Service verifies one-time codes
type Service struct {
	secrets SecretStore
	log     *logger.Logger
}

// NewService creates a new 2FA verification service
func NewService(secrets SecretStore, log *logger.Logger) *Service {
	return &Service{
		secrets: secrets,
		log:     log,
	}
}

// VerifyCode checks a one-time code for a user. Users without OTP
// enabled pass verification unconditionally.
func (s *Service) VerifyCode(ctx context.Context, userID int64, code string) error {
	secret, err := s.secrets.GetTOTPSecret(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load otp secret: %w", err)
	}
	if secret == "" {
		return nil
	}

	if !totp.Validate(code, secret) {
		s.log.Warn("OTP verification failed", "user_id", userID)
		return domainerrors.ErrInvalidOTPCode
	}
	return nil
}
