package service

import "errors"

// Auth flow specific errors used by handlers for stable error_type mapping.
var (
	ErrCodeNotFound                 = errors.New("code_not_found")
	ErrInvalidVerificationCode      = errors.New("invalid_verification_code")
	ErrVerificationExpired          = errors.New("verification_expired")
	ErrVerificationAttemptsExceeded = errors.New("verification_attempts_exceeded")
	ErrVerificationCodeConsumed     = errors.New("verification_code_consumed")
	ErrVerificationResendCooldown   = errors.New("verification_resend_cooldown")
	ErrInvalidCredentials           = errors.New("invalid_credentials")
	ErrEmailNotVerified             = errors.New("email_not_verified")
	ErrEmailDelivery                = errors.New("email_delivery_failed")
)
