package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"reslocate/internal/metrics"
	"reslocate/internal/models"
	"reslocate/internal/repositories"
	"reslocate/internal/utils"
)

// CodeExpirationMinutes is how long an issued code stays valid.
const CodeExpirationMinutes = 10

var (
	ErrInvalidContact  = errors.New("invalid contact")
	ErrNotFound        = errors.New("verification request not found")
	ErrAlreadyVerified = errors.New("already verified")
	ErrExpired         = errors.New("verification code expired")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrPersistence     = errors.New("persistence failure")
)

// InvalidCodeError reports a wrong code along with how many comparisons
// the request has left before it locks.
type InvalidCodeError struct {
	AttemptsRemaining int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid code, %d attempts remaining", e.AttemptsRemaining)
}

// IssueResult is the outcome of IssueRequest. DeliveryFailed marks a
// best-effort delivery that did not happen; the record itself was created
// and the id is valid either way.
type IssueResult struct {
	VerificationID string
	DeliveryFailed bool
	DeliveryError  string
}

// VerificationService drives the code lifecycle: issuance with delivery,
// then attempt-limited, expiry-checked validation.
type VerificationService interface {
	IssueRequest(ctx context.Context, contact, contactType string) (*IssueResult, error)
	SubmitCode(ctx context.Context, id, code string) error
	SubmitCodeByContact(ctx context.Context, contact, contactType, code string) (string, error)
}

type verificationService struct {
	verificationRepo repositories.VerificationRepository
	mailer           MailerService
}

func NewVerificationService(verificationRepo repositories.VerificationRepository, mailer MailerService) VerificationService {
	return &verificationService{verificationRepo: verificationRepo, mailer: mailer}
}

func (s *verificationService) IssueRequest(ctx context.Context, contact, contactType string) (*IssueResult, error) {
	switch contactType {
	case models.ContactTypeEmail:
		if !utils.ValidEmail(contact) {
			return nil, fmt.Errorf("%w: invalid email address", ErrInvalidContact)
		}
	case models.ContactTypePhone:
		if !utils.ValidPhone(contact) {
			return nil, fmt.Errorf("%w: invalid phone number", ErrInvalidContact)
		}
	default:
		return nil, fmt.Errorf("%w: unknown contact type %q", ErrInvalidContact, contactType)
	}

	code, err := utils.GenerateVerificationCode()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate verification code")
		return nil, fmt.Errorf("%w: code generation failed", ErrPersistence)
	}

	expiresAt := time.Now().Add(CodeExpirationMinutes * time.Minute)
	req := &models.VerificationRequest{
		Contact:     contact,
		ContactType: contactType,
		Code:        code,
		IsVerified:  false,
		Attempts:    0,
		ExpiresAt:   &expiresAt,
	}

	created, err := s.verificationRepo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	metrics.VerificationIssuedTotal.WithLabelValues(contactType).Inc()
	log.Info().
		Str("verification_id", created.ID.Hex()).
		Str("contact_type", contactType).
		Msg("Verification request created")

	result := &IssueResult{VerificationID: created.ID.Hex()}

	// Email is the only wired delivery channel. Phone codes are surfaced
	// through operator logs until an SMS transport exists.
	if contactType == models.ContactTypeEmail {
		if _, err := s.mailer.Deliver(ctx, contact, code); err != nil {
			// The record is the source of truth; delivery stays best-effort
			// and the caller is told so it can offer a resend.
			result.DeliveryFailed = true
			result.DeliveryError = "failed to send verification email"
		}
	} else {
		log.Debug().Str("contact", contact).Str("code", code).Msg("Verification code issued for phone contact")
	}

	return result, nil
}

func (s *verificationService) SubmitCode(ctx context.Context, id, code string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	req, err := s.verificationRepo.FindByID(ctx, objID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if req == nil {
		metrics.VerificationSubmissionsTotal.WithLabelValues("not_found").Inc()
		return ErrNotFound
	}

	return s.resolveSubmission(ctx, req, code)
}

// SubmitCodeByContact resolves the newest pending request matching the
// contact and code, then applies the same transition rules as SubmitCode.
// Returns the resolved request id.
func (s *verificationService) SubmitCodeByContact(ctx context.Context, contact, contactType, code string) (string, error) {
	req, err := s.verificationRepo.FindPendingByContactAndCode(ctx, contact, contactType, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if req == nil {
		metrics.VerificationSubmissionsTotal.WithLabelValues("not_found").Inc()
		return "", ErrNotFound
	}
	return req.ID.Hex(), s.resolveSubmission(ctx, req, code)
}

// resolveSubmission applies the state-machine rules, strictly in order:
// verified and expired and locked states are terminal and never mutate;
// a mismatch burns one attempt; a match flips is_verified exactly once.
func (s *verificationService) resolveSubmission(ctx context.Context, req *models.VerificationRequest, code string) error {
	if req.IsVerified {
		metrics.VerificationSubmissionsTotal.WithLabelValues("already_verified").Inc()
		return ErrAlreadyVerified
	}

	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		metrics.VerificationSubmissionsTotal.WithLabelValues("expired").Inc()
		return ErrExpired
	}

	if req.Attempts >= repositories.MaxAttempts {
		metrics.VerificationSubmissionsTotal.WithLabelValues("too_many_attempts").Inc()
		return ErrTooManyAttempts
	}

	if req.Code != code {
		updated, err := s.verificationRepo.IncrementAttempts(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}

		remaining := 0
		if updated != nil {
			remaining = repositories.MaxAttempts - updated.Attempts
			if remaining < 0 {
				remaining = 0
			}
		}

		metrics.VerificationSubmissionsTotal.WithLabelValues("invalid_code").Inc()
		log.Info().
			Str("verification_id", req.ID.Hex()).
			Int("attempts_remaining", remaining).
			Msg("Invalid verification code submitted")
		return &InvalidCodeError{AttemptsRemaining: remaining}
	}

	modified, err := s.verificationRepo.MarkVerified(ctx, req.ID, time.Now())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !modified {
		// Raced with another submission that verified first.
		metrics.VerificationSubmissionsTotal.WithLabelValues("already_verified").Inc()
		return ErrAlreadyVerified
	}

	metrics.VerificationSubmissionsTotal.WithLabelValues("verified").Inc()
	log.Info().Str("verification_id", req.ID.Hex()).Msg("Contact verified")
	return nil
}
