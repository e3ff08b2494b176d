package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"reslocate/internal/metrics"
)

// deliveryTimeout bounds every SMTP interaction. A slow or wedged
// transport must never block issuance; timing out counts as a delivery
// failure.
const deliveryTimeout = 10 * time.Second

const verificationEmailBody = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9fafb; border-radius: 8px;">
  <div style="text-align: center; margin-bottom: 30px;">
    <h1 style="color: #1f2937; margin-bottom: 10px;">Verify Your Email</h1>
    <p style="color: #6b7280; font-size: 16px;">Enter this code to complete your verification</p>
  </div>

  <div style="background: white; border-radius: 12px; padding: 30px; text-align: center; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
    <h2 style="font-size: 32px; letter-spacing: 8px; color: #111827; background: #f3f4f6; padding: 20px; border-radius: 8px; display: inline-block;">
      %s
    </h2>
  </div>

  <div style="margin-top: 30px; text-align: center; color: #6b7280;">
    <p style="font-size: 14px;">This code will expire in 10 minutes.</p>
    <p style="font-size: 12px; margin-top: 20px;">
      If you didn't request this email, please ignore it.
    </p>
  </div>
</div>`

// MailerService carries verification codes to an email contact over SMTP.
// It is invoked at most once per issuance and its failures are reported,
// never fatal to the verification record.
type MailerService interface {
	Deliver(ctx context.Context, to, code string) (string, error)
	VerifyTransport(ctx context.Context) error
}

type mailerService struct {
	host     string
	port     int
	username string
	password string
	fromName string
	fromAddr string
}

func NewMailerService() MailerService {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return &mailerService{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		fromName: os.Getenv("FROM_NAME"),
		fromAddr: os.Getenv("FROM_EMAIL"),
	}
}

func (e *mailerService) dialer() *gomail.Dialer {
	return gomail.NewDialer(e.host, e.port, e.username, e.password)
}

func (e *mailerService) Deliver(ctx context.Context, to, code string) (string, error) {
	messageID, err := newMessageID(e.host)
	if err != nil {
		return "", err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", e.fromAddr, e.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your Verification Code - Reslocate")
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/html", fmt.Sprintf(verificationEmailBody, code))

	if err := e.withTimeout(ctx, func() error {
		return e.dialer().DialAndSend(m)
	}); err != nil {
		metrics.VerificationEmailsTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("to", to).Msg("Failed to send verification email")
		return "", err
	}

	metrics.VerificationEmailsTotal.WithLabelValues("sent").Inc()
	log.Info().Str("to", to).Str("message_id", messageID).Msg("Verification email sent")
	return messageID, nil
}

// VerifyTransport dials and authenticates against the SMTP server without
// sending anything. Used by the transport diagnostic endpoint only.
func (e *mailerService) VerifyTransport(ctx context.Context) error {
	return e.withTimeout(ctx, func() error {
		sc, err := e.dialer().Dial()
		if err != nil {
			return err
		}
		return sc.Close()
	})
}

// withTimeout runs fn under the delivery deadline. gomail has no context
// support, so the send runs in its own goroutine; on timeout the goroutine
// is abandoned and the connection left to die on its own.
func (e *mailerService) withTimeout(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- fn() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("smtp transport timed out: %w", ctx.Err())
	}
}

func newMessageID(host string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("<%d.%s@%s>", time.Now().Unix(), hex.EncodeToString(buf), host), nil
}
