package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMailer struct {
	failSend bool
	lastTo   string
	lastCode string
}

func (s *stubMailer) Deliver(ctx context.Context, to, code string) (string, error) {
	if s.failSend {
		return "", errors.New("smtp connection refused")
	}
	s.lastTo = to
	s.lastCode = code
	return "<msg-1@localhost>", nil
}

func (s *stubMailer) VerifyTransport(ctx context.Context) error {
	if s.failSend {
		return errors.New("smtp connection refused")
	}
	return nil
}

func postMail(t *testing.T, h http.HandlerFunc, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/send-verification-email", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec, decoded
}

func TestSendVerificationEmail(t *testing.T) {
	t.Run("sends and returns the message id", func(t *testing.T) {
		mailer := &stubMailer{}
		mh := NewMailHandler(mailer)

		rec, body := postMail(t, mh.SendVerificationEmail, map[string]string{
			"to": "user@example.com", "code": "482913",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "<msg-1@localhost>", body["messageId"])
		assert.Equal(t, "user@example.com", mailer.lastTo)
		assert.Equal(t, "482913", mailer.lastCode)
	})

	t.Run("requires both address and code", func(t *testing.T) {
		mh := NewMailHandler(&stubMailer{})

		rec, body := postMail(t, mh.SendVerificationEmail, map[string]string{"to": "user@example.com"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Email and verification code are required", body["error"])
	})

	t.Run("transport failure is a 500 with success false", func(t *testing.T) {
		mh := NewMailHandler(&stubMailer{failSend: true})

		rec, body := postMail(t, mh.SendVerificationEmail, map[string]string{
			"to": "user@example.com", "code": "482913",
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, false, body["success"])
	})
}

func TestVerifySMTP(t *testing.T) {
	t.Run("healthy transport", func(t *testing.T) {
		mh := NewMailHandler(&stubMailer{})

		req := httptest.NewRequest("GET", "/api/verify-smtp", nil)
		rec := httptest.NewRecorder()
		mh.VerifySMTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unreachable transport", func(t *testing.T) {
		mh := NewMailHandler(&stubMailer{failSend: true})

		req := httptest.NewRequest("GET", "/api/verify-smtp", nil)
		rec := httptest.NewRecorder()
		mh.VerifySMTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
