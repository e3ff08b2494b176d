package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"reslocate/internal/services"
	"reslocate/internal/utils"
)

type MailHandler struct {
	mailer services.MailerService
}

func NewMailHandler(mailer services.MailerService) *MailHandler {
	return &MailHandler{mailer: mailer}
}

type sendVerificationEmailPayload struct {
	To   string `json:"to"`
	Code string `json:"code"`
}

// SendVerificationEmail is the raw delivery boundary: it mails a given
// code to a given address. The engine delivers on issuance by itself;
// this endpoint backs the caller's resend path.
func (h *MailHandler) SendVerificationEmail(w http.ResponseWriter, r *http.Request) {
	var payload sendVerificationEmailPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Invalid request body for SendVerificationEmail")
		utils.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	if payload.To == "" || payload.Code == "" {
		utils.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Email and verification code are required",
		})
		return
	}

	messageID, err := h.mailer.Deliver(r.Context(), payload.To, payload.Code)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Failed to send email",
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"messageId": messageID,
		"message":   "Verification email sent successfully",
	})
}

// VerifySMTP reports whether the SMTP transport is reachable and
// accepting our credentials.
func (h *MailHandler) VerifySMTP(w http.ResponseWriter, r *http.Request) {
	if err := h.mailer.VerifyTransport(r.Context()); err != nil {
		log.Error().Err(err).Msg("SMTP transport verification failed")
		utils.RespondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "SMTP connection failed",
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "SMTP connection is working properly",
	})
}
