package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"reslocate/internal/services"
	"reslocate/internal/utils"
)

type VerificationHandler struct {
	verificationService services.VerificationService
}

func NewVerificationHandler(verificationService services.VerificationService) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService}
}

type issueRequestPayload struct {
	Contact     string `json:"contact"`
	ContactType string `json:"contactType"`
}

type submitCodePayload struct {
	Code string `json:"code"`
}

type submitByContactPayload struct {
	Contact     string `json:"contact"`
	ContactType string `json:"contactType"`
	Code        string `json:"code"`
}

func (h *VerificationHandler) IssueRequest(w http.ResponseWriter, r *http.Request) {
	var payload issueRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Invalid request body for IssueRequest")
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.verificationService.IssueRequest(r.Context(), payload.Contact, payload.ContactType)
	if err != nil {
		if errors.Is(err, services.ErrInvalidContact) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("Failed to issue verification request")
		utils.SendJSONError(w, "Failed to create verification request", http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{"verificationId": result.VerificationID}
	if result.DeliveryFailed {
		resp["deliverySent"] = false
		resp["deliveryError"] = result.DeliveryError
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *VerificationHandler) SubmitCode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	var payload submitCodePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Invalid request body for SubmitCode")
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.verificationService.SubmitCode(r.Context(), id, payload.Code)
	h.writeSubmissionOutcome(w, err, nil)
}

func (h *VerificationHandler) SubmitCodeByContact(w http.ResponseWriter, r *http.Request) {
	var payload submitByContactPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Invalid request body for SubmitCodeByContact")
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.verificationService.SubmitCodeByContact(r.Context(), payload.Contact, payload.ContactType, payload.Code)
	extra := map[string]interface{}{}
	if id != "" {
		extra["verificationId"] = id
	}
	h.writeSubmissionOutcome(w, err, extra)
}

func (h *VerificationHandler) writeSubmissionOutcome(w http.ResponseWriter, err error, extra map[string]interface{}) {
	if err == nil {
		resp := map[string]interface{}{"verified": true}
		for k, v := range extra {
			resp[k] = v
		}
		utils.RespondWithJSON(w, http.StatusOK, resp)
		return
	}

	var invalidCode *services.InvalidCodeError
	switch {
	case errors.As(err, &invalidCode):
		utils.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":             "Invalid code",
			"attemptsRemaining": invalidCode.AttemptsRemaining,
		})
	case errors.Is(err, services.ErrNotFound):
		utils.SendJSONError(w, "Verification request not found", http.StatusNotFound)
	case errors.Is(err, services.ErrAlreadyVerified):
		utils.SendJSONError(w, "Already verified", http.StatusConflict)
	case errors.Is(err, services.ErrExpired):
		utils.SendJSONError(w, "Verification code expired", http.StatusGone)
	case errors.Is(err, services.ErrTooManyAttempts):
		utils.SendJSONError(w, "Too many attempts. Please request a new code", http.StatusTooManyRequests)
	default:
		log.Error().Err(err).Msg("Unexpected error resolving code submission")
		utils.SendJSONError(w, "An unexpected error occurred", http.StatusInternalServerError)
	}
}
