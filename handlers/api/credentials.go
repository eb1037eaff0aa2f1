package api

import (
	"net/http"

	"github.com/cliplens/cliplens/llm"
	"github.com/cliplens/cliplens/models"
	"github.com/cliplens/cliplens/validation"

	"github.com/sirupsen/logrus"
)

type CredentialsHandler struct {
	validator *validation.Validator
	logger    *logrus.Logger

	// verify is llm.Verify, replaceable in tests.
	verify func(r *http.Request, creds models.Credentials) error
}

func NewCredentialsHandler(validator *validation.Validator) *CredentialsHandler {
	return &CredentialsHandler{
		validator: validator,
		logger:    logrus.StandardLogger(),
		verify: func(r *http.Request, creds models.Credentials) error {
			return llm.Verify(r.Context(), creds)
		},
	}
}

// HandleVerify handles POST /api/v1/credentials/verify with a minimal-budget
// liveness call against the selected provider.
func (h *CredentialsHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: 64 * 1024,
		AllowedMethods:   []string{http.MethodPost},
		RequireJSON:      true,
	}); err != nil {
		respondError(w, r, err)
		return
	}

	var req models.VerifyCredentialsRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	creds := models.Credentials{Provider: req.Provider, Key: req.APIKey}
	if err := h.verify(r, creds); err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Info("Credential verification failed")
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"provider": req.Provider,
		"valid":    true,
	})
}
