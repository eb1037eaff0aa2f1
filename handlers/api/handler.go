package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cliplens/cliplens/errors"
	"github.com/cliplens/cliplens/middleware"

	"github.com/sirupsen/logrus"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	response := Response{
		Success:   code >= 200 && code < 300,
		Data:      payload,
		RequestID: middleware.GetRequestID(r.Context()),
		Timestamp: time.Now().UTC(),
	}

	if !response.Success && payload != nil {
		if msg, ok := payload.(string); ok {
			response.Error = msg
			response.Data = nil
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logrus.WithError(err).Error("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	msg := "Internal server error"

	if appErr, ok := err.(*errors.AppError); ok {
		code = appErr.Code
		msg = appErr.Message
	}

	logrus.WithFields(logrus.Fields{
		"error":      err,
		"status":     code,
		"request_id": middleware.GetRequestID(r.Context()),
		"path":       r.URL.Path,
		"method":     r.Method,
	}).Error("Request error")

	respondJSON(w, r, code, msg)
}

func readJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.InvalidInput("readJSON", err, "Invalid JSON format")
	}
	return nil
}
