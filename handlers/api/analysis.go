package api

import (
	"net/http"

	"github.com/cliplens/cliplens/models"
	"github.com/cliplens/cliplens/prompt"
	"github.com/cliplens/cliplens/services/analysis"
	"github.com/cliplens/cliplens/validation"

	"github.com/sirupsen/logrus"
)

type AnalysisHandler struct {
	service   analysis.Service
	validator *validation.Validator
	logger    *logrus.Logger
}

func NewAnalysisHandler(service analysis.Service, validator *validation.Validator) *AnalysisHandler {
	return &AnalysisHandler{
		service:   service,
		validator: validator,
		logger:    logrus.StandardLogger(),
	}
}

// HandleAnalyze handles POST /api/v1/analyze. The response carries the
// preliminary result; validation continues in the background and the final
// variant lands in the cache.
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithContext(r.Context())

	if err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: 4 * 1024 * 1024,
		AllowedMethods:   []string{http.MethodPost},
		RequireJSON:      true,
	}); err != nil {
		respondError(w, r, err)
		return
	}

	var req models.AnalyzeRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.validator.ValidateAnalyzeRequest(&req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.service.Summarize(r.Context(), analysis.Request{
		VideoID:    req.VideoID,
		Transcript: req.Transcript,
		Credentials: models.Credentials{
			Provider: req.Provider,
			Key:      req.APIKey,
		},
		Language: prompt.Lookup(req.LanguageCode),
		Question: req.Question,
		Model:    req.Model,
	})
	if err != nil {
		logger.WithError(err).Error("Analysis failed")
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, &models.AnalysisResponse{
		VideoID: req.VideoID,
		State:   models.StatePreliminary,
		Result:  result,
		Meta: models.AnalysisMeta{
			Provider:     req.Provider,
			Model:        req.Model,
			LanguageCode: prompt.Lookup(req.LanguageCode).Code,
			Question:     req.Question,
		},
	})
}

// HandleGetAnalysis handles GET /api/v1/analysis/{videoID}.
func (h *AnalysisHandler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("videoID")
	if err := h.validator.ValidateVideoID(videoID); err != nil {
		respondError(w, r, err)
		return
	}

	rec, err := h.service.Get(r.Context(), videoID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, models.NewAnalysisResponse(rec))
}

// HandleDeleteAnalysis handles DELETE /api/v1/analysis/{videoID}.
func (h *AnalysisHandler) HandleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("videoID")
	if err := h.validator.ValidateVideoID(videoID); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), videoID); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]string{"video_id": videoID})
}

// HandleListAnalyses handles GET /api/v1/analyses.
func (h *AnalysisHandler) HandleListAnalyses(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]*models.AnalysisResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, models.NewAnalysisResponse(rec))
	}
	respondJSON(w, r, http.StatusOK, out)
}

// HandleClearAnalyses handles DELETE /api/v1/analyses.
func (h *AnalysisHandler) HandleClearAnalyses(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}
