package models

import "time"

// AnalyzeRequest is the incoming request for an analysis.
type AnalyzeRequest struct {
	VideoID      string   `json:"video_id"`
	Transcript   string   `json:"transcript"`
	Question     string   `json:"question,omitempty"`
	LanguageCode string   `json:"language,omitempty"`
	Provider     Provider `json:"provider,omitempty"`
	APIKey       string   `json:"api_key,omitempty"`
	Model        string   `json:"model,omitempty"`
}

// AnalysisResponse is the API representation of a cached or fresh analysis.
type AnalysisResponse struct {
	VideoID   string          `json:"video_id"`
	State     AnalysisState   `json:"state"`
	Result    *AnalysisResult `json:"result"`
	Meta      AnalysisMeta    `json:"meta"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// NewAnalysisResponse creates a response from a cache record.
func NewAnalysisResponse(rec *AnalysisRecord) *AnalysisResponse {
	return &AnalysisResponse{
		VideoID:   rec.VideoID,
		State:     StateFinal,
		Result:    rec.Result,
		Meta:      rec.Meta,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// VerifyCredentialsRequest asks for a liveness check of a provider key.
type VerifyCredentialsRequest struct {
	Provider Provider `json:"provider"`
	APIKey   string   `json:"api_key"`
}
