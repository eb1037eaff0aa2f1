package analysis

import (
	"sync/atomic"

	"github.com/cliplens/cliplens/models"
	"github.com/google/uuid"
)

// session ties one Summarize request to its background improve work. The
// generation prompt travels inside the session so the validation call gets
// its context without any process-wide "last prompt" slot, and the cancelled
// flag is checked after every asynchronous boundary so a superseded
// request's late results are discarded instead of overwriting newer state.
type session struct {
	id        string
	videoID   string
	prompt    string
	language  models.Language
	meta      models.AnalysisMeta
	cancelled atomic.Bool
}

func newSession(videoID string, lang models.Language, meta models.AnalysisMeta) *session {
	return &session{
		id:       uuid.New().String(),
		videoID:  videoID,
		language: lang,
		meta:     meta,
	}
}

// invalidate marks the session superseded. Safe to call from any goroutine.
func (s *session) invalidate() {
	s.cancelled.Store(true)
}

// active reports whether the session may still publish results.
func (s *session) active() bool {
	return !s.cancelled.Load()
}
