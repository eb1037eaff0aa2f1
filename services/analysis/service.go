// Package analysis orchestrates the two-phase pipeline: generate a
// preliminary result, hand it back immediately, then validate and correct
// it in the background before the final version is cached.
package analysis

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/cliplens/cliplens/credentials"
	"github.com/cliplens/cliplens/errors"
	"github.com/cliplens/cliplens/llm"
	"github.com/cliplens/cliplens/models"
	"github.com/cliplens/cliplens/parse"
	"github.com/cliplens/cliplens/prompt"
	"github.com/cliplens/cliplens/repository"
	"github.com/cliplens/cliplens/services/review"
	"github.com/cliplens/cliplens/transcript"

	"github.com/sirupsen/logrus"
)

type service struct {
	repo      repository.AnalysisRepository
	prompts   *prompt.Builder
	engine    *review.Engine
	credStore credentials.Store
	archive   Archiver
	newClient func(models.Credentials) (llm.Client, error)
	config    Config
	logger    *logrus.Logger

	mu      sync.Mutex
	current *session

	// onImproveDone fires after a background improve pass settles.
	onImproveDone func(videoID string)
}

// NewService creates the analysis orchestrator. store and archive may be
// nil; without a store auth failures cannot invalidate saved credentials,
// and without an archive final results stay local.
func NewService(
	repo repository.AnalysisRepository,
	prompts *prompt.Builder,
	engine *review.Engine,
	store credentials.Store,
	archive Archiver,
	config Config,
) Service {
	return &service{
		repo:      repo,
		prompts:   prompts,
		engine:    engine,
		credStore: store,
		archive:   archive,
		newClient: llm.NewClient,
		config:    config.withDefaults(),
		logger:    logrus.StandardLogger(),
	}
}

// summaryPayload is the JSON shape the summarize prompt requests.
type summaryPayload struct {
	Summary    string             `json:"summary"`
	KeyMoments []models.Highlight `json:"keyMoments"`
}

func (s *service) Summarize(ctx context.Context, req Request) (*models.AnalysisResult, error) {
	const op = "AnalysisService.Summarize"
	logger := s.logger.WithFields(logrus.Fields{
		"operation": op,
		"video_id":  req.VideoID,
		"provider":  req.Credentials.Provider,
	})
	logger.Info("Starting analysis request")

	// The transcript floor is checked before anything touches the network.
	if err := transcript.Validate(req.Transcript); err != nil {
		logger.WithError(err).Info("Transcript rejected")
		return nil, classifyTranscriptErr(op, err)
	}

	// Credential presence is checked before any request is built.
	client, err := s.newClient(req.Credentials)
	if err != nil {
		return nil, err
	}

	lang := req.Language
	if lang.Code == "" {
		lang = prompt.DefaultLanguage
	}

	meta := models.AnalysisMeta{
		Provider:     req.Credentials.Provider,
		Model:        req.Model,
		LanguageCode: lang.Code,
		Question:     req.Question,
	}
	if meta.Model == "" {
		meta.Model = llm.DefaultModel(req.Credentials.Provider)
	}

	sess := s.startSession(req.VideoID, lang, meta)

	opts := llm.Options{
		Model:       req.Model,
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	}
	genPrompt := s.prompts.Summarize(req.Transcript, lang)
	sess.prompt = genPrompt

	result, err := s.generate(ctx, client, genPrompt, req, lang, opts)
	if err != nil {
		sess.invalidate()
		s.handleGenerationFailure(ctx, logger, err)
		return nil, err
	}
	result.FilterKeyMoments()

	logger.WithFields(logrus.Fields{
		"key_moments": len(result.KeyMoments),
		"has_answer":  result.CustomAnswer != nil,
	}).Info("Preliminary result ready")

	// Cache the preliminary state so a reload sees something even if the
	// improve pass never lands; the corrected variant supersedes it.
	s.publish(sess, result.Clone(), false)

	go s.improve(sess, client, result.Clone(), req.Transcript)

	return result, nil
}

// generate runs the generation phase. With a question present it issues the
// summary and answer calls in parallel and merges them; either failure fails
// the whole operation so no partial preliminary result ever escapes.
func (s *service) generate(
	ctx context.Context,
	client llm.Client,
	genPrompt string,
	req Request,
	lang models.Language,
	opts llm.Options,
) (*models.AnalysisResult, error) {
	if req.Question == "" {
		raw, err := s.callWithRetry(ctx, client, genPrompt, opts)
		if err != nil {
			return nil, err
		}
		var payload summaryPayload
		if err := parse.Extract(raw, "summarize", &payload); err != nil {
			return nil, err
		}
		return &models.AnalysisResult{Summary: payload.Summary, KeyMoments: payload.KeyMoments}, nil
	}

	answerPrompt := s.prompts.Answer(req.Transcript, lang, req.Question)

	var (
		wg                    sync.WaitGroup
		rawSummary, rawAnswer string
		summaryErr, answerErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		rawSummary, summaryErr = s.callWithRetry(ctx, client, genPrompt, opts)
	}()
	go func() {
		defer wg.Done()
		rawAnswer, answerErr = s.callWithRetry(ctx, client, answerPrompt, opts)
	}()
	wg.Wait()

	if summaryErr != nil {
		return nil, summaryErr
	}
	if answerErr != nil {
		return nil, answerErr
	}

	var payload summaryPayload
	if err := parse.Extract(rawSummary, "summarize", &payload); err != nil {
		return nil, err
	}
	var answer models.UserAnswerResult
	if err := parse.Extract(rawAnswer, "answer", &answer); err != nil {
		return nil, err
	}

	return &models.AnalysisResult{
		Summary:      payload.Summary,
		KeyMoments:   payload.KeyMoments,
		CustomAnswer: &answer,
	}, nil
}

// callWithRetry wraps one provider call with the per-attempt timeout and the
// attempt ceiling. Only retryable failures consume further attempts; an
// auth, parse, or configuration error aborts immediately.
func (s *service) callWithRetry(ctx context.Context, client llm.Client, promptText string, opts llm.Options) (string, error) {
	const op = "AnalysisService.callWithRetry"

	var lastErr error
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
		raw, err := client.Complete(attemptCtx, promptText, opts)
		cancel()

		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !errors.IsRetryable(err) {
			return "", err
		}

		s.logger.WithError(err).WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": s.config.MaxAttempts,
		}).Warn("Provider call failed")

		if attempt < s.config.MaxAttempts {
			select {
			case <-time.After(s.config.RetryDelay):
			case <-ctx.Done():
				return "", errors.Transport(op, ctx.Err(), "request cancelled during retry wait")
			}
		}
	}
	return "", lastErr
}

// improve is the background half of the pipeline. Every resumption point
// after an asynchronous wait re-checks the session before shared state is
// touched, so a superseded request can never clobber a newer one. Failures
// never propagate; the preliminary result simply stands as final.
func (s *service) improve(sess *session, client llm.Client, result *models.AnalysisResult, transcriptText string) {
	defer s.notifyImproveDone(sess.videoID)

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ImproveTimeout)
	defer cancel()

	logger := s.logger.WithFields(logrus.Fields{
		"operation": "AnalysisService.improve",
		"video_id":  sess.videoID,
		"session":   sess.id,
	})

	if !sess.active() {
		logger.Debug("Session superseded before validation, discarding")
		return
	}

	verdict := s.engine.Validate(ctx, client, review.ValidateInput{
		Result:         result,
		Transcript:     transcriptText,
		OriginalPrompt: sess.prompt,
		Language:       sess.language,
	})

	if !sess.active() {
		logger.Debug("Session superseded during validation, discarding")
		return
	}

	final := result
	if !verdict.IsValid && len(verdict.Issues) > 0 {
		final = review.ApplyCorrections(result, verdict.Issues)
		logger.WithField("issues", len(verdict.Issues)).Info("Applied corrections")
	}

	s.publish(sess, final, true)

	if s.archive != nil && sess.active() {
		rec := s.record(sess, final, true)
		if err := s.archive.SaveAnalysis(ctx, rec); err != nil {
			logger.WithError(err).Warn("Failed to archive analysis")
		}
	}
}

// publish writes the session's current result to the cache unless the
// session has been superseded. Cache failures are logged and swallowed.
func (s *service) publish(sess *session, result *models.AnalysisResult, validated bool) {
	if !sess.active() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.repo.Put(ctx, s.record(sess, result, validated)); err != nil {
		s.logger.WithError(err).WithField("video_id", sess.videoID).Warn("Failed to cache analysis")
	}
}

func (s *service) record(sess *session, result *models.AnalysisResult, validated bool) *models.AnalysisRecord {
	meta := sess.meta
	meta.Validated = validated
	return &models.AnalysisRecord{
		VideoID: sess.videoID,
		Result:  result,
		Meta:    meta,
	}
}

// startSession invalidates any in-flight request and registers the new one.
func (s *service) startSession(videoID string, lang models.Language, meta models.AnalysisMeta) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.invalidate()
	}
	s.current = newSession(videoID, lang, meta)
	return s.current
}

// handleGenerationFailure clears stored credentials when the provider
// rejected the key, so the caller re-prompts for setup.
func (s *service) handleGenerationFailure(ctx context.Context, logger *logrus.Entry, err error) {
	logger.WithError(err).Error("Generation failed")

	if errors.IsAuth(err) && s.credStore != nil {
		if clearErr := s.credStore.Clear(ctx); clearErr != nil {
			logger.WithError(clearErr).Warn("Failed to clear rejected credentials")
		}
	}
}

func (s *service) notifyImproveDone(videoID string) {
	if s.onImproveDone != nil {
		s.onImproveDone(videoID)
	}
}

func classifyTranscriptErr(op string, err error) error {
	switch {
	case stderrors.Is(err, transcript.ErrTooShort):
		return errors.InvalidInput(op, err, "Transcript too short to analyze")
	case stderrors.Is(err, transcript.ErrUnavailable):
		return errors.InvalidInput(op, err, "No transcript available for this video")
	default:
		return errors.InvalidInput(op, err, "Transcript could not be used")
	}
}

func (s *service) Get(ctx context.Context, videoID string) (*models.AnalysisRecord, error) {
	const op = "AnalysisService.Get"

	if videoID == "" {
		return nil, errors.InvalidInput(op, nil, "Video ID is required")
	}
	return s.repo.Get(ctx, videoID)
}

func (s *service) Delete(ctx context.Context, videoID string) error {
	const op = "AnalysisService.Delete"

	if videoID == "" {
		return errors.InvalidInput(op, nil, "Video ID is required")
	}
	return s.repo.Delete(ctx, videoID)
}

func (s *service) List(ctx context.Context) ([]*models.AnalysisRecord, error) {
	return s.repo.List(ctx)
}

func (s *service) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
