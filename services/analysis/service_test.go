package analysis

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cliplens/cliplens/errors"
	"github.com/cliplens/cliplens/llm"
	"github.com/cliplens/cliplens/models"
	"github.com/cliplens/cliplens/prompt"
	"github.com/cliplens/cliplens/services/review"
)

const testTranscript = "[00:10] The presenter introduces the topic of solar panel efficiency. " +
	"[01:30] A comparison of monocrystalline and polycrystalline cells follows."

// fakeClient routes responses by prompt kind: the validation prompt contains
// "fact-check", the answer prompt contains "QUESTION:", everything else is
// the summarize prompt.
type fakeClient struct {
	mu         sync.Mutex
	calls      int
	onComplete func(call int, prompt string) (string, error)
}

func (f *fakeClient) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	return f.onComplete(n, prompt)
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }
func (f *fakeClient) Provider() models.Provider      { return models.ProviderOpenAI }

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func isValidationPrompt(p string) bool { return strings.Contains(p, "fact-check") }
func isAnswerPrompt(p string) bool     { return strings.Contains(p, "QUESTION:") }

type memRepo struct {
	mu   sync.Mutex
	recs map[string]*models.AnalysisRecord
}

func newMemRepo() *memRepo {
	return &memRepo{recs: make(map[string]*models.AnalysisRecord)}
}

func (r *memRepo) Get(ctx context.Context, videoID string) (*models.AnalysisRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[videoID]
	if !ok {
		return nil, errors.NotFound("memRepo.Get", nil, "not cached")
	}
	return rec, nil
}

func (r *memRepo) Put(ctx context.Context, rec *models.AnalysisRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[rec.VideoID] = rec
	return nil
}

func (r *memRepo) Delete(ctx context.Context, videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recs, videoID)
	return nil
}

func (r *memRepo) List(ctx context.Context) ([]*models.AnalysisRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.AnalysisRecord, 0, len(r.recs))
	for _, rec := range r.recs {
		out = append(out, rec)
	}
	return out, nil
}

func (r *memRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = make(map[string]*models.AnalysisRecord)
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	cleared bool
}

func (s *fakeStore) Get(ctx context.Context) (*models.Credentials, error) { return nil, nil }
func (s *fakeStore) Save(ctx context.Context, creds models.Credentials) error {
	return nil
}
func (s *fakeStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared = true
	return nil
}
func (s *fakeStore) wasCleared() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}

type harness struct {
	svc     *service
	repo    *memRepo
	store   *fakeStore
	improve chan string
}

func newHarness(t *testing.T, client llm.Client) *harness {
	t.Helper()

	prompts := prompt.NewBuilder(nil)
	repo := newMemRepo()
	store := &fakeStore{}
	cfg := Config{
		CallTimeout:    5 * time.Second,
		MaxAttempts:    3,
		RetryDelay:     time.Millisecond,
		ImproveTimeout: 5 * time.Second,
	}

	svc := NewService(repo, prompts, review.NewEngine(prompts), store, nil, cfg).(*service)
	svc.newClient = func(models.Credentials) (llm.Client, error) { return client, nil }

	improve := make(chan string, 8)
	svc.onImproveDone = func(videoID string) { improve <- videoID }

	return &harness{svc: svc, repo: repo, store: store, improve: improve}
}

func (h *harness) waitImprove(t *testing.T) string {
	t.Helper()
	select {
	case id := <-h.improve:
		return id
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for improve pass")
		return ""
	}
}

func testRequest() Request {
	return Request{
		VideoID:     "vid-1",
		Transcript:  testTranscript,
		Credentials: models.Credentials{Provider: models.ProviderOpenAI, Key: "sk-test"},
	}
}

func TestSummarizeReturnsPreliminaryThenCachesCorrected(t *testing.T) {
	client := &fakeClient{onComplete: func(call int, p string) (string, error) {
		if isValidationPrompt(p) {
			return `{"isValid": false, "issues": [{
				"field": "summary",
				"issueType": "factual_error",
				"description": "wrong efficiency figure",
				"correction": {"action": "replace", "value": "Corrected summary."}
			}]}`, nil
		}
		return `{"summary": "Preliminary summary.", "keyMoments": [
			{"timestamp": "00:10", "description": "Topic introduced"},
			{"timestamp": "01:30", "description": "Cell types compared"}
		]}`, nil
	}}
	h := newHarness(t, client)

	got, err := h.svc.Summarize(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got.Summary != "Preliminary summary." {
		t.Errorf("caller must see the preliminary summary, got %q", got.Summary)
	}
	if len(got.KeyMoments) != 2 {
		t.Errorf("expected 2 key moments, got %d", len(got.KeyMoments))
	}

	h.waitImprove(t)

	rec, err := h.repo.Get(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("expected cached record: %v", err)
	}
	if rec.Result.Summary != "Corrected summary." {
		t.Errorf("cache must hold the corrected summary, got %q", rec.Result.Summary)
	}
	if !rec.Meta.Validated {
		t.Error("final record should be marked validated")
	}
	if rec.Meta.Provider != models.ProviderOpenAI {
		t.Errorf("unexpected provider in meta: %q", rec.Meta.Provider)
	}

	// The caller's copy must not be mutated by the background correction.
	if got.Summary != "Preliminary summary." {
		t.Errorf("preliminary result was mutated to %q", got.Summary)
	}
}

func TestSummarizeWithQuestionRunsBothCalls(t *testing.T) {
	client := &fakeClient{onComplete: func(call int, p string) (string, error) {
		switch {
		case isValidationPrompt(p):
			return `{"isValid": true, "issues": []}`, nil
		case isAnswerPrompt(p):
			return `{"text": "Monocrystalline cells are more efficient.", "relatedSegments": ["01:30"]}`, nil
		default:
			return `{"summary": "S.", "keyMoments": [{"timestamp": "00:10", "description": "d"}]}`, nil
		}
	}}
	h := newHarness(t, client)

	req := testRequest()
	req.Question = "Which cell type is more efficient?"

	got, err := h.svc.Summarize(context.Background(), req)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got.CustomAnswer == nil {
		t.Fatal("expected a custom answer")
	}
	if got.CustomAnswer.Text != "Monocrystalline cells are more efficient." {
		t.Errorf("unexpected answer: %q", got.CustomAnswer.Text)
	}
	if len(got.CustomAnswer.RelatedSegments) != 1 {
		t.Errorf("expected 1 related segment, got %d", len(got.CustomAnswer.RelatedSegments))
	}

	h.waitImprove(t)

	rec, err := h.repo.Get(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("expected cached record: %v", err)
	}
	if rec.Meta.Question != req.Question {
		t.Errorf("question not carried into meta: %q", rec.Meta.Question)
	}
}

func TestSummarizeAnswerFailureFailsWholeRequest(t *testing.T) {
	client := &fakeClient{onComplete: func(call int, p string) (string, error) {
		if isAnswerPrompt(p) {
			return "", errors.Parse("fake", nil, "bad answer payload")
		}
		return `{"summary": "S.", "keyMoments": []}`, nil
	}}
	h := newHarness(t, client)

	req := testRequest()
	req.Question = "Anything?"

	if _, err := h.svc.Summarize(context.Background(), req); err == nil {
		t.Fatal("expected failure when the answer call fails")
	}
	if _, err := h.repo.Get(context.Background(), "vid-1"); !errors.IsNotFound(err) {
		t.Error("no partial result may be cached")
	}
}

func TestSummarizeRejectsShortTranscriptBeforeAnyCall(t *testing.T) {
	clientBuilt := false
	h := newHarness(t, &fakeClient{onComplete: func(int, string) (string, error) {
		t.Error("no provider call expected")
		return "", nil
	}})
	h.svc.newClient = func(models.Credentials) (llm.Client, error) {
		clientBuilt = true
		return nil, nil
	}

	req := testRequest()
	req.Transcript = "ten chars."

	_, err := h.svc.Summarize(context.Background(), req)
	if err == nil {
		t.Fatal("expected rejection of a short transcript")
	}
	if errors.KindOf(err) != errors.KindInvalidInput {
		t.Errorf("expected invalid input, got kind %q", errors.KindOf(err))
	}
	if clientBuilt {
		t.Error("client must not be constructed for an unusable transcript")
	}
}

func TestSummarizeRequiresAPIKey(t *testing.T) {
	h := newHarness(t, &fakeClient{onComplete: func(int, string) (string, error) {
		t.Error("no provider call expected")
		return "", nil
	}})
	// Use the real factory so the blank-key check is the one under test.
	h.svc.newClient = llm.NewClient

	req := testRequest()
	req.Credentials.Key = "   "

	_, err := h.svc.Summarize(context.Background(), req)
	if !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestRetryStopsAtAttemptCeiling(t *testing.T) {
	client := &fakeClient{onComplete: func(int, string) (string, error) {
		return "", errors.Transport("fake", stderrors.New("connection reset"), "provider unreachable")
	}}
	h := newHarness(t, client)

	_, err := h.svc.Summarize(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected failure after exhausting attempts")
	}
	if errors.KindOf(err) != errors.KindTransport {
		t.Errorf("last error should surface unchanged, got kind %q", errors.KindOf(err))
	}
	if got := client.callCount(); got != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", got)
	}
}

func TestNonRetryableFailsFastAndClearsCredentials(t *testing.T) {
	client := &fakeClient{onComplete: func(int, string) (string, error) {
		return "", errors.Auth("fake", nil, "invalid API key")
	}}
	h := newHarness(t, client)

	_, err := h.svc.Summarize(context.Background(), testRequest())
	if !errors.IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if got := client.callCount(); got != 1 {
		t.Errorf("auth failures must not be retried, got %d attempts", got)
	}
	if !h.store.wasCleared() {
		t.Error("rejected credentials should be cleared from the store")
	}
}

func TestImproveFailureLeavesPreliminaryCached(t *testing.T) {
	client := &fakeClient{onComplete: func(call int, p string) (string, error) {
		if isValidationPrompt(p) {
			return "", errors.Transport("fake", nil, "validation call failed")
		}
		return `{"summary": "Stands as final.", "keyMoments": []}`, nil
	}}
	h := newHarness(t, client)

	got, err := h.svc.Summarize(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got.Summary != "Stands as final." {
		t.Fatalf("unexpected summary: %q", got.Summary)
	}

	h.waitImprove(t)

	rec, err := h.repo.Get(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("preliminary result should remain cached: %v", err)
	}
	if rec.Result.Summary != "Stands as final." {
		t.Errorf("cache should hold the unchanged preliminary, got %q", rec.Result.Summary)
	}
}

func TestNewRequestSupersedesInFlightImprove(t *testing.T) {
	release := make(chan struct{})
	first := &fakeClient{onComplete: func(call int, p string) (string, error) {
		if isValidationPrompt(p) {
			<-release
			return `{"isValid": false, "issues": [{
				"field": "summary",
				"issueType": "factual_error",
				"description": "stale",
				"correction": {"action": "replace", "value": "Stale correction."}
			}]}`, nil
		}
		return `{"summary": "First.", "keyMoments": []}`, nil
	}}
	second := &fakeClient{onComplete: func(call int, p string) (string, error) {
		if isValidationPrompt(p) {
			return `{"isValid": true, "issues": []}`, nil
		}
		return `{"summary": "Second.", "keyMoments": []}`, nil
	}}

	h := newHarness(t, first)

	if _, err := h.svc.Summarize(context.Background(), testRequest()); err != nil {
		t.Fatalf("first Summarize failed: %v", err)
	}

	h.svc.newClient = func(models.Credentials) (llm.Client, error) { return second, nil }
	if _, err := h.svc.Summarize(context.Background(), testRequest()); err != nil {
		t.Fatalf("second Summarize failed: %v", err)
	}
	h.waitImprove(t)

	close(release)
	h.waitImprove(t)

	rec, err := h.repo.Get(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("expected cached record: %v", err)
	}
	if rec.Result.Summary != "Second." {
		t.Errorf("superseded improve pass overwrote newer result: %q", rec.Result.Summary)
	}
}

func TestSummarizeDropsIncompleteKeyMoments(t *testing.T) {
	client := &fakeClient{onComplete: func(call int, p string) (string, error) {
		if isValidationPrompt(p) {
			return `{"isValid": true, "issues": []}`, nil
		}
		return `{"summary": "S.", "keyMoments": [
			{"timestamp": "00:10", "description": "kept"},
			{"timestamp": "", "description": "no timestamp"},
			{"timestamp": "02:00", "description": ""}
		]}`, nil
	}}
	h := newHarness(t, client)

	got, err := h.svc.Summarize(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(got.KeyMoments) != 1 || got.KeyMoments[0].Description != "kept" {
		t.Errorf("incomplete moments should be dropped, got %+v", got.KeyMoments)
	}
	h.waitImprove(t)
}

func TestGetRequiresVideoID(t *testing.T) {
	h := newHarness(t, &fakeClient{onComplete: func(int, string) (string, error) { return "", nil }})

	if _, err := h.svc.Get(context.Background(), ""); errors.KindOf(err) != errors.KindInvalidInput {
		t.Errorf("expected invalid input for empty video ID, got %v", err)
	}
}
