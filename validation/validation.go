package validation

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/cliplens/cliplens/config"
	"github.com/cliplens/cliplens/errors"
	"github.com/cliplens/cliplens/models"
	"github.com/cliplens/cliplens/transcript"
)

// videoIDPattern matches YouTube video IDs and is deliberately loose enough
// for other ID schemes callers may use.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type Validator struct {
	config *config.Config
}

func NewValidator(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// ValidateVideoID checks the cache key shape.
func (v *Validator) ValidateVideoID(id string) error {
	const op = "Validator.ValidateVideoID"

	if id == "" {
		return errors.InvalidInput(op, nil, "Video ID is required")
	}
	if !videoIDPattern.MatchString(id) {
		return errors.InvalidInput(op, nil, "Video ID contains invalid characters")
	}
	return nil
}

// ValidateAnalyzeRequest checks everything an analysis needs before the
// pipeline is engaged: the video ID, the transcript floor, and the
// credential shape.
func (v *Validator) ValidateAnalyzeRequest(req *models.AnalyzeRequest) error {
	const op = "Validator.ValidateAnalyzeRequest"

	if err := v.ValidateVideoID(req.VideoID); err != nil {
		return err
	}

	if err := transcript.Validate(req.Transcript); err != nil {
		return errors.InvalidInput(op, err, "Transcript is not analyzable")
	}

	if req.Provider == "" {
		return errors.InvalidInput(op, nil, "Provider is required")
	}
	if !req.Provider.Valid() {
		return errors.InvalidInput(op, nil, fmt.Sprintf("Unsupported provider: %s", req.Provider))
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return errors.InvalidInput(op, nil, "API key is required")
	}

	return nil
}

// RequestValidationOpts holds options for request validation
type RequestValidationOpts struct {
	MaxContentLength int64
	AllowedMethods   []string
	RequireJSON      bool
}

// ValidateRequest validates HTTP requests
func (v *Validator) ValidateRequest(r *http.Request, opts RequestValidationOpts) error {
	const op = "Validator.ValidateRequest"

	if len(opts.AllowedMethods) > 0 {
		methodAllowed := false
		for _, method := range opts.AllowedMethods {
			if r.Method == method {
				methodAllowed = true
				break
			}
		}
		if !methodAllowed {
			return errors.InvalidInput(op, nil, fmt.Sprintf("Method %s not allowed", r.Method))
		}
	}

	if opts.RequireJSON {
		if contentType := r.Header.Get("Content-Type"); !strings.Contains(contentType, "application/json") {
			return errors.InvalidInput(op, nil, "Content-Type must be application/json")
		}
	}

	if opts.MaxContentLength > 0 && r.ContentLength > opts.MaxContentLength {
		return errors.InvalidInput(op, nil, "Request body too large")
	}

	return nil
}
