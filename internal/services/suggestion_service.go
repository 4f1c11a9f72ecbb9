package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	domain "github.com/washdesk/api/internal/domain"
)

var (
	// ErrSuggestionInvalidInput signals an oversized prompt.
	ErrSuggestionInvalidInput = errors.New("suggestion: invalid input")
	// ErrSuggestionUnavailable indicates the upstream model could not be reached.
	ErrSuggestionUnavailable = errors.New("suggestion: service unavailable")
)

const (
	maxSuggestionPromptLength = 500
	maxSuggestionResults      = 10
)

// SuggestionQuery carries the operator's free-text prompt.
type SuggestionQuery struct {
	OperatorID string
	Prompt     string
}

// SuggestionMatch is one suggested service. ServiceTypeID is empty when the
// text matched no catalog label.
type SuggestionMatch struct {
	Text          string
	ServiceTypeID string
}

// SuggestionResult is the ordered list of matches for one prompt.
type SuggestionResult struct {
	Suggestions []SuggestionMatch
}

// SuggestionServiceDeps wires the upstream provider and the catalog used for
// label matching.
type SuggestionServiceDeps struct {
	Provider SuggestionProvider
	Catalog  domain.Catalog
	Logger   func(context.Context, string, map[string]any)
}

type suggestionService struct {
	provider SuggestionProvider
	catalog  domain.Catalog
	policy   *bluemonday.Policy
	logger   func(context.Context, string, map[string]any)
}

var _ SuggestionService = (*suggestionService)(nil)

// NewSuggestionService constructs a SuggestionService.
func NewSuggestionService(deps SuggestionServiceDeps) (SuggestionService, error) {
	if deps.Provider == nil {
		return nil, errors.New("suggestion service: provider is required")
	}
	if deps.Catalog.Len() == 0 {
		return nil, errors.New("suggestion service: catalog is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &suggestionService{
		provider: deps.Provider,
		catalog:  deps.Catalog,
		policy:   bluemonday.StrictPolicy(),
		logger:   logger,
	}, nil
}

// Suggest strips markup from the prompt, queries the provider, and matches
// each returned string against the catalog labels. An empty prompt returns an
// empty result without calling upstream.
func (s *suggestionService) Suggest(ctx context.Context, query SuggestionQuery) (SuggestionResult, error) {
	prompt := s.sanitizePrompt(query.Prompt)
	if prompt == "" {
		return SuggestionResult{Suggestions: []SuggestionMatch{}}, nil
	}
	if len([]rune(prompt)) > maxSuggestionPromptLength {
		return SuggestionResult{}, fmt.Errorf("%w: prompt too long", ErrSuggestionInvalidInput)
	}

	raw, err := s.provider.Suggest(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return SuggestionResult{}, err
		}
		s.logger(ctx, "suggestion.provider_failed", map[string]any{"error": err.Error()})
		return SuggestionResult{}, fmt.Errorf("%w: %v", ErrSuggestionUnavailable, err)
	}

	matches := make([]SuggestionMatch, 0, len(raw))
	for _, text := range raw {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		match := SuggestionMatch{Text: text}
		if id, ok := s.catalog.MatchLabel(text); ok {
			match.ServiceTypeID = id
		}
		matches = append(matches, match)
		if len(matches) == maxSuggestionResults {
			break
		}
	}

	return SuggestionResult{Suggestions: matches}, nil
}

// sanitizePrompt strips markup before the prompt leaves the service. The
// strict policy entity-escapes what remains, so the escaping is undone to
// keep plain text like "wash & wax" intact.
func (s *suggestionService) sanitizePrompt(prompt string) string {
	cleaned := s.policy.Sanitize(prompt)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
