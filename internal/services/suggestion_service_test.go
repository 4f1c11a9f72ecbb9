package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	domain "github.com/washdesk/api/internal/domain"
)

type stubSuggestionProvider struct {
	prompt      string
	suggestions []string
	err         error
	calls       int
}

func (s *stubSuggestionProvider) Suggest(ctx context.Context, prompt string) ([]string, error) {
	s.calls++
	s.prompt = prompt
	return s.suggestions, s.err
}

func newTestSuggestionService(t *testing.T, provider SuggestionProvider) SuggestionService {
	t.Helper()
	svc, err := NewSuggestionService(SuggestionServiceDeps{
		Provider: provider,
		Catalog:  domain.DefaultCatalog(),
	})
	if err != nil {
		t.Fatalf("NewSuggestionService: %v", err)
	}
	return svc
}

func TestSuggestMatchesCatalogLabels(t *testing.T) {
	provider := &stubSuggestionProvider{suggestions: []string{
		"Whole Wash",
		"غسيل داخلي فقط",
		"Underbody Steam Clean",
	}}
	svc := newTestSuggestionService(t, provider)

	result, err := svc.Suggest(context.Background(), SuggestionQuery{OperatorID: "op_1", Prompt: "dusty sedan"})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(result.Suggestions) != 3 {
		t.Fatalf("got %d suggestions", len(result.Suggestions))
	}
	if result.Suggestions[0].ServiceTypeID != "whole-wash" {
		t.Fatalf("english label match: %+v", result.Suggestions[0])
	}
	if result.Suggestions[1].ServiceTypeID != "inside-only" {
		t.Fatalf("arabic label match: %+v", result.Suggestions[1])
	}
	if result.Suggestions[2].ServiceTypeID != "" {
		t.Fatalf("unmatched text must carry no id: %+v", result.Suggestions[2])
	}
}

func TestSuggestStripsMarkupFromPrompt(t *testing.T) {
	provider := &stubSuggestionProvider{}
	svc := newTestSuggestionService(t, provider)

	_, err := svc.Suggest(context.Background(), SuggestionQuery{
		OperatorID: "op_1",
		Prompt:     `<script>alert(1)</script>wash & wax`,
	})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if provider.prompt != "wash & wax" {
		t.Fatalf("provider received %q", provider.prompt)
	}
}

func TestSuggestEmptyPromptSkipsProvider(t *testing.T) {
	provider := &stubSuggestionProvider{}
	svc := newTestSuggestionService(t, provider)

	result, err := svc.Suggest(context.Background(), SuggestionQuery{OperatorID: "op_1", Prompt: "  <b></b>  "})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("provider called %d times for an empty prompt", provider.calls)
	}
	if len(result.Suggestions) != 0 {
		t.Fatalf("expected empty result, got %+v", result.Suggestions)
	}
}

func TestSuggestRejectsOversizedPrompt(t *testing.T) {
	svc := newTestSuggestionService(t, &stubSuggestionProvider{})

	_, err := svc.Suggest(context.Background(), SuggestionQuery{
		OperatorID: "op_1",
		Prompt:     strings.Repeat("a", maxSuggestionPromptLength+1),
	})
	if !errors.Is(err, ErrSuggestionInvalidInput) {
		t.Fatalf("expected ErrSuggestionInvalidInput, got %v", err)
	}
}

func TestSuggestProviderFailure(t *testing.T) {
	provider := &stubSuggestionProvider{err: errors.New("endpoint 502")}
	svc := newTestSuggestionService(t, provider)

	_, err := svc.Suggest(context.Background(), SuggestionQuery{OperatorID: "op_1", Prompt: "busy day"})
	if !errors.Is(err, ErrSuggestionUnavailable) {
		t.Fatalf("expected ErrSuggestionUnavailable, got %v", err)
	}
}
