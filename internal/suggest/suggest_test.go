package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/notifyarchive/internal/cache"
)

type stubClient struct {
	answer string
	err    error
	calls  int
	last   openai.ChatCompletionRequest
}

func (s *stubClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: s.answer}}}}, nil
}

func TestSuggest_FirstLineOnly(t *testing.T) {
	stub := &stubClient{answer: "\nSubject: \"Extension of due date for GSTR-9\"\nExplanation: ..."}
	s := &LLMSuggester{Client: stub, Model: "test-model"}
	got, err := s.Suggest(context.Background(), "some first page text")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if got != "Extension of due date for GSTR-9" {
		t.Fatalf("got %q", got)
	}
	if stub.last.Model != "test-model" || len(stub.last.Messages) != 2 {
		t.Fatalf("unexpected request %+v", stub.last)
	}
}

func TestSuggest_UsesCache(t *testing.T) {
	stub := &stubClient{answer: "Seeks to amend rule 138"}
	s := &LLMSuggester{Client: stub, Model: "m", Cache: &cache.LLMCache{Dir: t.TempDir()}}
	for i := 0; i < 2; i++ {
		got, err := s.Suggest(context.Background(), "page")
		if err != nil || got != "Seeks to amend rule 138" {
			t.Fatalf("call %d: %q err=%v", i, got, err)
		}
	}
	if stub.calls != 1 {
		t.Fatalf("expected one model call, got %d", stub.calls)
	}
}

func TestSuggest_Errors(t *testing.T) {
	if _, err := (&LLMSuggester{}).Suggest(context.Background(), "x"); err == nil {
		t.Fatal("expected not configured error")
	}
	s := &LLMSuggester{Client: &stubClient{answer: "   \n  "}, Model: "m"}
	if _, err := s.Suggest(context.Background(), "x"); !errors.Is(err, ErrNoSuggestion) {
		t.Fatalf("expected ErrNoSuggestion, got %v", err)
	}
	s = &LLMSuggester{Client: &stubClient{err: errors.New("boom")}, Model: "m"}
	if _, err := s.Suggest(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestBuildUserPrompt_Truncates(t *testing.T) {
	p := buildUserPrompt(strings.Repeat("é", maxPromptChars+100))
	if n := strings.Count(p, "é"); n != maxPromptChars {
		t.Fatalf("expected %d runes of page text, got %d", maxPromptChars, n)
	}
}
