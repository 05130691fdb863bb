// Package suggest asks a chat model for a document subject when none of the
// text heuristics recognise one.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/notifyarchive/internal/cache"
	"github.com/hyperifyio/notifyarchive/internal/llm"
)

// maxPromptChars bounds how much first-page text is sent to the model.
const maxPromptChars = 4000

const systemMessage = "You name archived government notifications. Reply with one line of plain text: " +
	"the subject of the notification in at most 12 words. No quotes, no numbering, no date, no notification number."

// ErrNoSuggestion is returned when the model answers with nothing usable.
var ErrNoSuggestion = errors.New("no subject suggestion")

// LLMSuggester produces a raw subject line from first-page text.
type LLMSuggester struct {
	Client llm.Client
	Model  string
	Cache  *cache.LLMCache
}

// Suggest returns a one-line subject. The caller normalizes it.
func (s *LLMSuggester) Suggest(ctx context.Context, text string) (string, error) {
	if s == nil || s.Client == nil || s.Model == "" {
		return "", errors.New("suggester not configured")
	}
	user := buildUserPrompt(text)
	key := cache.KeyFrom(s.Model, systemMessage+"\n\n"+user)
	if s.Cache != nil {
		if raw, ok, _ := s.Cache.Get(ctx, key); ok && len(raw) > 0 {
			log.Debug().Str("model", s.Model).Msg("subject suggestion from cache")
			return string(raw), nil
		}
	}

	resp, err := s.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("suggest call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoSuggestion
	}
	line := firstLine(resp.Choices[0].Message.Content)
	if line == "" {
		return "", ErrNoSuggestion
	}
	if s.Cache != nil {
		if err := s.Cache.Save(ctx, key, []byte(line)); err != nil {
			log.Warn().Err(err).Msg("suggestion cache save failed")
		}
	}
	return line, nil
}

func buildUserPrompt(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > maxPromptChars {
		text = string([]rune(text)[:maxPromptChars])
	}
	return "First page of the notification:\n\n" + text
}

// firstLine keeps the first non-blank line of a model answer without
// surrounding quotes or a leading "Subject:" label.
func firstLine(s string) string {
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if i := strings.Index(l, ":"); i >= 0 && strings.EqualFold(strings.TrimSpace(l[:i]), "subject") {
			l = strings.TrimSpace(l[i+1:])
		}
		return strings.Trim(l, "\"'`")
	}
	return ""
}
