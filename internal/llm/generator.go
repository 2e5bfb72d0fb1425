package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when a provider answers with no text.
var ErrEmptyResponse = errors.New("empty response from provider")

// TextGenerator implements Generator on top of any Completer.
type TextGenerator struct {
	completer Completer
}

func NewGenerator(c Completer) *TextGenerator {
	return &TextGenerator{completer: c}
}

// Answer sends the fully assembled prompt and returns the trimmed reply.
func (g *TextGenerator) Answer(ctx context.Context, prompt string) (string, error) {
	return g.complete(ctx, prompt)
}

// Translate asks the provider for a natural-sounding translation of text.
func (g *TextGenerator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return g.complete(ctx, TranslationPrompt(text, targetLang))
}

func (g *TextGenerator) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.completer.Complete(ctx, "", prompt)
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(resp.Content)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

func TranslationPrompt(text, targetLang string) string {
	return fmt.Sprintf("Translate the following English text to %s.\n"+
		"Keep the meaning accurate but make the translation sound natural in the target language.\n\n"+
		"Text to translate: %s", targetLang, text)
}
