package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/p-n-ai/pai-lingo/internal/ai"
)

const (
	defaultBudgetScope = "translation"
	defaultMaxTokens   = 512
)

const systemPrompt = `You translate short grammar explanations for a language-learning app.
Keep quoted example words and sentences in their original language.
Reply with the translation only, without quotes, notes or commentary.`

// AIResolver asks a chat completion model for each translation.
type AIResolver struct {
	completer    ai.Completer
	model        string
	sourceLocale string
	maxTokens    int
	budget       ai.BudgetChecker
	scope        string
}

// AIOption configures an AIResolver.
type AIOption func(*AIResolver)

// WithModel sets the model requested from the provider.
func WithModel(model string) AIOption {
	return func(r *AIResolver) {
		r.model = model
	}
}

// WithSourceLocale sets the locale of the texts being translated.
func WithSourceLocale(locale string) AIOption {
	return func(r *AIResolver) {
		r.sourceLocale = locale
	}
}

// WithBudget meters token usage under scope and stops resolving once the
// budget is exhausted.
func WithBudget(budget ai.BudgetChecker, scope string) AIOption {
	return func(r *AIResolver) {
		r.budget = budget
		if scope != "" {
			r.scope = scope
		}
	}
}

// NewAIResolver creates a resolver backed by completer.
func NewAIResolver(completer ai.Completer, opts ...AIOption) *AIResolver {
	r := &AIResolver{
		completer:    completer,
		sourceLocale: "en",
		maxTokens:    defaultMaxTokens,
		scope:        defaultBudgetScope,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *AIResolver) Resolve(ctx context.Context, text, locale string) (string, bool, error) {
	if strings.TrimSpace(text) == "" {
		return "", false, nil
	}

	if r.budget != nil {
		ok, err := r.budget.Check(r.scope)
		if err != nil {
			return "", false, fmt.Errorf("checking token budget: %w", err)
		}
		if !ok {
			slog.Warn("translation token budget exhausted", "scope", r.scope, "locale", locale)
			return "", false, nil
		}
	}

	resp, err := r.completer.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: r.userPrompt(text, locale)},
		},
		Model:       r.model,
		MaxTokens:   r.maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return "", false, fmt.Errorf("translating into %s: %w", locale, err)
	}

	if r.budget != nil {
		if err := r.budget.Record(r.scope, resp.TotalTokens()); err != nil {
			slog.Warn("failed to record token usage", "scope", r.scope, "error", err)
		}
	}

	translation := cleanTranslation(resp.Content)
	if translation == "" {
		return "", false, nil
	}
	return translation, true, nil
}

func (r *AIResolver) userPrompt(text, locale string) string {
	return fmt.Sprintf("Translate from %s into %s (locale code %q):\n\n%s",
		LanguageName(r.sourceLocale), LanguageName(locale), locale, text)
}

// LanguageName returns the English display name of a locale code, or the code
// itself when it is not a recognised language tag.
func LanguageName(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return locale
}

func cleanTranslation(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
