// Package translate resolves missing locale text for explanation records.
// Every source (static dictionaries, phrase tables, the document itself, an
// AI provider) satisfies the same Resolver contract and none is assumed to
// succeed.
package translate

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Resolver looks up the translation of text into locale. ok is false when no
// translation is available. A non-nil error means the lookup itself failed;
// callers treat it as no translation.
type Resolver interface {
	Resolve(ctx context.Context, text, locale string) (translation string, ok bool, err error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, text, locale string) (string, bool, error)

func (f ResolverFunc) Resolve(ctx context.Context, text, locale string) (string, bool, error) {
	return f(ctx, text, locale)
}

// None never resolves anything.
var None Resolver = ResolverFunc(func(context.Context, string, string) (string, bool, error) {
	return "", false, nil
})

// Chain tries each resolver in order and returns the first translation found.
// Errors are logged and the next resolver is tried.
type Chain struct {
	names     []string
	resolvers []Resolver
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add appends a named resolver to the chain.
func (c *Chain) Add(name string, r Resolver) *Chain {
	c.names = append(c.names, name)
	c.resolvers = append(c.resolvers, r)
	return c
}

// Len returns the number of resolvers in the chain.
func (c *Chain) Len() int {
	return len(c.resolvers)
}

func (c *Chain) Resolve(ctx context.Context, text, locale string) (string, bool, error) {
	for i, r := range c.resolvers {
		translation, ok, err := r.Resolve(ctx, text, locale)
		if err != nil {
			if ctx.Err() != nil {
				return "", false, ctx.Err()
			}
			slog.Warn("resolver failed, trying next",
				"resolver", c.names[i],
				"locale", locale,
				"error", err,
			)
			continue
		}
		if ok {
			slog.Debug("translation resolved", "resolver", c.names[i], "locale", locale)
			return translation, true, nil
		}
	}
	return "", false, nil
}

// normalizeKey canonicalizes source text for lookup: NFC form, trimmed.
func normalizeKey(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}
