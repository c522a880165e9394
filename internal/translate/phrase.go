package translate

import (
	"context"
	"sort"
	"strings"
)

// PhraseTable substitutes known phrases inside the source text. The result
// is best effort: fragments with no matching phrase stay in the source
// language. A text in which no phrase occurs is not resolved.
type PhraseTable struct {
	phrases   map[string]map[string]string // locale -> phrase -> replacement
	replacers map[string]*strings.Replacer
}

// NewPhraseTable creates an empty phrase table.
func NewPhraseTable() *PhraseTable {
	return &PhraseTable{
		phrases:   make(map[string]map[string]string),
		replacers: make(map[string]*strings.Replacer),
	}
}

// Add registers a phrase substitution for locale.
func (p *PhraseTable) Add(locale, phrase, replacement string) {
	if phrase == "" {
		return
	}
	byPhrase, ok := p.phrases[locale]
	if !ok {
		byPhrase = make(map[string]string)
		p.phrases[locale] = byPhrase
	}
	byPhrase[phrase] = replacement
	delete(p.replacers, locale)
}

// Len returns the number of phrases registered for locale.
func (p *PhraseTable) Len(locale string) int {
	return len(p.phrases[locale])
}

func (p *PhraseTable) Resolve(_ context.Context, text, locale string) (string, bool, error) {
	byPhrase := p.phrases[locale]
	matched := false
	for phrase := range byPhrase {
		if strings.Contains(text, phrase) {
			matched = true
			break
		}
	}
	if !matched {
		return "", false, nil
	}
	return p.replacer(locale).Replace(text), true, nil
}

// replacer builds the locale's replacer with longer phrases first, so the
// longest match wins where phrases overlap.
func (p *PhraseTable) replacer(locale string) *strings.Replacer {
	if r, ok := p.replacers[locale]; ok {
		return r
	}

	byPhrase := p.phrases[locale]
	phrases := make([]string, 0, len(byPhrase))
	for phrase := range byPhrase {
		phrases = append(phrases, phrase)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})

	oldnew := make([]string, 0, 2*len(phrases))
	for _, phrase := range phrases {
		oldnew = append(oldnew, phrase, byPhrase[phrase])
	}
	r := strings.NewReplacer(oldnew...)
	p.replacers[locale] = r
	return r
}
