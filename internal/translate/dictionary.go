package translate

import (
	"context"
	"strings"
)

// Dictionary resolves by exact source text. Keys are NFC-normalized and
// trimmed, so composed and decomposed spellings match.
type Dictionary struct {
	entries map[string]map[string]string // source text -> locale -> translation
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string]map[string]string)}
}

// Add registers a translation. Blank translations are ignored.
func (d *Dictionary) Add(source, locale, translation string) {
	if strings.TrimSpace(translation) == "" {
		return
	}
	key := normalizeKey(source)
	byLocale, ok := d.entries[key]
	if !ok {
		byLocale = make(map[string]string)
		d.entries[key] = byLocale
	}
	byLocale[locale] = translation
}

// Merge copies every entry of other into d; other wins on conflicts.
func (d *Dictionary) Merge(other *Dictionary) {
	for source, byLocale := range other.entries {
		for locale, translation := range byLocale {
			d.Add(source, locale, translation)
		}
	}
}

// Len returns the number of source texts.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Lookup returns the translation of source into locale.
func (d *Dictionary) Lookup(source, locale string) (string, bool) {
	t, ok := d.entries[normalizeKey(source)][locale]
	return t, ok
}

func (d *Dictionary) Resolve(_ context.Context, text, locale string) (string, bool, error) {
	t, ok := d.Lookup(text, locale)
	return t, ok, nil
}
