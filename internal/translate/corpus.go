package translate

import (
	"strings"

	"github.com/p-n-ai/pai-lingo/internal/curriculum"
)

// CorpusDictionary builds a dictionary from every explanation in doc that
// already holds all of locales. Identical source texts elsewhere in the
// document can then reuse those translations.
func CorpusDictionary(doc *curriculum.Document, source string, locales []string) *Dictionary {
	dict := NewDictionary()
	_ = doc.Walk(func(opt curriculum.Option) error {
		exp := opt.Explanation
		text, ok := exp.Text(source)
		if !ok || strings.TrimSpace(text) == "" {
			return nil
		}
		for _, locale := range locales {
			if t, ok := exp.Text(locale); !ok || strings.TrimSpace(t) == "" {
				return nil
			}
		}
		for _, locale := range locales {
			if locale == source {
				continue
			}
			t, _ := exp.Text(locale)
			dict.Add(text, locale, t)
		}
		return nil
	})
	return dict
}
