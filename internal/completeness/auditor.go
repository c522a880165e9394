// Package completeness finds explanation records that lack required locales
// and patches them with supplied translations.
package completeness

import (
	"slices"
	"strings"

	"github.com/p-n-ai/pai-lingo/internal/curriculum"
)

// Finding reports one incomplete explanation record.
type Finding struct {
	Address      curriculum.Address `json:"address"`
	Topic        string             `json:"topic,omitempty"`
	Choice       string             `json:"choice,omitempty"`
	SourceLocale string             `json:"source_locale"`
	Source       string             `json:"source"`
	Present      []string           `json:"present"`
	Missing      []string           `json:"missing"`
	// Blank lists required locales whose value exists but is empty or not a
	// string. They cannot be patched because patching never overwrites.
	Blank []string `json:"blank,omitempty"`
}

// Incomplete reports whether the finding still has anything to fix.
func (f Finding) Incomplete() bool {
	return len(f.Missing) > 0 || len(f.Blank) > 0
}

// Auditor reports explanation records that do not hold every required locale.
type Auditor struct {
	required []string
	source   string
}

// NewAuditor creates an Auditor for the required locale set. source is the
// locale whose text identifies a record and feeds translation.
func NewAuditor(required []string, source string) *Auditor {
	return &Auditor{
		required: slices.Clone(required),
		source:   source,
	}
}

// Required returns the required locale set in audit order.
func (a *Auditor) Required() []string {
	return slices.Clone(a.required)
}

// Audit walks doc in topic, sentence, option order and returns a finding for
// every incomplete explanation. It never mutates doc.
func (a *Auditor) Audit(doc *curriculum.Document) []Finding {
	var findings []Finding
	_ = doc.Walk(func(opt curriculum.Option) error {
		if f, ok := a.Inspect(opt); ok {
			findings = append(findings, f)
		}
		return nil
	})
	return findings
}

// Inspect checks a single option and reports whether it is incomplete.
func (a *Auditor) Inspect(opt curriculum.Option) (Finding, bool) {
	exp := opt.Explanation

	var missing, blank []string
	for _, locale := range a.required {
		if !exp.Has(locale) {
			missing = append(missing, locale)
			continue
		}
		if text, ok := exp.Text(locale); !ok || strings.TrimSpace(text) == "" {
			blank = append(blank, locale)
		}
	}
	if len(missing) == 0 && len(blank) == 0 {
		return Finding{}, false
	}

	source, _ := exp.Text(a.source)
	return Finding{
		Address:      opt.Address,
		Topic:        opt.Topic,
		Choice:       opt.Choice,
		SourceLocale: a.source,
		Source:       source,
		Present:      exp.Locales(),
		Missing:      missing,
		Blank:        blank,
	}, true
}
