package completeness

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/p-n-ai/pai-lingo/internal/curriculum"
)

// ErrStaleFinding is returned when the document no longer matches a finding.
var ErrStaleFinding = errors.New("stale finding")

// DuplicateKeyError reports a patch that would overwrite an existing locale.
type DuplicateKeyError struct {
	Address curriculum.Address
	Locale  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: locale %q already present", e.Address, e.Locale)
}

// Is lets errors.Is match DuplicateKeyError against ErrStaleFinding.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrStaleFinding
}

// PatchResult describes what a patch inserted and what is still missing.
type PatchResult struct {
	Address  curriculum.Address
	Inserted []string
	Residual []string
}

// Complete reports whether every missing locale was inserted.
func (r PatchResult) Complete() bool {
	return len(r.Residual) == 0
}

// Patch inserts the supplied translations into the explanation addressed by f.
//
// The record is relocated by address and its source text revalidated first.
// If any supplied locale already exists the whole patch is rejected with a
// *DuplicateKeyError and nothing is inserted. Locales missing from supply, or
// supplied as blank text, stay missing.
func Patch(doc *curriculum.Document, f Finding, supply map[string]string) (PatchResult, error) {
	opt, err := doc.Option(f.Address)
	if err != nil {
		return PatchResult{}, fmt.Errorf("%w: %w", ErrStaleFinding, err)
	}

	exp := opt.Explanation
	if current, _ := exp.Text(f.SourceLocale); current != f.Source {
		return PatchResult{}, fmt.Errorf("%w: %s source text changed from %q to %q",
			ErrStaleFinding, f.Address, f.Source, current)
	}

	locales := make([]string, 0, len(supply))
	for locale := range supply {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	for _, locale := range locales {
		if exp.Has(locale) {
			return PatchResult{}, &DuplicateKeyError{Address: f.Address, Locale: locale}
		}
	}

	result := PatchResult{Address: f.Address}
	for _, locale := range f.Missing {
		text, ok := supply[locale]
		if !ok || strings.TrimSpace(text) == "" {
			result.Residual = append(result.Residual, locale)
			continue
		}
		if err := exp.Insert(locale, text); err != nil {
			return result, fmt.Errorf("%s: inserting %q: %w", f.Address, locale, err)
		}
		result.Inserted = append(result.Inserted, locale)
	}
	return result, nil
}

// Residual returns f narrowed to the locales a patch left missing.
func (f Finding) Residual(r PatchResult) Finding {
	out := f
	out.Missing = slices.Clone(r.Residual)
	out.Present = append(slices.Clone(f.Present), r.Inserted...)
	return out
}
