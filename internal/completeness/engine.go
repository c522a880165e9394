package completeness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/p-n-ai/pai-lingo/internal/curriculum"
	"github.com/p-n-ai/pai-lingo/internal/ledger"
	"github.com/p-n-ai/pai-lingo/internal/translate"
)

const defaultSourceLocale = "en"

// Status is the terminal state of one finding after a fix run.
type Status string

const (
	StatusPatched    Status = "patched"
	StatusPartial    Status = "partial"
	StatusUnresolved Status = "unresolved"
	StatusStale      Status = "stale"
)

// Outcome records what a fix run did with one finding.
type Outcome struct {
	Finding  Finding  `json:"finding"`
	Status   Status   `json:"status"`
	Inserted []string `json:"inserted,omitempty"`
	Residual []string `json:"residual,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Summary tallies a fix run. Remaining lists every record still incomplete
// afterwards, narrowed to its residual missing locales.
type Summary struct {
	Total      int       `json:"total"`
	Patched    int       `json:"patched"`
	Partial    int       `json:"partial"`
	Unresolved int       `json:"unresolved"`
	Stale      int       `json:"stale"`
	Remaining  []Finding `json:"remaining"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Counts converts the summary into ledger counts.
func (s Summary) Counts() ledger.Counts {
	return ledger.Counts{
		Total:      s.Total,
		Patched:    s.Patched,
		Partial:    s.Partial,
		Unresolved: s.Unresolved,
		Stale:      s.Stale,
	}
}

func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case StatusPatched:
		s.Patched++
	case StatusPartial:
		s.Partial++
	case StatusUnresolved:
		s.Unresolved++
	case StatusStale:
		s.Stale++
	}
}

// EngineConfig holds dependencies for the fix engine.
type EngineConfig struct {
	Resolver translate.Resolver
	Required []string
	Source   string // source locale (default "en")
	Events   ledger.EventLogger
	RunID    string
}

// Engine audits a document, resolves the missing translations and patches
// them in.
type Engine struct {
	auditor  *Auditor
	resolver translate.Resolver
	events   ledger.EventLogger
	runID    string
}

// NewEngine creates a new fix engine.
func NewEngine(cfg EngineConfig) *Engine {
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = translate.None
	}
	source := cfg.Source
	if source == "" {
		source = defaultSourceLocale
	}
	events := cfg.Events
	if events == nil {
		events = ledger.NopEventLogger{}
	}
	return &Engine{
		auditor:  NewAuditor(cfg.Required, source),
		resolver: resolver,
		events:   events,
		runID:    cfg.RunID,
	}
}

// Auditor returns the auditor the engine runs.
func (e *Engine) Auditor() *Auditor {
	return e.auditor
}

// Fix patches every incomplete explanation in doc that the resolver can
// supply translations for. Stale findings and resolution gaps are recorded
// in the summary and never abort the run. A cancelled context does, in which
// case doc may be partially patched and must not be saved.
func (e *Engine) Fix(ctx context.Context, doc *curriculum.Document) (Summary, error) {
	findings := e.auditor.Audit(doc)
	summary := Summary{Total: len(findings)}

	slog.Info("fixing incomplete explanations",
		"findings", len(findings),
		"required", strings.Join(e.auditor.Required(), ","),
	)

	for _, f := range findings {
		supply, err := e.resolve(ctx, f)
		if err != nil {
			return summary, err
		}

		outcome := e.apply(doc, f, supply)
		summary.add(outcome)
		if outcome.Status != StatusStale {
			if rest := f.Residual(PatchResult{Inserted: outcome.Inserted, Residual: outcome.Residual}); rest.Incomplete() {
				summary.Remaining = append(summary.Remaining, rest)
			}
		}
		e.logEvents(outcome, supply)
	}

	slog.Info("fix run finished",
		"total", summary.Total,
		"patched", summary.Patched,
		"partial", summary.Partial,
		"unresolved", summary.Unresolved,
		"stale", summary.Stale,
	)
	return summary, nil
}

// resolve asks the resolver for every missing locale of f. Resolver failures
// count as no translation; only cancellation is returned.
func (e *Engine) resolve(ctx context.Context, f Finding) (map[string]string, error) {
	supply := make(map[string]string, len(f.Missing))
	if strings.TrimSpace(f.Source) == "" {
		return supply, nil
	}

	for _, locale := range f.Missing {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, ok, err := e.resolver.Resolve(ctx, f.Source, locale)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("translation lookup failed",
				"address", f.Address.String(),
				"locale", locale,
				"error", err,
			)
			continue
		}
		if ok && strings.TrimSpace(text) != "" {
			supply[locale] = text
		}
	}
	return supply, nil
}

func (e *Engine) apply(doc *curriculum.Document, f Finding, supply map[string]string) Outcome {
	outcome := Outcome{Finding: f}

	result, err := Patch(doc, f, supply)
	if err != nil {
		if !errors.Is(err, ErrStaleFinding) {
			err = fmt.Errorf("patching %s: %w", f.Address, err)
		}
		slog.Warn("skipping finding", "address", f.Address.String(), "error", err)
		outcome.Status = StatusStale
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Inserted = result.Inserted
	outcome.Residual = result.Residual
	switch {
	case len(result.Inserted) == 0:
		outcome.Status = StatusUnresolved
	case result.Complete() && len(f.Blank) == 0:
		outcome.Status = StatusPatched
	default:
		outcome.Status = StatusPartial
	}
	return outcome
}

// logEvents records the outcome of one record, then one event per inserted
// or still missing locale.
func (e *Engine) logEvents(o Outcome, supply map[string]string) {
	address := o.Finding.Address.String()
	e.logEvent(e.recordEvent(o))
	for _, locale := range o.Inserted {
		e.logEvent(ledger.Event{
			RunID:     e.runID,
			EventType: ledger.EventTranslationInserted,
			Address:   address,
			Locale:    locale,
			Data:      map[string]any{"translation": supply[locale]},
		})
	}
	for _, locale := range o.Residual {
		e.logEvent(ledger.Event{
			RunID:     e.runID,
			EventType: ledger.EventTranslationMissing,
			Address:   address,
			Locale:    locale,
		})
	}
}

func (e *Engine) logEvent(event ledger.Event) {
	if err := e.events.LogEvent(event); err != nil {
		slog.Error("failed to log fix event",
			"type", event.EventType,
			"address", event.Address,
			"locale", event.Locale,
			"error", err,
		)
	}
}

func (e *Engine) recordEvent(o Outcome) ledger.Event {
	eventType := map[Status]string{
		StatusPatched:    ledger.EventPatched,
		StatusPartial:    ledger.EventPartial,
		StatusUnresolved: ledger.EventUnresolved,
		StatusStale:      ledger.EventStale,
	}[o.Status]

	data := map[string]any{
		"source": o.Finding.Source,
	}
	if len(o.Inserted) > 0 {
		data["inserted"] = o.Inserted
	}
	if len(o.Residual) > 0 {
		data["residual"] = o.Residual
	}
	if len(o.Finding.Blank) > 0 {
		data["blank"] = o.Finding.Blank
	}
	if o.Error != "" {
		data["error"] = o.Error
	}

	return ledger.Event{
		RunID:     e.runID,
		EventType: eventType,
		Address:   o.Finding.Address.String(),
		Data:      data,
	}
}
