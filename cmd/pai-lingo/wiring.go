package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/p-n-ai/pai-lingo/internal/ai"
	"github.com/p-n-ai/pai-lingo/internal/completeness"
	"github.com/p-n-ai/pai-lingo/internal/curriculum"
	"github.com/p-n-ai/pai-lingo/internal/ledger"
	"github.com/p-n-ai/pai-lingo/internal/platform/cache"
	"github.com/p-n-ai/pai-lingo/internal/platform/config"
	"github.com/p-n-ai/pai-lingo/internal/platform/database"
	"github.com/p-n-ai/pai-lingo/internal/report"
	"github.com/p-n-ai/pai-lingo/internal/translate"
)

const (
	translationBudgetScope = "translation"
	providerCheckTimeout   = 10 * time.Second
)

type resolverOptions struct {
	reviewPath string
	noAI       bool
}

// buildResolver chains the configured translation sources, most trusted
// first: reviewed workbook, dictionary files, the document's own complete
// records, AI providers, then phrase substitution.
func (a *app) buildResolver(ctx context.Context, doc *curriculum.Document, opts resolverOptions) (translate.Resolver, func(), error) {
	chain := translate.NewChain()
	cleanup := func() {}

	if opts.reviewPath != "" {
		rows, err := report.ImportWorkbook(opts.reviewPath)
		if err != nil {
			return nil, nil, err
		}
		review, conflicts := report.ReviewDictionary(rows)
		for _, c := range conflicts {
			slog.Warn("conflicting reviewed translations, keeping the first",
				"locale", c.Kept.Locale,
				"source", c.Kept.Source,
				"kept_address", c.Kept.Address,
				"dropped_address", c.Dropped.Address,
			)
		}
		chain.Add("review", review)
		slog.Info("review workbook loaded", "path", opts.reviewPath, "translations", len(rows))
	}

	var phrases *translate.PhraseTable
	paths := slices.Concat(a.cfg.Translate.DictionaryPaths, a.cfg.Translate.PhrasePaths)
	if len(paths) > 0 {
		dict, p, err := translate.LoadFiles(paths)
		if err != nil {
			return nil, nil, err
		}
		chain.Add("dictionary", dict)
		phrases = p
		slog.Info("translation files loaded", "files", len(paths), "entries", dict.Len())
	}

	if a.cfg.Translate.Corpus {
		corpus := translate.CorpusDictionary(doc, a.cfg.Locales.Source, a.cfg.Locales.Required)
		chain.Add("corpus", corpus)
		slog.Debug("corpus dictionary built", "entries", corpus.Len())
	}

	if !opts.noAI && a.cfg.HasAIProvider() {
		router := newAIRouter(ctx, a.cfg.AI)
		if router.HasProvider() {
			budget := ai.NewInMemoryBudget()
			budget.SetLimit(translationBudgetScope, int64(a.cfg.AI.TokenBudget))

			var resolver translate.Resolver = translate.NewAIResolver(router,
				translate.WithModel(a.cfg.AI.Model),
				translate.WithSourceLocale(a.cfg.Locales.Source),
				translate.WithBudget(budget, translationBudgetScope),
			)
			if a.cfg.Cache.Enabled {
				c, err := cache.New(ctx, a.cfg.Cache.URL)
				if err != nil {
					slog.Warn("translation cache unavailable, continuing without it", "error", err)
				} else {
					ttl := time.Duration(a.cfg.Cache.TTLHours) * time.Hour
					resolver = translate.NewCachedResolver(resolver, c, ttl)
					cleanup = func() { _ = c.Close() }
				}
			}
			chain.Add("ai", resolver)
			slog.Info("AI translation enabled", "providers", strings.Join(router.Names(), ","))
		}
	}

	if phrases != nil {
		chain.Add("phrases", phrases)
	}

	slog.Info("translation sources ready", "resolvers", chain.Len())
	return chain, cleanup, nil
}

// newAIRouter registers every configured provider in fallback order and
// drops the ones that fail their health check.
func newAIRouter(ctx context.Context, cfg config.AIConfig) *ai.Router {
	router := ai.NewRouter()
	if cfg.OpenAI.APIKey != "" {
		router.Register("openai", ai.NewOpenAIProvider(cfg.OpenAI.APIKey))
	}
	if cfg.DeepSeek.APIKey != "" {
		router.Register("deepseek", ai.NewDeepSeekProvider(cfg.DeepSeek.APIKey))
	}
	if cfg.OpenRouter.APIKey != "" {
		router.Register("openrouter", ai.NewOpenRouterProvider(cfg.OpenRouter.APIKey))
	}
	if cfg.Ollama.Enabled {
		router.Register("ollama", ai.NewOllamaProvider(cfg.Ollama.URL))
	}

	ctx, cancel := context.WithTimeout(ctx, providerCheckTimeout)
	defer cancel()
	router.Prune(ctx)
	return router
}

// runLedger records one fix run when the ledger is enabled and does nothing
// otherwise.
type runLedger struct {
	store  ledger.RunStore
	events ledger.EventLogger
	run    ledger.Run
	close  func()
}

func (a *app) openLedger(ctx context.Context, document string) (*runLedger, error) {
	if !a.cfg.Ledger.Enabled {
		return &runLedger{events: ledger.NopEventLogger{}, close: func() {}}, nil
	}

	if err := ledger.Migrate(a.cfg.Database.URL); err != nil {
		return nil, err
	}
	db, err := database.New(ctx, a.cfg.Database)
	if err != nil {
		return nil, err
	}
	store, err := ledger.NewPostgresStore(db.Pool)
	if err != nil {
		db.Close()
		return nil, err
	}
	run, err := store.StartRun(document)
	if err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("fix run recorded", "run_id", run.ID, "database", database.Target(a.cfg.Database.URL))
	return &runLedger{
		store:  store,
		events: ledger.NewPostgresEventLogger(db.Pool),
		run:    run,
		close:  db.Close,
	}, nil
}

// runFix patches doc and closes the ledger run as aborted when the engine
// stops early.
func (a *app) runFix(ctx context.Context, doc *curriculum.Document, resolver translate.Resolver, runLog *runLedger) (completeness.Summary, error) {
	engine := completeness.NewEngine(completeness.EngineConfig{
		Resolver: resolver,
		Required: a.cfg.Locales.Required,
		Source:   a.cfg.Locales.Source,
		Events:   runLog.events,
		RunID:    runLog.run.ID,
	})
	summary, err := engine.Fix(ctx, doc)
	if err != nil {
		runLog.finish(summary.Counts(), ledger.RunAborted)
		return summary, err
	}
	return summary, nil
}

func (l *runLedger) finish(counts ledger.Counts, status ledger.RunStatus) {
	if l.store == nil {
		return
	}
	if err := l.store.FinishRun(l.run.ID, counts, status); err != nil {
		slog.Error("failed to finish ledger run", "run_id", l.run.ID, "error", err)
	}
}

func printRuns(w io.Writer, runs []ledger.Run) error {
	var b strings.Builder
	for _, r := range runs {
		finished := "-"
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(&b, "%s  %-8s  %s  %s  total=%d patched=%d partial=%d unresolved=%d stale=%d  %s\n",
			r.ID,
			r.Status,
			r.StartedAt.Format(time.RFC3339),
			finished,
			r.Counts.Total,
			r.Counts.Patched,
			r.Counts.Partial,
			r.Counts.Unresolved,
			r.Counts.Stale,
			r.Document,
		)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func printRun(w io.Writer, run *ledger.Run, events []ledger.Event) error {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (%s) on %s\n", run.ID, run.Status, run.Document)
	fmt.Fprintf(&b, "started %s", run.StartedAt.Format(time.RFC3339))
	if run.FinishedAt != nil {
		fmt.Fprintf(&b, ", finished %s", run.FinishedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "\ntotal=%d patched=%d partial=%d unresolved=%d stale=%d\n",
		run.Counts.Total, run.Counts.Patched, run.Counts.Partial, run.Counts.Unresolved, run.Counts.Stale)

	for _, e := range events {
		if e.Locale == "" {
			continue
		}
		fmt.Fprintf(&b, "  %s  %s  %s", e.Address, e.Locale, e.EventType)
		if text, ok := e.Data["translation"].(string); ok {
			fmt.Fprintf(&b, "  %q", text)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
