package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-lingo/internal/curriculum"
	"github.com/p-n-ai/pai-lingo/internal/platform/config"
	"github.com/p-n-ai/pai-lingo/internal/platform/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries configuration shared by every subcommand.
type app struct {
	cfg *config.Config

	localesFlag string
	sourceFlag  string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pai-lingo",
		Short: "Audit and complete the translations of grammar-study content",
		Long: `pai-lingo finds explanation records in a grammar-study document that lack
required locales, fills them from dictionaries, the document itself or an AI
provider, and rewrites the document without touching existing translations.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.localesFlag, "locales", "", "comma-separated required locales (overrides LEARN_REQUIRED_LOCALES)")
	root.PersistentFlags().StringVar(&a.sourceFlag, "source", "", "source locale (overrides LEARN_SOURCE_LOCALE)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides LEARN_LOG_LEVEL)")

	root.AddCommand(
		newAuditCmd(a),
		newFixCmd(a),
		newRepairCmd(a),
		newDedupeCmd(a),
		newExportCmd(a),
		newCompareCmd(a),
		newMigrateCmd(a),
		newRunsCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.localesFlag != "" {
		var locales []string
		for _, l := range strings.Split(a.localesFlag, ",") {
			if l = strings.TrimSpace(l); l != "" {
				locales = append(locales, l)
			}
		}
		cfg.Locales.Required = locales
	}
	if a.sourceFlag != "" {
		cfg.Locales.Source = a.sourceFlag
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.Log))
	a.cfg = cfg
	return nil
}

// load reads the document at path and, when enabled, checks its structure.
func (a *app) load(path string) (*curriculum.Document, error) {
	doc, err := curriculum.Load(path)
	if err != nil {
		return nil, err
	}
	if a.cfg.SchemaValidation {
		if err := curriculum.Validate(doc); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return doc, nil
}
