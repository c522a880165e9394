package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-lingo/internal/completeness"
	"github.com/p-n-ai/pai-lingo/internal/curriculum"
	"github.com/p-n-ai/pai-lingo/internal/jsondoc"
	"github.com/p-n-ai/pai-lingo/internal/ledger"
	"github.com/p-n-ai/pai-lingo/internal/platform/database"
	"github.com/p-n-ai/pai-lingo/internal/report"
)

func newAuditCmd(a *app) *cobra.Command {
	var (
		jsonOut          string
		xlsxOut          string
		failOnIncomplete bool
	)

	cmd := &cobra.Command{
		Use:   "audit <document>",
		Short: "List explanations that lack required locales",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.load(args[0])
			if err != nil {
				return err
			}

			findings := completeness.NewAuditor(a.cfg.Locales.Required, a.cfg.Locales.Source).Audit(doc)
			if err := report.PrintFindings(cmd.OutOrStdout(), findings); err != nil {
				return err
			}
			if jsonOut != "" {
				if err := report.WriteJSONFile(jsonOut, findings); err != nil {
					return err
				}
			}
			if xlsxOut != "" {
				if err := report.ExportWorkbook(xlsxOut, findings); err != nil {
					return err
				}
			}
			if failOnIncomplete && len(findings) > 0 {
				return fmt.Errorf("%d incomplete explanation(s)", len(findings))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jsonOut, "json", "", "write findings as JSON to this file")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "write a review workbook to this file")
	cmd.Flags().BoolVar(&failOnIncomplete, "fail-on-incomplete", false, "exit non-zero when any explanation is incomplete")
	return cmd
}

func newFixCmd(a *app) *cobra.Command {
	var (
		dryRun       bool
		noAI         bool
		reviewPath   string
		remainingOut string
		xlsxOut      string
	)

	cmd := &cobra.Command{
		Use:   "fix <document>",
		Short: "Fill missing locales and rewrite the document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx := cmd.Context()

			doc, err := a.load(path)
			if err != nil {
				return err
			}

			resolver, closeResolver, err := a.buildResolver(ctx, doc, resolverOptions{
				reviewPath: reviewPath,
				noAI:       noAI,
			})
			if err != nil {
				return err
			}
			defer closeResolver()

			runLog, err := a.openLedger(ctx, path)
			if err != nil {
				return err
			}
			defer runLog.close()

			summary, err := a.runFix(ctx, doc, resolver, runLog)
			if err != nil {
				return fmt.Errorf("fix aborted, %s left unchanged: %w", path, err)
			}

			changed := summary.Patched+summary.Partial > 0 || doc.Repaired > 0 || len(doc.Duplicates) > 0
			switch {
			case dryRun:
				slog.Info("dry run, document not written", "path", path)
			case changed:
				if err := curriculum.Save(doc, path); err != nil {
					return err
				}
			}
			runLog.finish(summary.Counts(), ledger.RunFinished)

			if err := report.PrintSummary(cmd.OutOrStdout(), summary); err != nil {
				return err
			}
			if remainingOut != "" {
				if err := report.WriteJSONFile(remainingOut, summary.Remaining); err != nil {
					return err
				}
			}
			if xlsxOut != "" {
				if err := report.ExportWorkbook(xlsxOut, summary.Remaining); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve and report without writing the document")
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "do not call AI providers")
	cmd.Flags().StringVar(&reviewPath, "review", "", "reviewed workbook whose translations take precedence")
	cmd.Flags().StringVar(&remainingOut, "remaining", "", "write still-incomplete records as JSON to this file")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "write a review workbook of still-incomplete records to this file")
	return cmd
}

func newRepairCmd(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "repair <document>",
		Short: "Remove trailing separators that make the document unparseable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading document: %w", err)
			}

			if _, _, _, err := jsondoc.ParseRepaired(data); err != nil {
				return fmt.Errorf("%s: still malformed after repair: %w", path, err)
			}
			repaired, n := jsondoc.Repair(data)

			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no trailing separators found")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d trailing separator(s)\n", n)
			if check {
				return nil
			}
			return curriculum.WriteFile(path, repaired)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "report without rewriting the document")
	return cmd
}

func newDedupeCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "dedupe <document>",
		Short: "Report and collapse duplicate keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := curriculum.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(doc.Duplicates) == 0 {
				fmt.Fprintln(out, "no duplicate keys found")
				return nil
			}
			for _, d := range doc.Duplicates {
				fmt.Fprintf(out, "%d:%d  %s  duplicate key %q\n", d.Line, d.Column, d.Path, d.Key)
			}
			fmt.Fprintf(out, "%d duplicate key(s)\n", len(doc.Duplicates))
			if dryRun {
				return nil
			}
			return curriculum.Save(doc, path)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report without rewriting the document")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <findings.json> <workbook.xlsx>",
		Short: "Convert a findings list into a review workbook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			findings, err := report.ReadJSONFile(args[0])
			if err != nil {
				return err
			}
			if err := report.ExportWorkbook(args[1], findings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d finding(s) to %s\n", len(findings), args[1])
			return nil
		},
	}
}

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <reference.json> <target.json>",
		Short: "List keys of a reference locale file missing from a target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			missing, err := curriculum.CompareLocaleFiles(args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, key := range missing {
				fmt.Fprintln(out, key)
			}
			fmt.Fprintf(out, "%d key(s) missing from %s\n", len(missing), args[1])
			return nil
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply ledger database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ledger.Migrate(a.cfg.Database.URL); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ledger schema up to date on %s\n", database.Target(a.cfg.Database.URL))
			return nil
		},
	}
}

func newRunsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recent fix runs, or show one run and its events",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.New(cmd.Context(), a.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			store, err := ledger.NewPostgresStore(db.Pool)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				run, err := store.GetRun(args[0])
				if err != nil {
					return err
				}
				events, err := ledger.NewPostgresEventLogger(db.Pool).ListEvents(run.ID)
				if err != nil {
					return err
				}
				return printRun(cmd.OutOrStdout(), run, events)
			}

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}
