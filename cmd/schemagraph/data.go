package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"schemagraph/internal/dataset"
	"schemagraph/internal/export"
	"schemagraph/internal/ingest"
	"schemagraph/internal/match"
	"schemagraph/internal/model"
	"schemagraph/internal/transform"
)

func suggestCmd(a *app) *cobra.Command {
	var (
		top      int
		minScore float64
	)

	cmd := &cobra.Command{
		Use:   "suggest <property-id>",
		Short: "Rank global properties as mapping targets for a local property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, _, err := a.loadIndex()
			if err != nil {
				return err
			}

			candidates, err := match.Suggest(idx, args[0])
			if err != nil {
				return withSuggestion(err, args[0], propertyIDs(idx))
			}

			candidates = candidates.AboveThreshold(minScore).Top(top)

			out := cmd.OutOrStdout()
			if len(candidates) == 0 {
				fmt.Fprintln(out, "no candidates")
				return nil
			}

			for _, c := range candidates {
				fmt.Fprintf(out, "%-30s %.2f  (name %.2f, type %.2f)\n", c.Target.ID, c.Score, c.NameScore, c.TypeScore)
			}

			if candidates.IsAmbiguous(match.DefaultAmbiguityThreshold) {
				fmt.Fprintln(out, "top candidates are close; review carefully")
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 5, "Number of candidates to show")
	cmd.Flags().Float64Var(&minScore, "min-score", match.DefaultMinScore, "Hide candidates scoring below this")

	return cmd
}

func resolveCmd(a *app) *cobra.Command {
	var (
		values []string
		format string
	)

	cmd := &cobra.Command{
		Use:   "resolve <schema-id>",
		Short: "Express a document's values against global properties",
		Long: `Apply the document schema's mappings to its values. Values default to
each property's first example; override them with --value property=value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, _, err := a.loadIndex()
			if err != nil {
				return err
			}

			overrides := make(map[string]string, len(values))

			for _, kv := range values {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("bad --value %q, want property=value", kv)
				}

				overrides[k] = v
			}

			resolved, err := transform.Resolve(idx, args[0], overrides)
			if err != nil {
				return err
			}

			if format != "text" {
				return writeStructured(cmd.OutOrStdout(), format, resolved)
			}

			for _, v := range resolved {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %-20s <- %s %q (%s, %.2f)\n",
					v.GlobalProperty, v.Value, v.OriginalProperty, v.OriginalValue, v.Mapping, v.Confidence)
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&values, "value", nil, "Local value as property=value (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, yaml)")

	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var (
		dir           string
		sqlDriver     string
		dsn           string
		minConfidence float64
		statuses      []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the validation sheets as CSV files or SQL tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := a.cfg.Export
			if dir != "" {
				overrides.Dir = dir
			}

			if sqlDriver != "" {
				overrides.SQLDriver, overrides.DSN = sqlDriver, dsn
			}

			if cmd.Flags().Changed("min-confidence") {
				overrides.MinConfidence = minConfidence
			}

			if len(statuses) > 0 {
				overrides.Statuses = statuses
			}

			a.cfg.Export = overrides
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			idx, _, err := a.loadIndex()
			if err != nil {
				return err
			}

			sheets := export.Build(idx, a.cfg.ExportOptions())
			out := cmd.OutOrStdout()

			if a.cfg.Export.SQLDriver != "" {
				return a.exportSQL(cmd.Context(), sheets)
			}

			paths, err := export.WriteDir(a.cfg.Export.Dir, sheets)
			if err != nil {
				return err
			}

			for i, p := range paths {
				fmt.Fprintf(out, "wrote %s (%d rows)\n", p, len(sheets[i].Rows))
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&dir, "dir", "", "Directory for CSV files")
	flags.StringVar(&sqlDriver, "sql-driver", "", "Write to a database instead (sqlite, postgres, mysql)")
	flags.StringVar(&dsn, "dsn", "", "Data source name for --sql-driver")
	flags.Float64Var(&minConfidence, "min-confidence", 0, "Only export entities with at least this confidence")
	flags.StringSliceVar(&statuses, "status", nil, "Only export entities in these statuses")

	return cmd
}

// driverNames maps a dialect to the database/sql driver registered for it.
var driverNames = map[export.Dialect]string{
	export.DialectSQLite:   "sqlite",
	export.DialectPostgres: "postgres",
	export.DialectMySQL:    "mysql",
}

func (a *app) exportSQL(ctx context.Context, sheets []export.Sheet) error {
	dialect, err := export.DialectForDriver(a.cfg.Export.SQLDriver)
	if err != nil {
		return err
	}

	db, err := sql.Open(driverNames[dialect], a.cfg.Export.DSN)
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}

	if err := export.WriteSQL(ctx, db, dialect, sheets); err != nil {
		return err
	}

	for _, s := range sheets {
		a.logger.Info("Sheet exported", "table", export.TableName(s), "rows", len(s.Rows))
	}

	return nil
}

func ingestCmd(a *app) *cobra.Command {
	var (
		parent string
		output string
	)

	cmd := &cobra.Command{
		Use:   "ingest <export.json>",
		Short: "Convert a raw extraction export into document schemas",
		Long: `Convert extracted documents into document schemas with one property per
extracted key. Results are merged into the dataset store, or written to
--output as a new dataset file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := ingest.LoadExport(args[0])
			if err != nil {
				return err
			}

			var (
				store *dataset.Store
				known = &model.Collection{}
			)

			if output == "" {
				store, err = a.openStore()
				if err != nil {
					return err
				}

				known, err = store.Load()
				if err != nil {
					return err
				}
			} else if c, _, err := dataset.LoadGlob(a.cfg.Dataset.Paths...); err == nil {
				known = c
			} else {
				a.logger.Debug("Ingesting without existing datasets", "error", err)
			}

			converted, diags := ingest.Convert(exp.Documents, ingest.Options{Parent: parent, Known: known})
			printDiagnostics(cmd.ErrOrStderr(), diags)

			if diags.HasErrors() {
				return errors.New("ingestion failed")
			}

			if output != "" {
				if err := dataset.WriteFile(dataset.FromCollection(converted), output); err != nil {
					return err
				}
			} else {
				known.Merge(converted)

				if err := store.Save(known); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ingested %d documents: %d schemas, %d properties\n",
				len(exp.Documents), len(converted.Schemas), len(converted.Properties))

			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Global schema the documents map into")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write a new dataset file instead of updating the store")

	return cmd
}
