package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"schemagraph/internal/workflow"
)

func validateCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the datasets and report rejected entities and dangling references",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, diags, err := a.loadIndex()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printDiagnostics(out, diags)
			fmt.Fprintf(out, "%d errors, %d warnings\n", len(diags.Errors), len(diags.Warnings))

			if diags.HasErrors() || (strict && diags.HasWarnings()) {
				return errors.New("validation failed")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on warnings too")

	return cmd
}

func indexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Print the schema hierarchy and mapping fan-in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, _, err := a.loadIndex()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "index version %d\n", idx.Version())

			for _, gid := range idx.GlobalSchemaIDs() {
				g := idx.Schema(gid)
				fmt.Fprintf(out, "%s (%s v%s, %d sources)\n", g.ID, g.Name, g.Version, idx.SourceCount(gid))

				for _, child := range idx.Children(gid) {
					s := idx.Schema(child)
					fmt.Fprintf(out, "  %-30s %-10s %s\n", s.ID, s.Kind, s.JurisdictionBucket())
				}

				for _, pid := range g.Properties {
					if fanIn := idx.FanIn(pid); len(fanIn) > 0 {
						fmt.Fprintf(out, "  %s <- %s\n", pid, strings.Join(fanIn, ", "))
					}
				}
			}

			for _, j := range idx.Jurisdictions() {
				fmt.Fprintf(out, "jurisdiction %-24s %s\n", j, strings.Join(idx.Bucket(j), ", "))
			}

			return nil
		},
	}
}

func summaryCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the review status breakdown per jurisdiction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, _, err := a.loadIndex()
			if err != nil {
				return err
			}

			s := workflow.Summarize(idx)
			if format != "text" {
				return writeStructured(cmd.OutOrStdout(), format, s)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d schemas (%d global, %d document), %d warnings\n",
				s.Schemas, s.GlobalSchemas, s.DocumentSchemas, s.Warnings)
			fmt.Fprintf(out, "pending %d, approved %d, conflicts %d\n",
				s.Totals.Pending(), s.Totals.Approved(), s.Totals.Conflicts())

			for _, name := range s.JurisdictionNames() {
				js := s.Jurisdictions[name]
				fmt.Fprintf(out, "%-24s %3d schemas %4d properties %4d mappings %4d pending\n",
					name, js.Schemas, js.Properties, js.Mappings, js.Counts.Pending())
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, yaml)")

	return cmd
}
