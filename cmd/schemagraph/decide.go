package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"schemagraph/internal/export"
	"schemagraph/internal/index"
	"schemagraph/internal/match"
	"schemagraph/internal/model"
	"schemagraph/internal/workflow"
)

type decideOptions struct {
	metricsFile   string
	statuses      []string
	minConfidence float64
	dryRun        bool
}

func decideCmd(a *app) *cobra.Command {
	var opts decideOptions

	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Approve or reject properties and mappings",
		Long: `Record reviewer decisions and write them back to the dataset store.

The reviewer comes from --reviewer or review.reviewer in the config.`,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.metricsFile, "metrics-textfile", "", "Write workflow metrics in Prometheus text format to this file")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Apply decisions without saving them")

	cmd.AddCommand(
		decideOneCmd(a, &opts, workflow.EntityProperty),
		decideOneCmd(a, &opts, workflow.EntityMapping),
		decideBulkCmd(a, &opts),
		decideImportCmd(a, &opts),
	)

	return cmd
}

func decideOneCmd(a *app, opts *decideOptions, kind workflow.EntityKind) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind) + " <id> <approve|reject>",
		Short: "Decide on one " + string(kind),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := workflow.ParseDecision(args[1])
			if err != nil {
				return err
			}

			return a.runDecisions(cmd.OutOrStdout(), opts, func(e *workflow.Engine) (int, error) {
				var status string

				switch kind {
				case workflow.EntityProperty:
					p, err := e.ApplyPropertyDecision(args[0], d, a.cfg.Review.Reviewer)
					if err != nil {
						return 0, withSuggestion(err, args[0], propertyIDs(e.Index()))
					}

					status = string(p.Status)
				default:
					m, err := e.ApplyMappingDecision(args[0], d, a.cfg.Review.Reviewer)
					if err != nil {
						return 0, withSuggestion(err, args[0], mappingIDs(e.Index()))
					}

					status = string(m.Status)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s\n", kind, args[0], status)

				return 1, nil
			})
		},
	}
}

func decideBulkCmd(a *app, opts *decideOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk <property|mapping> <approve|reject> [id...]",
		Short: "Decide on many entities at once",
		Long: `Apply one decision to many entities. Without ids, the entities are
selected with --status and --min-confidence. Each entity is decided on its
own: failures are reported and the rest still apply.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := workflow.ParseEntityKind(args[0])
			if err != nil {
				return err
			}

			d, err := workflow.ParseDecision(args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			return a.runDecisions(out, opts, func(e *workflow.Engine) (int, error) {
				ids := args[2:]
				if len(ids) == 0 {
					ids, err = selectIDs(e.Index().Collection(), kind, opts)
					if err != nil {
						return 0, err
					}
				}

				if len(ids) == 0 {
					return 0, errors.New("no entities selected")
				}

				res, err := e.ApplyBulkDecision(kind, ids, d, a.cfg.Review.Reviewer)
				if err != nil {
					return 0, err
				}

				for _, f := range res.Failed {
					fmt.Fprintf(out, "failed  %s: %s\n", f.ID, f.Reason())
				}

				fmt.Fprintf(out, "%d updated, %d failed\n", len(res.Updated), len(res.Failed))

				return len(res.Updated), nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&opts.statuses, "status", nil, "Select entities in these statuses (default: pending)")
	cmd.Flags().Float64Var(&opts.minConfidence, "min-confidence", 0, "Select entities with at least this confidence")

	return cmd
}

func decideImportCmd(a *app, opts *decideOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <sheet.csv>",
		Short: "Apply the decisions recorded in a reviewed export sheet",
		Long: `Read a properties or mappings sheet written by export, after reviewers
edited its Status column, and apply every row whose status is approved or
rejected and differs from the dataset. Rows keep the sheet's Reviewer when
it has one; the configured reviewer is used otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, reviews, err := export.ReadReviewsFile(args[0])
			if err != nil {
				return err
			}

			kind := workflow.EntityProperty
			if name == export.SheetMappings {
				kind = workflow.EntityMapping
			}

			out := cmd.OutOrStdout()

			return a.runDecisions(out, opts, func(e *workflow.Engine) (int, error) {
				updated, skipped, failed := 0, 0, 0

				for _, rv := range reviews {
					d, ok := reviewDecision(e.Index(), kind, rv)
					if !ok {
						skipped++
						continue
					}

					actor := rv.Reviewer
					if actor == "" {
						actor = a.cfg.Review.Reviewer
					}

					if kind == workflow.EntityProperty {
						_, err = e.ApplyPropertyDecision(rv.ID, d, actor)
					} else {
						_, err = e.ApplyMappingDecision(rv.ID, d, actor)
					}

					if err != nil {
						failed++
						fmt.Fprintf(out, "failed  %s: %v\n", rv.ID, err)

						continue
					}

					updated++
				}

				fmt.Fprintf(out, "%d updated, %d unchanged, %d failed\n", updated, skipped, failed)

				return updated, nil
			})
		},
	}
}

// reviewDecision maps a sheet row to a decision. Rows that are not approved
// or rejected, or already match the dataset, yield none. Unknown ids yield
// a decision so the engine reports them.
func reviewDecision(idx *index.Index, kind workflow.EntityKind, rv export.Review) (workflow.Decision, bool) {
	var d workflow.Decision

	switch rv.Status {
	case string(model.MappingApproved):
		d = workflow.DecisionApprove
	case string(model.MappingRejected):
		d = workflow.DecisionReject
	default:
		return "", false
	}

	var current string

	if kind == workflow.EntityProperty {
		if p := idx.Property(rv.ID); p != nil {
			current = string(p.Status)
		}
	} else if m := idx.Mapping(rv.ID); m != nil {
		current = string(m.Status)
	}

	return d, current != rv.Status
}

// runDecisions opens the store, lets apply decide, then saves the store if
// anything changed.
func (a *app) runDecisions(out io.Writer, opts *decideOptions, apply func(*workflow.Engine) (int, error)) error {
	if a.cfg.Review.Reviewer == "" {
		return errors.New("no reviewer: set --reviewer or review.reviewer")
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	state, err := a.loadStoreIndex(store)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()

	engine, err := workflow.New(state.idx, workflow.WithLogger(a.logger), workflow.WithRegisterer(reg))
	if err != nil {
		return err
	}

	updated, applyErr := apply(engine)
	applyErr = state.explain(applyErr)

	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
			a.logger.Warn("Failed to write metrics", "path", opts.metricsFile, "error", err)
		}
	}

	if updated > 0 && !opts.dryRun {
		if err := state.save(); err != nil {
			return err
		}
	}

	counts := engine.Counts()
	fmt.Fprintf(out, "pending %d, approved %d, conflicts %d\n", counts.Pending(), counts.Approved(), counts.Conflicts())

	return applyErr
}

// selectIDs picks the entities of kind matching the status and confidence
// selectors, in collection order.
func selectIDs(c *model.Collection, kind workflow.EntityKind, opts *decideOptions) ([]string, error) {
	statuses := opts.statuses
	if len(statuses) == 0 {
		statuses = []string{"pending"}
	}

	var ids []string

	switch kind {
	case workflow.EntityProperty:
		f := model.PropertyFilter{MinConfidence: opts.minConfidence}
		for _, s := range statuses {
			st, err := model.ParsePropertyStatus(s)
			if err != nil {
				return nil, err
			}

			f.Statuses = append(f.Statuses, st)
		}

		for _, p := range c.FilterProperties(f) {
			ids = append(ids, p.ID)
		}
	default:
		f := model.MappingFilter{MinConfidence: opts.minConfidence}
		for _, s := range statuses {
			st, err := model.ParseMappingStatus(s)
			if err != nil {
				return nil, err
			}

			f.Statuses = append(f.Statuses, st)
		}

		for _, m := range c.FilterMappings(f) {
			ids = append(ids, m.ID)
		}
	}

	return ids, nil
}

// withSuggestion adds "did you mean" candidates to a not-found error.
func withSuggestion(err error, id string, known []string) error {
	if !errors.Is(err, model.ErrNotFound) {
		return err
	}

	if near := match.Closest(id, known, 3); len(near) > 0 {
		return fmt.Errorf("%w (did you mean %v?)", err, near)
	}

	return err
}

func propertyIDs(idx *index.Index) []string {
	c := idx.Collection()
	ids := make([]string, 0, len(c.Properties))

	for _, p := range c.Properties {
		ids = append(ids, p.ID)
	}

	return ids
}

func mappingIDs(idx *index.Index) []string {
	c := idx.Collection()
	ids := make([]string, 0, len(c.Mappings))

	for _, m := range c.Mappings {
		ids = append(ids, m.ID)
	}

	return ids
}
