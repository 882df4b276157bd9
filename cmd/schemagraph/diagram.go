package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"schemagraph/internal/diagram"
	"schemagraph/internal/index"
	"schemagraph/internal/watch"
)

type diagramOptions struct {
	view   string
	format string
	output string
	all    bool
	watch  bool
}

func diagramCmd(a *app) *cobra.Command {
	var opts diagramOptions

	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Render a relationship diagram (hierarchy, mappings or jurisdictions)",
		Long: `Render the datasets as a diagram.

With --all every view is rendered; --output is then a directory receiving
one file per view. With --watch the diagram is rendered again whenever a
dataset file changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.view == "" {
				opts.view = a.cfg.Diagram.View
			}

			if opts.format == "" {
				opts.format = a.cfg.Diagram.Format
			}

			if opts.output == "" {
				opts.output = a.cfg.Diagram.Output
			}

			modes := diagram.ViewModes
			if !opts.all {
				mode, err := diagram.ParseViewMode(opts.view)
				if err != nil {
					return err
				}

				modes = []diagram.ViewMode{mode}
			}

			format, err := diagram.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			render := func(ctx context.Context) error {
				idx, _, err := a.loadIndex()
				if err != nil {
					return err
				}

				return renderDiagrams(ctx, cmd.OutOrStdout(), idx, modes, format, opts)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := render(ctx); err != nil {
				return err
			}

			if !opts.watch {
				return nil
			}

			return a.watchDatasets(ctx, render)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.view, "view", "", "View mode (hierarchy, mappings, jurisdictions)")
	flags.StringVarP(&opts.format, "format", "f", "", "Output format (mermaid, dot, json)")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file, or directory with --all (default: stdout)")
	flags.BoolVar(&opts.all, "all", false, "Render every view")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "Re-render when dataset files change")

	return cmd
}

func renderDiagrams(ctx context.Context, stdout io.Writer, idx *index.Index,
	modes []diagram.ViewMode, format diagram.Format, opts diagramOptions,
) error {
	graphs, err := diagram.ProjectAll(ctx, idx, modes...)
	if err != nil {
		return err
	}

	for i, g := range graphs {
		if opts.output == "" {
			if i > 0 {
				fmt.Fprintln(stdout)
			}

			if err := diagram.Render(stdout, g, format); err != nil {
				return err
			}

			continue
		}

		path := opts.output
		if opts.all {
			path = filepath.Join(opts.output, g.Mode.String()+format.Extension())
		}

		if err := renderFile(path, g, format); err != nil {
			return err
		}

		fmt.Fprintf(stdout, "wrote %s (%d nodes, %d edges)\n", path, len(g.Nodes), len(g.Edges))
	}

	return nil
}

func renderFile(path string, g *diagram.Graph, format diagram.Format) error {
	f, err := createOutput(path)
	if err != nil {
		return err
	}

	if err := diagram.Render(f, g, format); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// watchDatasets calls onChange after every debounced dataset change until
// ctx is cancelled. Each call rebuilds a fresh index.
func (a *app) watchDatasets(ctx context.Context, onChange func(context.Context) error) error {
	w, err := watch.New(watch.Config{
		Patterns: a.cfg.Dataset.Paths,
		Debounce: a.cfg.Watch.Debounce,
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}
	defer w.Close()

	err = w.Run(ctx, func(ctx context.Context, b watch.Batch) error {
		a.logger.Info("Datasets changed, rebuilding", "files", len(b.Paths), "removed", b.Removed)
		return onChange(ctx)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
