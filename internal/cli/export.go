package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/patchview/pkg/config"
	"github.com/matzehuels/patchview/pkg/errors"
	"github.com/matzehuels/patchview/pkg/inspection"
	"github.com/matzehuels/patchview/pkg/render/nodelink"
)

// Export formats.
const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatJSON = "json"
)

var exportFormats = map[string]bool{
	formatDOT:  true,
	formatSVG:  true,
	formatJSON: true,
}

// exportCommand creates the export command that writes one snapshot to a file.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		sources  sourceFlags
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one snapshot as DOT, SVG or JSON",
		Long: `Write one snapshot as DOT, SVG or JSON.

Takes a single snapshot from the configured source and writes it as a
Graphviz graph, a rendered SVG or the raw JSON snapshot. Without --output
the result goes to stdout.

Examples:
  patchview export -f svg -o graph.svg
  patchview export --url http://localhost:7070 -f json > snapshot.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(format, exportFormats); err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := sources.apply(&cfg); err != nil {
				return err
			}
			return c.runExport(cmd.Context(), cfg, format, output, detailed)
		},
	}

	sources.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: svg, dot or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include node addresses in labels")
	return cmd
}

func (c *CLI) runExport(ctx context.Context, cfg config.Config, format, output string, detailed bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := newProgress(c.Logger)
	src, err := openSource(ctx, cfg.Source, c.Logger)
	if err != nil {
		return err
	}

	var spinner *Spinner
	if output != "" {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Fetching %s snapshot...", cfg.Source.Kind))
		spinner.Start()
	}
	in, err := fetchSnapshot(ctx, src, cfg.Source.Timeout.Duration)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Fetching snapshot failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}

	if output == "" {
		if err := writeSnapshot(os.Stdout, in, format, detailed); err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Exported %d nodes", len(in.Nodes)))
		return nil
	}

	f, err := os.Create(output)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", output)
	}
	if err := writeSnapshot(f, in, format, detailed); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "close %s", output)
	}

	printSuccess("Exported snapshot")
	fmt.Println(formatStats(len(in.Nodes), in.EdgeCount(), in.NumOutputs))
	printFile(output)
	return nil
}

// writeSnapshot encodes in to w in format.
func writeSnapshot(w io.Writer, in inspection.Inspection, format string, detailed bool) error {
	if format == formatJSON {
		return inspection.Write(in, w)
	}

	dot, err := nodelink.ToDOT(in, nodelink.Options{Detailed: detailed})
	if err != nil {
		return err
	}
	data := []byte(dot)
	if format == formatSVG {
		if data, err = nodelink.RenderSVG(dot); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
	}
	_, err = w.Write(data)
	return err
}
