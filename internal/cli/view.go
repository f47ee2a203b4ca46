package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/patchview/pkg/config"
	"github.com/matzehuels/patchview/pkg/poll"
	"github.com/matzehuels/patchview/pkg/render/window"
	"github.com/matzehuels/patchview/pkg/scene"
	"github.com/matzehuels/patchview/pkg/visualiser"
)

// layoutFlags overrides the [layout] section from the command line.
type layoutFlags struct {
	columns  string
	prune    bool
	noForces bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.columns, "columns", "", "column pass: always, on-change or off")
	cmd.Flags().BoolVar(&f.prune, "prune", false, "remove nodes the engine has freed")
	cmd.Flags().BoolVar(&f.noForces, "no-forces", false, "disable the spring simulation")
}

func (f *layoutFlags) apply(cfg *config.Config) {
	if f.columns != "" {
		cfg.Layout.Columns = f.columns
	}
	if f.prune {
		cfg.Layout.Prune = true
	}
	if f.noForces {
		cfg.Layout.Forces = false
	}
}

// viewCommand creates the view command that opens the interactive window.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		sources sourceFlags
		layouts layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open a window showing the live graph",
		Long: `Open a window showing the live graph.

The window polls the configured source, adds nodes and edges as they appear
and lays them out in columns by distance from the graph output. Move the
cursor near a window edge to pan.

Examples:
  patchview view
  patchview view --url http://localhost:7070
  patchview view --file snapshot.json --columns always`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			layouts.apply(&cfg)
			if err := sources.apply(&cfg); err != nil {
				return err
			}
			return c.runView(cmd.Context(), cfg)
		},
	}

	sources.register(cmd)
	layouts.register(cmd)
	return cmd
}

// newVisualiser assembles the frame pipeline for cfg.
func newVisualiser(ctx context.Context, cfg config.Config, logger *log.Logger) (*visualiser.Visualiser, error) {
	src, err := openSource(ctx, cfg.Source, logger)
	if err != nil {
		return nil, err
	}
	p := poll.New(src, cfg.PollOptions(logger))
	s := scene.New(cfg.SceneOptions(logger))
	return visualiser.New(p, s, cfg.VisualiserOptions(logger)), nil
}

func (c *CLI) runView(ctx context.Context, cfg config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vis, err := newVisualiser(ctx, cfg, c.Logger)
	if err != nil {
		return err
	}

	c.Logger.Info("opening window", "source", cfg.Source.Kind, "columns", cfg.Layout.Columns)
	g := window.New(ctx, vis, window.Options{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Logger: c.Logger,
	})
	return window.Run(g)
}
