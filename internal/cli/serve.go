package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/patchview/pkg/config"
	"github.com/matzehuels/patchview/pkg/errors"
	"github.com/matzehuels/patchview/pkg/inspection/remote"
)

// shutdownTimeout bounds how long serve waits for open requests on exit.
const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command that publishes snapshots over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		sources sourceFlags
		addr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve snapshots over HTTP",
		Long: `Serve snapshots over HTTP.

Publishes the configured source (the demo engine by default) at
GET /inspection so that 'view --url' can poll it from another process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			if err := sources.apply(&cfg); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	sources.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :7070)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src, err := openSource(ctx, cfg.Source, c.Logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Serve.Addr,
		Handler: remote.Handler(src, remote.HandlerOptions{
			Timeout: cfg.Source.Timeout.Duration,
			Logger:  c.Logger,
		}),
		ReadHeaderTimeout: shutdownTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	printInfo("Serving %s snapshots", StyleHighlight.Render(cfg.Source.Kind))
	printKeyValue("address", cfg.Serve.Addr)
	printKeyValue("endpoint", remote.InspectionPath)
	printNextStep("Connect a viewer", "patchview view --url "+viewerURL(cfg.Serve.Addr))

	select {
	case err := <-errCh:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", cfg.Serve.Addr)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "shutdown")
	}
	c.Logger.Info("server stopped")
	return nil
}

// viewerURL turns a listen address into a URL a local viewer can poll.
func viewerURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
