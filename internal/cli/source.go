package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/patchview/pkg/config"
	"github.com/matzehuels/patchview/pkg/demo"
	"github.com/matzehuels/patchview/pkg/errors"
	"github.com/matzehuels/patchview/pkg/inspection"
	"github.com/matzehuels/patchview/pkg/inspection/remote"
)

// sourceFlags overrides the [source] section from the command line.
type sourceFlags struct {
	kind string
	path string
	url  string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "source", "", "snapshot source: demo, file or remote")
	cmd.Flags().StringVar(&f.path, "file", "", "read snapshots from a JSON file (implies --source file)")
	cmd.Flags().StringVar(&f.url, "url", "", "poll a patchview server (implies --source remote)")
}

// apply writes the flags over cfg and revalidates it.
func (f *sourceFlags) apply(cfg *config.Config) error {
	if f.path != "" {
		cfg.Source.Kind = config.SourceFile
		cfg.Source.Path = f.path
	}
	if f.url != "" {
		cfg.Source.Kind = config.SourceRemote
		cfg.Source.URL = f.url
	}
	if f.kind != "" {
		cfg.Source.Kind = f.kind
	}
	return cfg.Validate()
}

// openSource builds the source cfg names. A demo engine runs in the
// background until ctx is done.
func openSource(ctx context.Context, cfg config.SourceConfig, logger *log.Logger) (inspection.Source, error) {
	switch cfg.Kind {
	case config.SourceDemo:
		eng := demo.New(demo.Options{Latency: cfg.Latency.Duration, Logger: logger})
		eng.Step(time.Now())
		go func() { _ = eng.Run(ctx) }()
		return eng, nil
	case config.SourceFile:
		return inspection.NewFileSource(cfg.Path, logger), nil
	case config.SourceRemote:
		client, err := remote.NewClient(cfg.URL, &http.Client{Timeout: cfg.Timeout.Duration}, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown source kind %q", cfg.Kind)
	}
}

// fetchSnapshot waits for a single answer from src. A non-positive timeout
// means remote.DefaultTimeout.
func fetchSnapshot(ctx context.Context, src inspection.Source, timeout time.Duration) (inspection.Inspection, error) {
	if timeout <= 0 {
		timeout = remote.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case in, ok := <-src.RequestInspection(ctx):
		if !ok {
			return inspection.Inspection{}, errors.New(errors.ErrCodeNotFound, "source closed without a snapshot")
		}
		return in, nil
	case <-ctx.Done():
		return inspection.Inspection{}, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "waiting for snapshot")
	}
}
