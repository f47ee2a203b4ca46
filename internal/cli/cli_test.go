package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/patchview/pkg/config"
	"github.com/matzehuels/patchview/pkg/errors"
	"github.com/matzehuels/patchview/pkg/inspection"
	"github.com/matzehuels/patchview/pkg/poll"
	"github.com/matzehuels/patchview/pkg/scene"
	"github.com/matzehuels/patchview/pkg/visualiser"
)

func quiet() *log.Logger { return log.New(io.Discard) }

// voice is two oscillators feeding a multiplier that feeds output 0.
func voice() inspection.Inspection {
	osc := func(id inspection.NodeID) inspection.Node {
		return inspection.Node{Address: id, Name: "Sine", InputChannels: []string{"freq"}, OutputChannels: []string{"out"}}
	}
	mul := inspection.Node{
		Address:        2,
		Name:           "Mul",
		InputChannels:  []string{"a", "b"},
		OutputChannels: []string{"out"},
		InputEdges: []inspection.Edge{
			{Source: inspection.NodeSource(0), ToIndex: 0},
			{Source: inspection.NodeSource(2), ToIndex: 1},
		},
	}
	return inspection.Inspection{
		GraphID:     1,
		NumOutputs:  2,
		Nodes:       []inspection.Node{osc(1), mul, osc(3)},
		OutputEdges: []inspection.Edge{{Source: inspection.NodeSource(1), ToIndex: 0}},
	}
}

func TestSourceFlagsApply(t *testing.T) {
	tests := []struct {
		name     string
		flags    sourceFlags
		wantKind string
		wantErr  bool
	}{
		{name: "none", wantKind: config.SourceDemo},
		{name: "file", flags: sourceFlags{path: "snap.json"}, wantKind: config.SourceFile},
		{name: "url", flags: sourceFlags{url: "http://localhost:7070"}, wantKind: config.SourceRemote},
		{name: "explicit kind wins", flags: sourceFlags{kind: "demo", path: "snap.json"}, wantKind: config.SourceDemo},
		{name: "bad url", flags: sourceFlags{url: "ftp://x"}, wantErr: true},
		{name: "unknown kind", flags: sourceFlags{kind: "midi"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			err := tt.flags.apply(&cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("apply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.Source.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", cfg.Source.Kind, tt.wantKind)
			}
		})
	}
}

func TestLayoutFlagsApply(t *testing.T) {
	cfg := config.Default()
	f := layoutFlags{columns: "always", prune: true, noForces: true}
	f.apply(&cfg)

	if cfg.Layout.Columns != "always" || !cfg.Layout.Prune || cfg.Layout.Forces {
		t.Errorf("layout = %+v", cfg.Layout)
	}
}

func TestOpenSourceDemo(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := openSource(ctx, config.SourceConfig{Kind: config.SourceDemo}, quiet())
	if err != nil {
		t.Fatalf("openSource: %v", err)
	}
	in, err := fetchSnapshot(ctx, src, time.Second)
	if err != nil {
		t.Fatalf("fetchSnapshot: %v", err)
	}
	if len(in.Nodes) == 0 {
		t.Error("demo snapshot has no nodes")
	}
	if err := in.Validate(); err != nil {
		t.Errorf("demo snapshot invalid: %v", err)
	}
}

func TestOpenSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	if err := inspection.WriteFile(voice(), path); err != nil {
		t.Fatal(err)
	}

	src, err := openSource(context.Background(), config.SourceConfig{Kind: config.SourceFile, Path: path}, quiet())
	if err != nil {
		t.Fatalf("openSource: %v", err)
	}
	in, err := fetchSnapshot(context.Background(), src, time.Second)
	if err != nil {
		t.Fatalf("fetchSnapshot: %v", err)
	}
	if len(in.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(in.Nodes))
	}
}

func TestOpenSourceUnknown(t *testing.T) {
	_, err := openSource(context.Background(), config.SourceConfig{Kind: "midi"}, quiet())
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want InvalidConfig", err)
	}
}

func TestFetchSnapshotFailures(t *testing.T) {
	never := inspection.SourceFunc(func(context.Context) <-chan inspection.Inspection {
		return make(chan inspection.Inspection)
	})
	closed := inspection.SourceFunc(func(context.Context) <-chan inspection.Inspection {
		return inspection.Closed()
	})

	if _, err := fetchSnapshot(context.Background(), never, 20*time.Millisecond); !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("unanswered: err = %v, want Timeout", err)
	}
	if _, err := fetchSnapshot(context.Background(), closed, time.Second); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("closed: err = %v, want NotFound", err)
	}
}

func TestWriteSnapshot(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{format: formatJSON, want: []string{`"graph_id"`, `"Mul"`}},
		{format: formatDOT, want: []string{"digraph", `"n1":o0 -> "n2":i0;`, `"n2":o0 -> "output":i0;`}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeSnapshot(&buf, voice(), tt.format, false); err != nil {
				t.Fatalf("writeSnapshot: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[layout]\ncolumns = \"always\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	c.configPath = path
	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Layout.Columns != "always" {
		t.Errorf("columns = %q, want always", cfg.Layout.Columns)
	}

	c.configPath = filepath.Join(t.TempDir(), "missing.toml")
	if _, err := c.loadConfig(); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing explicit file: err = %v, want FileNotFound", err)
	}
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := New(io.Discard, LogInfo).loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg != config.Default() {
		t.Errorf("loadConfig() without a file = %+v, want defaults", cfg)
	}
}

func TestConfigCommandPrintsDefaults(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "--defaults"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	decoded, err := config.Decode(&out)
	if err != nil {
		t.Fatalf("printed config does not decode: %v", err)
	}
	if decoded != config.Default() {
		t.Errorf("decoded = %+v, want defaults", decoded)
	}
}

func TestExportRejectsFormat(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"export", "--format", "png"})

	if err := root.Execute(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want InvalidFormat", err)
	}
}

func TestViewerURL(t *testing.T) {
	tests := map[string]string{
		":7070":          "http://localhost:7070",
		"127.0.0.1:8080": "http://127.0.0.1:8080",
	}
	for addr, want := range tests {
		if got := viewerURL(addr); got != want {
			t.Errorf("viewerURL(%q) = %q, want %q", addr, got, want)
		}
	}
}

func newTestVisualiser(src inspection.Source) *visualiser.Visualiser {
	p := poll.New(src, poll.Options{Logger: quiet()})
	s := scene.New(scene.Options{Logger: quiet()})
	return visualiser.New(p, s, visualiser.Options{Logger: quiet()})
}

func TestWatchModelFrame(t *testing.T) {
	m := newWatchModel(context.Background(), newTestVisualiser(inspection.NewStatic(voice())), 0)
	if m.interval != defaultWatchInterval {
		t.Errorf("interval = %v, want default", m.interval)
	}

	next, cmd := m.Update(frameMsg(time.Now()))
	m = next.(watchModel)
	if cmd == nil {
		t.Fatal("frame did not schedule the next tick")
	}
	if m.last.Frame != 1 || !m.last.ColumnsRan {
		t.Errorf("stats = %+v, want first frame with columns", m.last)
	}

	view := m.View()
	for _, want := range []string{"3 nodes", "3 edges", "2 outputs", "Sine, Sine", "*"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestWatchModelStopsOnRejectedSnapshot(t *testing.T) {
	bad := voice()
	bad.Nodes[1].InputEdges[0].Source = inspection.GraphSource()

	m := newWatchModel(context.Background(), newTestVisualiser(inspection.NewStatic(bad)), time.Millisecond)
	next, cmd := m.Update(frameMsg(time.Now()))
	m = next.(watchModel)

	if !errors.Is(m.err, errors.ErrCodeUnimplemented) {
		t.Errorf("err = %v, want Unimplemented", m.err)
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("rejected snapshot should quit")
	}
}

func TestWatchModelQuitKey(t *testing.T) {
	m := newWatchModel(context.Background(), newTestVisualiser(inspection.NewStatic(voice())), 0)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestColumnRowsWaiting(t *testing.T) {
	m := newWatchModel(context.Background(), newTestVisualiser(inspection.NewStatic(inspection.Empty())), 0)
	if !strings.Contains(m.View(), "waiting for a snapshot") {
		t.Errorf("empty view = %q", m.View())
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := New(io.Discard, LogInfo).RootCommand()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})

			if err := root.Execute(); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if !strings.Contains(out.String(), "patchview") {
				t.Errorf("%s completion does not mention the command", shell)
			}
		})
	}

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("unknown shell accepted")
	}
}
