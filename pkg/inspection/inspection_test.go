package inspection

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/patchview/pkg/errors"
)

func sample() Inspection {
	return Inspection{
		GraphID:    7,
		NumOutputs: 1,
		Nodes: []Node{
			{Address: 1, Name: "Oscillator", InputChannels: []string{"freq"}, OutputChannels: []string{"sig"}},
			{
				Address:        2,
				Name:           "Mul",
				InputChannels:  []string{"a", "b"},
				OutputChannels: []string{"out"},
				InputEdges:     []Edge{{Source: NodeSource(0), FromIndex: 0, ToIndex: 0}},
			},
		},
		OutputEdges: []Edge{{Source: NodeSource(1), FromIndex: 0, ToIndex: 0}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *Inspection)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Inspection) {}},
		{name: "empty", mutate: func(in *Inspection) { *in = Empty() }},
		{
			name:    "duplicate address",
			mutate:  func(in *Inspection) { in.Nodes[1].Address = 1 },
			wantErr: true,
		},
		{
			name:    "node index out of range",
			mutate:  func(in *Inspection) { in.OutputEdges[0].Source = NodeSource(5) },
			wantErr: true,
		},
		{
			name:    "negative node index",
			mutate:  func(in *Inspection) { in.Nodes[1].InputEdges[0].Source = NodeSource(-1) },
			wantErr: true,
		},
		{
			name:    "negative channel",
			mutate:  func(in *Inspection) { in.Nodes[1].InputEdges[0].ToIndex = -1 },
			wantErr: true,
		},
		{
			name:    "negative output count",
			mutate:  func(in *Inspection) { in.NumOutputs = -1 },
			wantErr: true,
		},
		{
			name:   "graph source is structurally valid",
			mutate: func(in *Inspection) { in.Nodes[0].InputEdges = []Edge{{Source: GraphSource()}} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sample()
			tt.mutate(&in)
			err := in.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidSnapshot)
			}
		})
	}
}

func TestEdgeSourceJSON(t *testing.T) {
	tests := []struct {
		name string
		src  EdgeSource
		want string
	}{
		{"node", NodeSource(3), `{"kind":"node","index":3}`},
		{"node zero", NodeSource(0), `{"kind":"node","index":0}`},
		{"graph", GraphSource(), `{"kind":"graph"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.src)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal = %s, want %s", data, tt.want)
			}
			var got EdgeSource
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got != tt.src {
				t.Errorf("Unmarshal = %+v, want %+v", got, tt.src)
			}
		})
	}
}

func TestEdgeSourceJSONInvalid(t *testing.T) {
	for _, raw := range []string{`{"kind":"node"}`, `{"kind":"bus"}`, `[]`} {
		var s EdgeSource
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			t.Errorf("Unmarshal(%s) should fail", raw)
		}
	}
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	want := sample()

	if err := WriteFile(want, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if got.GraphID != want.GraphID || len(got.Nodes) != len(want.Nodes) || got.EdgeCount() != want.EdgeCount() {
		t.Errorf("ReadFile = %+v, want %+v", got, want)
	}
	if got.Nodes[1].InputEdges[0].Source != NodeSource(0) {
		t.Errorf("edge source = %v, want node[0]", got.Nodes[1].InputEdges[0].Source)
	}
}

func TestReadRejectsInconsistent(t *testing.T) {
	raw := `{"nodes":[{"address":1},{"address":1}],"num_outputs":0}`
	if _, err := Read(strings.NewReader(raw)); !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
		t.Errorf("Read() error = %v, want %s", err, errors.ErrCodeInvalidSnapshot)
	}
}

func TestReadNilNodes(t *testing.T) {
	in, err := Read(strings.NewReader(`{"graph_id":3}`))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if in.Nodes == nil {
		t.Error("Read should normalise a missing node list to an empty slice")
	}
}

func TestNodeIndex(t *testing.T) {
	in := sample()
	if i, ok := in.NodeIndex(2); !ok || i != 1 {
		t.Errorf("NodeIndex(2) = %d, %v; want 1, true", i, ok)
	}
	if _, ok := in.NodeIndex(42); ok {
		t.Error("NodeIndex(42) should not be found")
	}
}

func TestDeliverAndClosed(t *testing.T) {
	ch := Deliver(sample())
	in, ok := <-ch
	if !ok || in.GraphID != 7 {
		t.Fatalf("Deliver: got %v, %v", in.GraphID, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("Deliver channel should be closed after one value")
	}

	if _, ok := <-Closed(); ok {
		t.Error("Closed channel should yield no value")
	}
}

func TestStatic(t *testing.T) {
	src := NewStatic(sample())
	first := <-src.RequestInspection(context.Background())
	if first.GraphID != 7 {
		t.Errorf("GraphID = %d, want 7", first.GraphID)
	}

	src.Set(Empty())
	second := <-src.RequestInspection(context.Background())
	if !second.IsEmpty() {
		t.Errorf("expected empty snapshot after Set, got %+v", second)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.json")

	var logs bytes.Buffer
	src := NewFileSource(path, log.New(&logs))

	if _, ok := <-src.RequestInspection(context.Background()); ok {
		t.Error("missing file should close the channel without a value")
	}
	if !strings.Contains(logs.String(), "inspection file unreadable") {
		t.Errorf("expected warning in log, got %q", logs.String())
	}

	if err := os.WriteFile(path, []byte(`{"graph_id":9,"nodes":[],"num_outputs":2}`), 0644); err != nil {
		t.Fatal(err)
	}
	in, ok := <-src.RequestInspection(context.Background())
	if !ok || in.GraphID != 9 || in.NumOutputs != 2 {
		t.Errorf("FileSource = %+v, %v", in, ok)
	}
}
