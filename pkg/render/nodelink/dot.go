package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/patchview/pkg/inspection"
	"github.com/matzehuels/patchview/pkg/scene"
)

const (
	outputID = "output"
	inputID  = "input"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the engine name and address under each display label.
	Detailed bool
}

// ToDOT converts a snapshot to Graphviz DOT format.
// The snapshot is validated first; the resulting DOT string can be rendered
// with [RenderSVG].
func ToDOT(in inspection.Inspection, opts Options) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=record, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	for _, n := range in.Nodes {
		label := recordLabel(fmtLabel(n, opts.Detailed), n.InputChannels, n.OutputChannels)
		fmt.Fprintf(&buf, "  %s [label=%s];\n", quote(nodeID(n.Address)), quote(label))
	}

	outputs := make([]string, in.NumOutputs)
	for i := range outputs {
		outputs[i] = fmt.Sprintf("out %d", i)
	}
	fmt.Fprintf(&buf, "  %s [label=%s, fillcolor=lightgrey];\n", quote(outputID), quote(recordLabel("Output", outputs, nil)))

	if hasGraphSources(in) {
		inputs := make([]string, in.NumInputs)
		for i := range inputs {
			inputs[i] = fmt.Sprintf("in %d", i)
		}
		fmt.Fprintf(&buf, "  %s [label=%s, fillcolor=lightgrey];\n", quote(inputID), quote(recordLabel("Input", nil, inputs)))
	}

	buf.WriteString("\n")
	for _, n := range in.Nodes {
		for _, e := range n.InputEdges {
			writeEdge(&buf, in, e, nodeID(n.Address))
		}
	}
	for _, e := range in.OutputEdges {
		writeEdge(&buf, in, e, outputID)
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func nodeID(id inspection.NodeID) string {
	return "n" + strconv.FormatUint(uint64(id), 10)
}

func writeEdge(buf *bytes.Buffer, in inspection.Inspection, e inspection.Edge, to string) {
	from := inputID
	if e.Source.Kind == inspection.SourceNode {
		from = nodeID(in.Nodes[e.Source.Index].Address)
	}
	fmt.Fprintf(buf, "  %s:o%d -> %s:i%d;\n", quote(from), e.FromIndex, quote(to), e.ToIndex)
}

func hasGraphSources(in inspection.Inspection) bool {
	for _, n := range in.Nodes {
		for _, e := range n.InputEdges {
			if e.Source.Kind == inspection.SourceGraph {
				return true
			}
		}
	}
	for _, e := range in.OutputEdges {
		if e.Source.Kind == inspection.SourceGraph {
			return true
		}
	}
	return false
}

func fmtLabel(n inspection.Node, detailed bool) string {
	label := scene.DisplayLabel(n.Name)
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\n%s #%d", label, n.Name, n.Address)
}

// recordLabel builds a left-to-right record: input ports, title, output ports.
// Under rankdir=LR the outer braces make the top level horizontal.
func recordLabel(title string, inputs, outputs []string) string {
	fields := make([]string, 0, 3)
	if len(inputs) > 0 {
		fields = append(fields, portGroup("i", inputs))
	}
	fields = append(fields, escapeRecord(title))
	if len(outputs) > 0 {
		fields = append(fields, portGroup("o", outputs))
	}
	return "{" + strings.Join(fields, "|") + "}"
}

func portGroup(prefix string, labels []string) string {
	ports := make([]string, len(labels))
	for i, l := range labels {
		ports[i] = fmt.Sprintf("<%s%d> %s", prefix, i, escapeRecord(l))
	}
	return "{" + strings.Join(ports, "|") + "}"
}

var recordEscaper = strings.NewReplacer(
	`\`, `\\`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
	"\n", `\n`,
)

func escapeRecord(s string) string {
	return recordEscaper.Replace(s)
}

// quote wraps s as a DOT string. Backslashes are left alone so record
// escapes reach Graphviz intact.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
