package inspection_test

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/patchview/pkg/inspection"
)

func ExampleWrite() {
	in := inspection.Inspection{
		GraphID: 1,
		Nodes: []inspection.Node{
			{Address: 1, Name: "Mul", InputChannels: []string{"a", "b"}, OutputChannels: []string{"out"}},
		},
		NumOutputs:  1,
		OutputEdges: []inspection.Edge{{Source: inspection.NodeSource(0)}},
	}

	var buf bytes.Buffer
	if err := inspection.Write(in, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "graph_id": 1,
	//   "nodes": [
	//     {
	//       "address": 1,
	//       "name": "Mul",
	//       "input_channels": [
	//         "a",
	//         "b"
	//       ],
	//       "output_channels": [
	//         "out"
	//       ]
	//     }
	//   ],
	//   "num_outputs": 1,
	//   "output_edges": [
	//     {
	//       "source": {
	//         "kind": "node",
	//         "index": 0
	//       },
	//       "from_index": 0,
	//       "to_index": 0
	//     }
	//   ]
	// }
}

func ExampleRead() {
	raw := `{
		"graph_id": 4,
		"num_outputs": 2,
		"nodes": [
			{"address": 10, "name": "Oscillator", "input_channels": ["freq"], "output_channels": ["sig"]}
		],
		"output_edges": [
			{"source": {"kind": "node", "index": 0}, "from_index": 0, "to_index": 0},
			{"source": {"kind": "node", "index": 0}, "from_index": 0, "to_index": 1}
		]
	}`

	in, err := inspection.Read(bytes.NewReader([]byte(raw)))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Nodes:", len(in.Nodes))
	fmt.Println("Edges:", in.EdgeCount())
	fmt.Println("First source:", in.OutputEdges[0].Source)
	// Output:
	// Nodes: 1
	// Edges: 2
	// First source: node[0]
}
