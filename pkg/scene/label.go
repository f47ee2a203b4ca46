package scene

// arithmeticSymbols maps engine node names of arithmetic operators to the
// short symbols shown in the node body.
var arithmeticSymbols = map[string]string{
	"Add":  "+",
	"Sub":  "-",
	"Mul":  "*",
	"Mult": "*",
	"Div":  "/",
	"Pow":  "^",
	"Powf": "^",
	"Neg":  "neg",
}

// DisplayLabel returns the text drawn inside a node body: a symbol for known
// arithmetic nodes, the raw engine name otherwise.
func DisplayLabel(name string) string {
	if sym, ok := arithmeticSymbols[name]; ok {
		return sym
	}
	return name
}
