package sgf

// GameTree is one SGF tree: a sequence of nodes followed by variations.
// The first child continues the main line.
type GameTree struct {
	Nodes    []Node
	Children []*GameTree
}

// Node holds the properties of one node. Properties repeat, e.g. AB[aa][bb].
type Node struct {
	Properties map[string][]string
}

// SGF is the root of a parsed file. Only the first tree of a collection is kept.
type SGF struct {
	Root *GameTree
}

func (n Node) Get(key string) string {
	if v := n.Properties[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (n Node) Has(key string) bool {
	_, ok := n.Properties[key]
	return ok
}
