package node

// Event is an interaction on a node, such as a click.
type Event struct {
	Type   string
	Target *Node
}

// Origin returns the node the event happened on.
func (e Event) Origin() *Node {
	return e.Target
}

// Contains is the containment test in function form, for wiring into a
// reconciler config.
func Contains(ancestor, candidate *Node) bool {
	if ancestor == nil || candidate == nil {
		return false
	}
	return ancestor.Contains(candidate)
}

// DeepClone is the deep Clone in function form.
func DeepClone(n *Node) *Node {
	return n.Clone(true)
}
