package markup

import "iter"

// Walk yields root and all of its descendants, depth first in document
// order.
func Walk(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walk(root, yield)
	}
}

func walk(n Node, yield func(Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range Children(n) {
		if !walk(c, yield) {
			return false
		}
	}
	return true
}

// NodesOf returns every node of type T below and including root.
func NodesOf[T Node](root Node) []T {
	var out []T
	for n := range Walk(root) {
		if v, ok := n.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// TextNodes returns all text nodes below root.
func TextNodes(root Node) []*Text { return NodesOf[*Text](root) }

// replaceNode swaps old for replacement wherever old sits in the tree and
// reports how many places it filled. A node can sit in more than one
// place, e.g. inside a footnote and in the collected footnote list.
func replaceNode(root, old, replacement Node) int {
	n := 0
	children := Children(root)
	for i, c := range children {
		if c == old {
			children[i] = replacement
			n++
			continue
		}
		n += replaceNode(c, old, replacement)
	}
	return n
}
