// Package namespace groups flat metric names into a tree by splitting them on
// a path delimiter.
//
// For example "foo::bar::baz" is found by expanding "foo", then "bar". Chains
// of namespaces with a single child are collapsed into one node, so the tree
// never shows a level that offers no choice.
package namespace

import (
	"cmp"
	"slices"
	"strings"

	"git.home.luguber.info/inful/metricscope/internal/registry"
)

// DefaultDelimiter separates namespace segments in metric names.
const DefaultDelimiter = "::"

// NodeKind distinguishes namespace nodes from metric leaves.
type NodeKind uint8

const (
	NodeNamespace NodeKind = iota
	NodeMetric
)

func (k NodeKind) String() string {
	if k == NodeMetric {
		return "metric"
	}
	return "namespace"
}

// Node is one element of a namespace tree. Namespace nodes have children;
// metric nodes carry the registry entry they display.
type Node struct {
	Kind NodeKind
	// Display is the path segment shown for the node. Collapsed chains
	// display several segments joined by the delimiter.
	Display  string
	Children []Node
	Entry    registry.Entry
}

// IsNamespace reports whether n groups other nodes.
func (n Node) IsNamespace() bool { return n.Kind == NodeNamespace }

// Count returns the number of metric leaves under nodes.
func Count(nodes []Node) int {
	total := 0
	for _, n := range nodes {
		if n.IsNamespace() {
			total += Count(n.Children)
		} else {
			total++
		}
	}
	return total
}

// ValidPath reports whether name can be placed in a tree. A name is
// malformed when it is empty or when any of its segments is empty or starts
// or ends with a delimiter character ("a::", "::a", "a:::b", ":a").
func ValidPath(name, delim string) bool {
	if name == "" {
		return false
	}
	for seg := range strings.SplitSeq(name, delim) {
		if seg == "" || strings.Trim(seg, delim) != seg {
			return false
		}
	}
	return true
}

type item struct {
	entry    registry.Entry
	segments []string
}

// Build arranges entries into a tree. Entries are ordered by name; the input
// slice is not modified. Malformed names are dropped (see ValidPath). An empty
// delimiter selects DefaultDelimiter.
func Build(entries []registry.Entry, delim string) []Node {
	if delim == "" {
		delim = DefaultDelimiter
	}
	items := make([]item, 0, len(entries))
	for _, e := range entries {
		if !ValidPath(e.Name(), delim) {
			continue
		}
		items = append(items, item{entry: e, segments: strings.Split(e.Name(), delim)})
	}
	slices.SortStableFunc(items, func(a, b item) int {
		return cmp.Or(
			strings.Compare(a.entry.Name(), b.entry.Name()),
			a.entry.Key.Compare(b.entry.Key),
		)
	})
	return buildLevel(items, 0, delim)
}

// buildLevel builds the nodes for items that share their first depth
// segments. Items sorted by name keep every group contiguous.
func buildLevel(items []item, depth int, delim string) []Node {
	var nodes []Node
	for len(items) > 0 {
		first := items[0]
		if len(first.segments) == depth+1 {
			nodes = append(nodes, Node{
				Kind:    NodeMetric,
				Display: first.segments[depth],
				Entry:   first.entry,
			})
			items = items[1:]
			continue
		}

		group := first.segments[depth]
		end := 1
		for end < len(items) && len(items[end].segments) > depth+1 && items[end].segments[depth] == group {
			end++
		}
		children := buildLevel(items[:end], depth+1, delim)
		if node, ok := parentNode(group, children, delim); ok {
			nodes = append(nodes, node)
		}
		items = items[end:]
	}
	return nodes
}

// parentNode wraps children in a namespace named group. A single child is
// merged into its parent; no children means no node.
func parentNode(group string, children []Node, delim string) (Node, bool) {
	switch len(children) {
	case 0:
		return Node{}, false
	case 1:
		child := children[0]
		child.Display = group + delim + child.Display
		return child, true
	default:
		return Node{Kind: NodeNamespace, Display: group, Children: children}, true
	}
}

// Find follows display segments from roots and returns the node at the end of
// the path.
func Find(roots []Node, path ...string) (Node, bool) {
	if len(path) == 0 {
		return Node{}, false
	}
	nodes := roots
	for i, seg := range path {
		idx := slices.IndexFunc(nodes, func(n Node) bool { return n.Display == seg })
		if idx < 0 {
			return Node{}, false
		}
		if i == len(path)-1 {
			return nodes[idx], true
		}
		nodes = nodes[idx].Children
	}
	return Node{}, false
}

// Lookup returns the metric node displaying key.
func Lookup(roots []Node, key registry.MetricKey) (Node, bool) {
	for _, n := range roots {
		if n.IsNamespace() {
			if found, ok := Lookup(n.Children, key); ok {
				return found, true
			}
			continue
		}
		if n.Entry.Key == key {
			return n, true
		}
	}
	return Node{}, false
}
