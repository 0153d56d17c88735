package namespace

import (
	"bufio"
	"io"
	"strings"

	"git.home.luguber.info/inful/metricscope/internal/registry"
)

// Fprint writes nodes as an indented outline, two spaces per level.
// Namespaces end with "/"; metrics show their kind,
// labels, unit and description.
func Fprint(w io.Writer, nodes []Node) error {
	bw := bufio.NewWriter(w)
	printLevel(bw, nodes, 0)
	return bw.Flush()
}

func printLevel(w *bufio.Writer, nodes []Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		w.WriteString(indent)
		if n.IsNamespace() {
			w.WriteString(n.Display)
			w.WriteString("/\n")
			printLevel(w, n.Children, depth+1)
			continue
		}
		w.WriteString(MetricText(n.Display, n.Entry))
		w.WriteByte('\n')
	}
}

// MetricText renders one metric line: display name, kind, labels, and the
// description when one is registered.
func MetricText(display string, e registry.Entry) string {
	var b strings.Builder
	b.WriteString(display)
	b.WriteString(" (")
	b.WriteString(e.Key.Kind.String())
	b.WriteByte(')')
	for _, l := range e.Key.Key.Labels() {
		b.WriteByte(' ')
		b.WriteString(l.String())
	}
	if d := e.Description; d != nil {
		if label := d.Unit.Label(); label != "" {
			b.WriteString(" [")
			b.WriteString(label)
			b.WriteByte(']')
		}
		if d.Text != "" {
			b.WriteString(": ")
			b.WriteString(d.Text)
		}
	}
	return b.String()
}
