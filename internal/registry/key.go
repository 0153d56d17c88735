package registry

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Label is one key=value pair of a metric's identity.
type Label struct {
	Key   string
	Value string
}

func (l Label) String() string { return l.Key + "=" + l.Value }

// Key is a metric name plus its label set. Labels are sorted at construction,
// so two keys built from the same pairs in any order are equal. Key is
// comparable and can be used directly as a map key.
type Key struct {
	name string
	// labels is the canonical encoding of the sorted label set.
	labels string
}

const (
	labelSep = "\x1e"
	pairSep  = "\x1f"
)

// NewKey builds a key from a name and labels.
func NewKey(name string, labels ...Label) Key {
	if len(labels) == 0 {
		return Key{name: name}
	}
	sorted := slices.Clone(labels)
	slices.SortFunc(sorted, func(a, b Label) int {
		return cmp.Or(cmp.Compare(a.Key, b.Key), cmp.Compare(a.Value, b.Value))
	})
	var sb strings.Builder
	for i, l := range sorted {
		if i > 0 {
			sb.WriteString(labelSep)
		}
		sb.WriteString(l.Key)
		sb.WriteString(pairSep)
		sb.WriteString(l.Value)
	}
	return Key{name: name, labels: sb.String()}
}

// KeyFromPairs builds a key from alternating label keys and values.
// A trailing key without a value gets an empty value.
func KeyFromPairs(name string, kv ...string) Key {
	labels := make([]Label, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		l := Label{Key: kv[i]}
		if i+1 < len(kv) {
			l.Value = kv[i+1]
		}
		labels = append(labels, l)
	}
	return NewKey(name, labels...)
}

// Name returns the metric name.
func (k Key) Name() string { return k.name }

// Labels returns a copy of the sorted label set.
func (k Key) Labels() []Label {
	if k.labels == "" {
		return nil
	}
	parts := strings.Split(k.labels, labelSep)
	labels := make([]Label, len(parts))
	for i, p := range parts {
		key, value, _ := strings.Cut(p, pairSep)
		labels[i] = Label{Key: key, Value: value}
	}
	return labels
}

// String renders the key as name{k=v,...}.
func (k Key) String() string {
	if k.labels == "" {
		return k.name
	}
	labels := k.Labels()
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l.String()
	}
	return k.name + "{" + strings.Join(parts, ",") + "}"
}

// MetricKey is the full identity of a registered metric.
type MetricKey struct {
	Key  Key
	Kind Kind
}

// NewMetricKey pairs a key with its kind.
func NewMetricKey(key Key, kind Kind) MetricKey {
	return MetricKey{Key: key, Kind: kind}
}

// Name returns the metric name.
func (m MetricKey) Name() string { return m.Key.name }

// Title renders the default plot title. nDuplicates distinguishes several
// plots of the same metric.
func (m MetricKey) Title(nDuplicates int) string {
	title := m.Key.String() + " (" + m.Kind.String() + ")"
	if nDuplicates > 0 {
		title += " " + strconv.Itoa(nDuplicates)
	}
	return title
}

func (m MetricKey) String() string { return m.Kind.String() + ":" + m.Key.String() }

// Compare orders keys by name, then labels, then kind.
func (m MetricKey) Compare(o MetricKey) int {
	return cmp.Or(
		cmp.Compare(m.Key.name, o.Key.name),
		cmp.Compare(m.Key.labels, o.Key.labels),
		cmp.Compare(m.Kind, o.Kind),
	)
}
