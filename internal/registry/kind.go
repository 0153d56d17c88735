package registry

import (
	"strings"

	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
)

// Kind is the type of a metric.
type Kind uint8

const (
	KindCounter Kind = iota
	KindGauge
	KindHistogram
)

// Kinds lists every metric kind in display order.
var Kinds = [...]Kind{KindCounter, KindGauge, KindHistogram}

func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	case KindHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// ParseKind parses the lower-case kind names produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, ferrors.ValidationError("unknown metric kind").WithContext("kind", s).Build()
}

// Unit is the optional unit of a metric description. UnitNone means the
// description carries no unit.
type Unit uint8

const (
	UnitNone Unit = iota
	UnitCount
	UnitPercent
	UnitSeconds
	UnitMilliseconds
	UnitMicroseconds
	UnitNanoseconds
	UnitTebibytes
	UnitGibibytes
	UnitMebibytes
	UnitKibibytes
	UnitBytes
	UnitTerabitsPerSecond
	UnitGigabitsPerSecond
	UnitMegabitsPerSecond
	UnitKilobitsPerSecond
	UnitBitsPerSecond
	UnitCountPerSecond
)

var unitNames = [...]struct{ name, label string }{
	UnitNone:              {"", ""},
	UnitCount:             {"count", ""},
	UnitPercent:           {"percent", "%"},
	UnitSeconds:           {"seconds", "s"},
	UnitMilliseconds:      {"milliseconds", "ms"},
	UnitMicroseconds:      {"microseconds", "μs"},
	UnitNanoseconds:       {"nanoseconds", "ns"},
	UnitTebibytes:         {"tebibytes", "TiB"},
	UnitGibibytes:         {"gibibytes", "GiB"},
	UnitMebibytes:         {"mebibytes", "MiB"},
	UnitKibibytes:         {"kibibytes", "KiB"},
	UnitBytes:             {"bytes", "B"},
	UnitTerabitsPerSecond: {"terabits_per_second", "Tbps"},
	UnitGigabitsPerSecond: {"gigabits_per_second", "Gbps"},
	UnitMegabitsPerSecond: {"megabits_per_second", "Mbps"},
	UnitKilobitsPerSecond: {"kilobits_per_second", "kbps"},
	UnitBitsPerSecond:     {"bits_per_second", "bps"},
	UnitCountPerSecond:    {"count_per_second", "/s"},
}

// String returns the long unit name, e.g. "milliseconds".
func (u Unit) String() string {
	if int(u) >= len(unitNames) {
		return "unknown"
	}
	return unitNames[u].name
}

// Label returns the short axis label, e.g. "ms". Count has an empty label.
func (u Unit) Label() string {
	if int(u) >= len(unitNames) {
		return ""
	}
	return unitNames[u].label
}

// ParseUnit parses a long unit name. The empty string parses to UnitNone.
func ParseUnit(s string) (Unit, error) {
	for u, n := range unitNames {
		if n.name == s {
			return Unit(u), nil
		}
	}
	return UnitNone, ferrors.ValidationError("unknown unit").WithContext("unit", s).Build()
}
