package events

import (
	"git.home.luguber.info/inful/metricscope/internal/registry"
)

// PlotRequested asks every dashboard listening on the bus to add a plot of
// Key. It is emitted by the namespace tree and the search bar when the user
// selects a metric.
type PlotRequested struct {
	Key  registry.MetricKey
	Unit registry.Unit
	// Source names the widget that emitted the request.
	Source string
}
