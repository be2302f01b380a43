package export

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nvandessel/recsim/internal/experiment"
)

const namespace = "recsim"

// WritePromTextfile writes the averaged metrics as gauges in the Prometheus
// text format, labelled with the scenario name, for the node exporter's
// textfile collector.
func WritePromTextfile(path, scenario string, average experiment.Metrics) error {
	reg := prometheus.NewRegistry()
	for _, f := range experiment.Fields {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        f.Name,
			Help:        f.Help,
			ConstLabels: prometheus.Labels{"scenario": scenario},
		})
		if err := reg.Register(g); err != nil {
			return fmt.Errorf("registering %s: %w", f.Name, err)
		}
		g.Set(f.Value(average))
	}
	return prometheus.WriteToTextfile(path, reg)
}
