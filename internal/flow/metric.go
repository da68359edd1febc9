package flow

import "fmt"

// Metric names a flow-direction algorithm.
type Metric string

const (
	D8       Metric = "d8"
	D4       Metric = "d4"
	Rho8     Metric = "rho8"
	Rho4     Metric = "rho4"
	Quinn    Metric = "quinn"
	Freeman  Metric = "freeman"
	Holmgren Metric = "holmgren"
	Dinf     Metric = "dinf"
)

// Metrics lists all supported metrics in demo order.
func Metrics() []Metric {
	return []Metric{D8, D4, Rho8, Rho4, Quinn, Freeman, Holmgren, Dinf}
}

func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	for _, k := range Metrics() {
		if m == k {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown flow metric: %s (available: %v)", s, Metrics())
}

// Multiple reports whether the metric partitions flow among several
// receivers.
func (m Metric) Multiple() bool {
	switch m {
	case Quinn, Freeman, Holmgren, Dinf:
		return true
	}
	return false
}

// Stochastic reports whether the metric draws from an RNG.
func (m Metric) Stochastic() bool { return m == Rho8 || m == Rho4 }

// Connectivity is the neighborhood size the metric routes over (and hence
// the connectivity depressions must be conditioned with).
func (m Metric) Connectivity() int {
	if m == D4 || m == Rho4 {
		return 4
	}
	return 8
}
