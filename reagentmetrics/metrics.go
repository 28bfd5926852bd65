// Package reagentmetrics exposes Prometheus counters for the engine's
// invocation loop, following the same package-level promauto.NewCounter
// style the rest of the dependency graph's metrics packages use. The
// root package's driver and catalyst install loop call these directly;
// importing this package at all registers the counters with the default
// registry, matching how the other examples' metrics packages work.
package reagentmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var commitsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "reagent_commits_total",
	Help: "counter of reactions that reached a successful Commit",
})

var retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "reagent_retries_total",
	Help: "counter of back-off ticks taken after a Retry backtrack",
})

var blocksTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "reagent_blocks_total",
	Help: "counter of attempts that published a waiter and parked after a Block backtrack",
})

var parksTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "reagent_parks_total",
	Help: "counter of goroutines that actually parked waiting for a waiter to be answered",
})

var catalystReinstallsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "reagent_catalyst_reinstalls_total",
	Help: "counter of times a dissolved catalyst fired and was reinstalled",
})

// IncCommit records a successful Commit.
func IncCommit() { commitsTotal.Inc() }

// IncRetry records one back-off tick taken after a Retry backtrack.
func IncRetry() { retriesTotal.Inc() }

// IncBlock records an attempt that published a waiter and intends to park.
func IncBlock() { blocksTotal.Inc() }

// IncPark records a goroutine that actually blocked in Waiter.park.
func IncPark() { parksTotal.Inc() }

// IncCatalystReinstall records one catalyst fire-and-reinstall cycle.
func IncCatalystReinstall() { catalystReinstallsTotal.Inc() }
