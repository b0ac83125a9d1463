// Package routing selects the destination hospital for a dispatch and
// simulates the travel ETA over the fixed network.
package routing

import (
	"errors"
	"math"

	"github.com/ems/ems/internal/domain/hospital"
)

// ErrNoRoute is returned when the eligible hospital set is empty. No case
// record is created or mutated when routing fails.
var ErrNoRoute = errors.New("no eligible hospital in network")

// speedKmPerMin is the simulated average ambulance speed (~40 km/h).
const speedKmPerMin = 0.67

// Route is a resolved dispatch destination.
type Route struct {
	Hospital   hospital.Hospital
	ETAMinutes int
}

// Engine ranks hospitals by the simulated travel cost. It holds no mutable
// state; the directory is injected at construction.
type Engine struct {
	dir *hospital.Directory
}

func NewEngine(dir *hospital.Directory) *Engine {
	return &Engine{dir: dir}
}

// Dispatch picks the best hospital for an initial dispatch, applying the
// specialty eligibility filter for critical cases.
func (e *Engine) Dispatch(critical bool) (Route, error) {
	return pick(e.dir.Eligible(critical))
}

// Reroute picks the best hospital among those not yet rejected. The
// specialty filter does not apply to re-routes.
func (e *Engine) Reroute(rejected []string) (Route, error) {
	return pick(e.dir.Remaining(rejected))
}

// pick selects the hospital minimizing distance × traffic. Ties resolve to
// the first minimal element in directory order.
func pick(eligible []hospital.Hospital) (Route, error) {
	if len(eligible) == 0 {
		return Route{}, ErrNoRoute
	}
	best := eligible[0]
	bestCost := cost(best)
	for _, h := range eligible[1:] {
		if c := cost(h); c < bestCost {
			best, bestCost = h, c
		}
	}
	return Route{Hospital: best, ETAMinutes: ETA(best)}, nil
}

func cost(h hospital.Hospital) float64 {
	return h.DistanceKm * h.TrafficFactor
}

// ETA simulates the travel time in whole minutes, rounding half away from
// zero.
func ETA(h hospital.Hospital) int {
	return int(math.Round(h.DistanceKm / speedKmPerMin * h.TrafficFactor))
}
