package domain

import (
	"math"
	"sort"
)

// AggregatePositives turns raw detections into one labeled-positive
// Event per unique (day, cell) key. Detections with a zero timestamp or
// out-of-range coordinates are dropped and only counted. Brightness and
// FRP are averaged over the contributing detections; confidence is the
// value of the earliest detection, which is what makes the input sort
// by date load-bearing.
func AggregatePositives(detections []Detection, cellSize float64) (events []Event, dropped int) {
	valid := make([]Detection, 0, len(detections))
	for _, d := range detections {
		if !d.Valid() {
			dropped++
			continue
		}
		valid = append(valid, d)
	}

	// Date-ascending order makes "first confidence" well-defined and
	// reproducible across runs. The sort must be stable so same-day
	// detections keep their file order.
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp.Before(valid[j].Timestamp)
	})

	type group struct {
		event         Event
		brightnessSum float64
		frpSum        float64
	}

	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, d := range valid {
		cell := Discretize(d.Latitude, d.Longitude, cellSize)
		ev := Event{Date: Day(d.Timestamp), Cell: cell, Fire: 1}
		key := ev.Key()

		g, ok := groups[key]
		if !ok {
			ev.Confidence = d.Confidence
			g = &group{event: ev}
			groups[key] = g
			order = append(order, key)
		}
		g.brightnessSum += d.Brightness
		g.frpSum += d.FRP
		g.event.Detections++
	}

	events = make([]Event, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		g.event.Brightness = g.brightnessSum / float64(g.event.Detections)
		g.event.FRP = g.frpSum / float64(g.event.Detections)
		events = append(events, g.event)
	}
	return events, dropped
}

// Valid reports whether the detection carries the minimum fields the
// aggregator requires: a non-zero date and coordinates inside the valid
// WGS-84 range.
func (d Detection) Valid() bool {
	if d.Timestamp.IsZero() {
		return false
	}
	if math.IsNaN(d.Latitude) || math.IsNaN(d.Longitude) {
		return false
	}
	return d.Latitude >= -90 && d.Latitude <= 90 && d.Longitude >= -180 && d.Longitude <= 180
}

// PositiveKeys builds the collision-lookup set the negative sampler
// rejects against.
func PositiveKeys(events []Event) map[string]struct{} {
	keys := make(map[string]struct{}, len(events))
	for _, e := range events {
		keys[e.Key()] = struct{}{}
	}
	return keys
}
