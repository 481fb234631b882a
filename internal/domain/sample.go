package domain

import (
	"math/rand"
	"time"
)

// NegativeSampler draws labeled-negative events from the full
// (date × cell) candidate domain. The random source is injected so runs
// are exactly reproducible from a seed and tests can supply scripted
// sequences.
type NegativeSampler struct {
	rng *rand.Rand
}

// NewNegativeSampler creates a sampler over the given random source.
func NewNegativeSampler(rng *rand.Rand) *NegativeSampler {
	return &NegativeSampler{rng: rng}
}

// NewSeededSampler creates a sampler with its own deterministic source.
func NewSeededSampler(seed int64) *NegativeSampler {
	return &NegativeSampler{rng: rand.New(rand.NewSource(seed))}
}

// Sample runs exactly target draw iterations. Each iteration picks one
// date and one cell uniformly and independently, with replacement
// across iterations. A draw whose (date, cell) key collides with a
// positive event is discarded, not retried, so the realized negative
// count can be strictly less than target. A draw-until-target loop
// would change the sampling distribution, so the shortfall stands.
//
// Returned alongside the accepted events is the number of rejected
// draws.
func (s *NegativeSampler) Sample(dates []time.Time, cells []GridCell, positives map[string]struct{}, target int) (accepted []Event, rejected int) {
	if len(dates) == 0 || len(cells) == 0 || target <= 0 {
		return nil, 0
	}

	accepted = make([]Event, 0, target)
	for i := 0; i < target; i++ {
		date := dates[s.rng.Intn(len(dates))]
		cell := cells[s.rng.Intn(len(cells))]

		ev := Event{Date: Day(date), Cell: cell, Fire: 0}
		if _, clash := positives[ev.Key()]; clash {
			rejected++
			continue
		}
		accepted = append(accepted, ev)
	}
	return accepted, rejected
}
