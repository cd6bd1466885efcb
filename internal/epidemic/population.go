package epidemic

import (
	"fmt"
	"math/rand"
)

// Population is the ordered working set of one trial. Its cardinality never changes
// after construction; dead individuals stay in place.
type Population []*Individual

// BuildPopulation creates total individuals: infected start Infected on sick day 1,
// vaccinated start Vaccinated, and the remainder Susceptible. Every individual draws its
// own Resistance from rng, and the result is shuffled so construction order cannot bias
// encounter sampling.
func BuildPopulation(total, infected, vaccinated int, rng *rand.Rand) (Population, error) {
	if total <= 0 || infected < 0 || vaccinated < 0 {
		return nil, fmt.Errorf("population=%d infected=%d vaccinated=%d must be non-negative with a positive total: %w",
			total, infected, vaccinated, ErrInvalidConfiguration)
	}
	if infected+vaccinated > total {
		return nil, fmt.Errorf("infected (%d) + vaccinated (%d) exceeds population (%d): %w",
			infected, vaccinated, total, ErrInvalidConfiguration)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required: %w", ErrInvalidConfiguration)
	}

	pop := make(Population, 0, total)
	for i := 0; i < infected; i++ {
		pop = append(pop, NewIndividual(Infected, rng))
	}
	for i := 0; i < vaccinated; i++ {
		pop = append(pop, NewIndividual(Vaccinated, rng))
	}
	for i := infected + vaccinated; i < total; i++ {
		pop = append(pop, NewIndividual(Susceptible, rng))
	}

	rng.Shuffle(len(pop), func(i, j int) { pop[i], pop[j] = pop[j], pop[i] })
	return pop, nil
}

// Clone returns a deep copy, so a population can be replayed without sharing state.
func (p Population) Clone() Population {
	out := make(Population, len(p))
	for i, ind := range p {
		cp := *ind
		out[i] = &cp
	}
	return out
}

// States returns the current health state of every individual, in order.
func (p Population) States() []HealthState {
	out := make([]HealthState, len(p))
	for i, ind := range p {
		out[i] = ind.State
	}
	return out
}
