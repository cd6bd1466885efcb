// File: internal/epidemic/individual.go
package epidemic

import "fmt"

const (
	// MaxSickDays is the adjusted sick-day threshold past which an infected individual recovers.
	MaxSickDays = 14
	// recoveryWeight scales the recovery roll when computing adjusted sick days.
	recoveryWeight = 3.0
)

// Roller produces uniform draws in [0,1). *rand.Rand satisfies it.
type Roller interface {
	Float64() float64
}

// Individual is one member of the population.
//
// Resistance is the fixed per-individual factor drawn at construction. An individual
// is infected when Resistance < transmission probability, so LOWER values make
// infection MORE likely. The comparison direction is kept as-is for fidelity with
// existing trial results; only the name was chosen to make the inversion visible.
type Individual struct {
	State      HealthState
	SickDays   int
	Resistance float64
}

// NewIndividual creates an individual in the given state with its own freshly drawn
// Resistance. Infected individuals start on their first sick day.
func NewIndividual(state HealthState, r Roller) *Individual {
	ind := &Individual{
		State:      state,
		Resistance: r.Float64(),
	}
	if state == Infected {
		ind.SickDays = 1
	}
	return ind
}

// AttemptInfection reports whether a susceptible individual catches the disease from
// the individuals it encountered today. It has no side effects.
//
// The first Infected encounter decides the verdict; since the threshold depends only
// on the receiver's Resistance, encounter order never changes the result. An empty
// encounter set is not an error, it just cannot infect.
func (ind *Individual) AttemptInfection(transmissionProbability float64, encountered []*Individual) (bool, error) {
	if err := validateProbability("transmission probability", transmissionProbability); err != nil {
		return false, err
	}
	if err := validateProbability("resistance", ind.Resistance); err != nil {
		return false, err
	}

	for _, other := range encountered {
		if other.State != Infected {
			continue
		}
		return ind.Resistance < transmissionProbability, nil
	}
	return false, nil
}

// AttemptProgression decides whether an infected individual dies, recovers, or stays
// sick today. deathRoll and recoveryRoll are independent uniform draws supplied by the
// caller. Death wins when deathRoll < deathProbability (equality survives). Otherwise
// the individual recovers once SickDays + 3*recoveryRoll exceeds MaxSickDays.
//
// The receiver is not modified; the caller applies the outcome.
func (ind *Individual) AttemptProgression(deathProbability, deathRoll, recoveryRoll float64) (Outcome, error) {
	if err := validateProbability("death probability", deathProbability); err != nil {
		return ContinuesSick, err
	}
	if err := validateProbability("death roll", deathRoll); err != nil {
		return ContinuesSick, err
	}
	if err := validateProbability("recovery roll", recoveryRoll); err != nil {
		return ContinuesSick, err
	}

	if deathRoll < deathProbability {
		return Dies, nil
	}
	if ind.AdjustedSickDays(recoveryRoll) > MaxSickDays {
		return Recovers, nil
	}
	return ContinuesSick, nil
}

// AdjustedSickDays is the recovery metric: sick days plus a weighted recovery roll.
func (ind *Individual) AdjustedSickDays(recoveryRoll float64) float64 {
	return float64(ind.SickDays) + recoveryWeight*recoveryRoll
}

func (ind *Individual) String() string {
	return fmt.Sprintf("%s(sick_days=%d, resistance=%.3f)", ind.State, ind.SickDays, ind.Resistance)
}
