// File: internal/epidemic/simulator.go
package epidemic

import (
	"fmt"

	"go.uber.org/zap"
)

// Params is the per-trial configuration injected into a Simulator.
type Params struct {
	TransmissionProbability float64 `json:"transmission_probability"`
	DeathProbability        float64 `json:"death_probability"`
	Days                    int     `json:"days"`
}

// Validate checks both probabilities and the run length.
func (p Params) Validate() error {
	if err := validateProbability("transmission probability", p.TransmissionProbability); err != nil {
		return err
	}
	if err := validateProbability("death probability", p.DeathProbability); err != nil {
		return err
	}
	if p.Days <= 0 {
		return fmt.Errorf("days must be positive, got %d: %w", p.Days, ErrInvalidConfiguration)
	}
	return nil
}

// Simulator advances a population day by day. One Simulator serves one trial at a
// time; its Source is not safe for concurrent use.
type Simulator struct {
	params Params
	src    Source
	logger *zap.Logger

	// encountered is reused across susceptible individuals to avoid a per-call allocation.
	encountered []*Individual
}

// NewSimulator validates params and returns a Simulator drawing from src.
func NewSimulator(params Params, src Source, logger *zap.Logger) (*Simulator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("random source is required: %w", ErrInvalidConfiguration)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		params:      params,
		src:         src,
		logger:      logger.Named("simulator"),
		encountered: make([]*Individual, 0, MaxExposures),
	}, nil
}

// Params returns the configuration the simulator was built with.
func (s *Simulator) Params() Params { return s.params }

type action int

const (
	actNone action = iota
	actInfect
	actStaySick
	actRecover
	actDie
)

// AdvanceOneDay applies one day of transitions to pop and keeps counts in step.
//
// Every verdict is taken against the start-of-day states, then all verdicts are
// applied together, so no individual sees another's same-day transition and the
// processing order cannot change the end-of-day counts. Inputs are validated before
// anything is mutated.
func (s *Simulator) AdvanceOneDay(pop Population, counts *Counts) error {
	if err := s.params.Validate(); err != nil {
		return err
	}
	if counts == nil {
		return fmt.Errorf("running counts are required: %w", ErrInvalidConfiguration)
	}
	if actual := CountPopulation(pop); *counts != actual {
		return fmt.Errorf("running counts %+v do not match population %+v: %w",
			*counts, actual, ErrInvalidConfiguration)
	}

	actions := make([]action, len(pop))
	for i, ind := range pop {
		act, err := s.decide(pop, ind)
		if err != nil {
			return fmt.Errorf("individual %d: %w", i, err)
		}
		actions[i] = act
	}

	for i, act := range actions {
		ind := pop[i]
		switch act {
		case actInfect:
			ind.State = Infected
			ind.SickDays = 1
			counts.move(Susceptible, Infected)
		case actStaySick:
			ind.SickDays++
		case actRecover:
			ind.State = Recovered
			counts.move(Infected, Recovered)
		case actDie:
			ind.State = Dead
			counts.move(Infected, Dead)
		}
	}
	return nil
}

func (s *Simulator) decide(pop Population, ind *Individual) (action, error) {
	switch ind.State {
	case Susceptible:
		// Contacts may include the individual itself.
		k := min(s.src.ExposureCount(), len(pop))
		s.encountered = s.encountered[:0]
		for _, idx := range s.src.Sample(len(pop), k) {
			s.encountered = append(s.encountered, pop[idx])
		}
		infected, err := ind.AttemptInfection(s.params.TransmissionProbability, s.encountered)
		if err != nil {
			return actNone, err
		}
		if infected {
			return actInfect, nil
		}
		return actNone, nil

	case Infected:
		deathRoll := s.src.Float64()
		recoveryRoll := s.src.Float64()
		outcome, err := ind.AttemptProgression(s.params.DeathProbability, deathRoll, recoveryRoll)
		if err != nil {
			return actNone, err
		}
		switch outcome {
		case Dies:
			return actDie, nil
		case Recovers:
			return actRecover, nil
		default:
			return actStaySick, nil
		}

	default:
		// Recovered, Dead and Vaccinated are terminal.
		return actNone, nil
	}
}

// RunTrial advances pop through every configured day and returns one snapshot per day,
// indexed 0..Days-1. Initial counts come from pop itself, never from defaults. pop is
// left in its end-of-trial state for any post-hoc inspection.
func (s *Simulator) RunTrial(pop Population) ([]DailyCounts, error) {
	if len(pop) == 0 {
		return nil, fmt.Errorf("population is empty: %w", ErrInvalidConfiguration)
	}

	counts := CountPopulation(pop)
	s.logger.Debug("Starting trial",
		zap.Int("population", len(pop)),
		zap.Int("infected", counts.Infected),
		zap.Int("vaccinated", counts.Vaccinated),
		zap.Int("days", s.params.Days),
	)

	rows := make([]DailyCounts, 0, s.params.Days)
	for day := 0; day < s.params.Days; day++ {
		if err := s.AdvanceOneDay(pop, &counts); err != nil {
			return rows, fmt.Errorf("day %d: %w", day, err)
		}
		rows = append(rows, DailyCounts{Day: day, Counts: counts})
	}

	final := rows[len(rows)-1]
	s.logger.Debug("Trial finished",
		zap.Int("recovered", final.Recovered),
		zap.Int("dead", final.Dead),
		zap.Int("still_infected", final.Infected),
	)
	return rows, nil
}
