// File: internal/epidemic/health.go
package epidemic

import "fmt"

// HealthState is the mutually exclusive health state of an individual.
// It carries no day counter; sick days live in Individual.SickDays.
type HealthState int

const (
	Susceptible HealthState = iota
	Infected
	Recovered
	Dead
	Vaccinated
)

// States lists every health state in output column order.
func States() []HealthState {
	return []HealthState{Susceptible, Infected, Recovered, Dead, Vaccinated}
}

func (s HealthState) String() string {
	switch s {
	case Susceptible:
		return "Susceptible"
	case Infected:
		return "Infected"
	case Recovered:
		return "Recovered"
	case Dead:
		return "Dead"
	case Vaccinated:
		return "Vaccinated"
	default:
		return fmt.Sprintf("HealthState(%d)", int(s))
	}
}

// IsTerminal reports whether an individual in this state can never transition again.
func (s HealthState) IsTerminal() bool {
	return s == Recovered || s == Dead || s == Vaccinated
}

// Outcome is the verdict of a progression check for an infected individual.
type Outcome int

const (
	ContinuesSick Outcome = iota
	Recovers
	Dies
)

func (o Outcome) String() string {
	switch o {
	case ContinuesSick:
		return "ContinuesSick"
	case Recovers:
		return "Recovers"
	case Dies:
		return "Dies"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}
