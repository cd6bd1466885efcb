package epidemic

// Counts is a partition of a population into health states.
type Counts struct {
	Susceptible int `json:"susceptible"`
	Infected    int `json:"infected"`
	Recovered   int `json:"recovered"`
	Dead        int `json:"dead"`
	Vaccinated  int `json:"vaccinated"`
}

// DailyCounts is the end-of-day snapshot for one simulated day.
type DailyCounts struct {
	Day int `json:"day"`
	Counts
}

// CountPopulation tallies the actual state distribution of pop.
func CountPopulation(pop Population) Counts {
	var c Counts
	for _, ind := range pop {
		*c.slot(ind.State)++
	}
	return c
}

// Total is the number of individuals accounted for.
func (c Counts) Total() int {
	return c.Susceptible + c.Infected + c.Recovered + c.Dead + c.Vaccinated
}

// Get returns the count for a single state.
func (c Counts) Get(s HealthState) int {
	return *c.slot(s)
}

// move shifts one individual from one state to another.
func (c *Counts) move(from, to HealthState) {
	*c.slot(from)--
	*c.slot(to)++
}

func (c *Counts) slot(s HealthState) *int {
	switch s {
	case Susceptible:
		return &c.Susceptible
	case Infected:
		return &c.Infected
	case Recovered:
		return &c.Recovered
	case Dead:
		return &c.Dead
	case Vaccinated:
		return &c.Vaccinated
	default:
		panic("epidemic: unknown health state " + s.String())
	}
}
