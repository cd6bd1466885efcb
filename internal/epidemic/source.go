// File: internal/epidemic/source.go
package epidemic

import "math/rand"

const (
	// MinExposures and MaxExposures bound the number of contacts a susceptible
	// individual draws per day.
	MinExposures = 1
	MaxExposures = 8
)

// Source supplies every random draw the day step needs. Injecting it keeps the
// transition engine testable with scripted values.
type Source interface {
	Roller
	// ExposureCount returns the number of contacts for one susceptible individual,
	// uniform in [MinExposures, MaxExposures].
	ExposureCount() int
	// Sample returns k distinct indices drawn uniformly from [0, n). k <= n.
	Sample(n, k int) []int
}

// RandSource is the production Source backed by a single *rand.Rand.
// It is not safe for concurrent use; give every trial its own.
type RandSource struct {
	rng *rand.Rand
}

// NewRandSource wraps rng.
func NewRandSource(rng *rand.Rand) *RandSource {
	return &RandSource{rng: rng}
}

func (s *RandSource) Float64() float64 { return s.rng.Float64() }

func (s *RandSource) ExposureCount() int {
	return MinExposures + s.rng.Intn(MaxExposures-MinExposures+1)
}

// Sample uses Floyd's algorithm, so the cost is O(k) rather than O(n).
func (s *RandSource) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	chosen := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for j := n - k; j < n; j++ {
		t := s.rng.Intn(j + 1)
		if _, dup := chosen[t]; dup {
			t = j
		}
		chosen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
