package selector

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/dvdk01/loadsim/internal/schema"
	"github.com/dvdk01/loadsim/internal/validator"
)

// Selector picks endpoints with probability proportional to their weight.
type Selector struct {
	endpoints []schema.Endpoint
	total     float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSource returns a seeded PCG source. A zero seed draws a random one.
func NewSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

func New(endpoints []schema.Endpoint, src rand.Source) (*Selector, error) {
	if err := validator.New().ValidateEndpoints(endpoints).Err(); err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}
	if src == nil {
		src = NewSource(0)
	}

	total := 0.0
	for _, e := range endpoints {
		total += e.Weight
	}

	return &Selector{
		endpoints: append([]schema.Endpoint(nil), endpoints...),
		total:     total,
		rnd:       rand.New(src),
	}, nil
}

func (s *Selector) Select() schema.Endpoint {
	s.mu.Lock()
	r := s.rnd.Float64() * s.total
	s.mu.Unlock()

	return s.pick(r)
}

func (s *Selector) pick(r float64) schema.Endpoint {
	cumulative := 0.0
	for _, e := range s.endpoints {
		cumulative += e.Weight
		if cumulative >= r {
			return e
		}
	}
	// floating point accumulation fell short of the draw
	return s.endpoints[0]
}
