package virus

import (
	"math/rand"

	"github.com/killthevirus/killthevirus/go/internal/models"
)

// Grid and delay bounds for the reaction target. The board is 10x10 and the
// target appears after a suspense delay between 1.5s and 10s.
const (
	gridSize = 10
	minDelay = 1500
	maxDelay = 10000
)

// Generator produces one round's target parameters.
type Generator interface {
	Next() models.VirusData
}

// RandomGenerator places the target uniformly on the grid with a uniform
// appearance delay. The shared math/rand source is safe for concurrent
// rounds across rooms.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) Next() models.VirusData {
	return models.VirusData{
		Row:    rand.Intn(gridSize) + 1,
		Column: rand.Intn(gridSize) + 1,
		Delay:  rand.Intn(maxDelay-minDelay) + minDelay,
	}
}
