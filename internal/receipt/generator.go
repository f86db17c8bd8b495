// Package receipt hands out unique 4-digit receipt numbers.
package receipt

import (
	"errors"
	"math/rand/v2"

	"github.com/mamadbah2/partyhire/internal/domain/models"
)

// ErrExhausted is returned when every receipt number is already in use.
var ErrExhausted = errors.New("no more unique receipt numbers can be generated")

const (
	minNumber = models.MinReceiptNumber
	maxNumber = models.MaxReceiptNumber

	// Capacity is the number of distinct receipt numbers.
	Capacity = maxNumber - minNumber + 1

	defaultMaxAttempts = 32
)

// Source yields uniform integers in [0, n).
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Generator draws random receipt numbers and rejects those already taken.
type Generator struct {
	src         Source
	maxAttempts int
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxAttempts bounds the number of random draws before the generator
// falls back to picking among the free numbers directly.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// NewGenerator builds a generator. A nil source uses math/rand/v2.
func NewGenerator(src Source, opts ...Option) *Generator {
	if src == nil {
		src = globalSource{}
	}
	g := &Generator{src: src, maxAttempts: defaultMaxAttempts}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns a number in [1000, 9999] that is not in taken.
func (g *Generator) Next(taken map[int]struct{}) (int, error) {
	inUse := 0
	for n := range taken {
		if n >= minNumber && n <= maxNumber {
			inUse++
		}
	}
	if inUse >= Capacity {
		return 0, ErrExhausted
	}

	for range g.maxAttempts {
		n := minNumber + g.src.IntN(Capacity)
		if _, ok := taken[n]; !ok {
			return n, nil
		}
	}

	// The set is dense enough that rejection keeps missing; choose uniformly
	// among what is left.
	free := make([]int, 0, Capacity-inUse)
	for n := minNumber; n <= maxNumber; n++ {
		if _, ok := taken[n]; !ok {
			free = append(free, n)
		}
	}
	if len(free) == 0 {
		return 0, ErrExhausted
	}
	return free[g.src.IntN(len(free))], nil
}
