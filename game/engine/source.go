package engine

import (
	"math/rand/v2"
	"sync"
)

// PieceSource yields the shape kind of each new piece
type PieceSource interface {
	Next() Shape
}

// RandomSource picks uniformly among all shape kinds
type RandomSource struct {
	rng *rand.Rand
	mu  sync.Mutex
}

// NewRandomSource creates a source seeded with seed. A zero seed draws a
// random one.
func NewRandomSource(seed uint64) *RandomSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandomSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next returns a random shape kind
func (s *RandomSource) Next() Shape {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllShapes[s.rng.IntN(len(AllShapes))]
}

// SequenceSource cycles through a fixed list of shapes
type SequenceSource struct {
	shapes []Shape
	pos    int
	mu     sync.Mutex
}

// NewSequenceSource creates a source repeating shapes in order. An empty
// list repeats AllShapes.
func NewSequenceSource(shapes ...Shape) *SequenceSource {
	if len(shapes) == 0 {
		shapes = AllShapes
	}
	return &SequenceSource{shapes: append([]Shape(nil), shapes...)}
}

// Next returns the next shape in the cycle
func (s *SequenceSource) Next() Shape {
	s.mu.Lock()
	defer s.mu.Unlock()
	shape := s.shapes[s.pos%len(s.shapes)]
	s.pos++
	return shape
}
