package game

import "golang.org/x/exp/rand"

// Bag deals pieces with 7-bag randomization: each run of seven contains every
// piece exactly once.
type Bag struct {
	rng     *rand.Rand
	pending []Piece
}

func NewBag(seed uint64) *Bag {
	return &Bag{rng: rand.New(rand.NewSource(seed))}
}

func (b *Bag) Next() Piece {
	if len(b.pending) == 0 {
		b.pending = []Piece{PieceI, PieceO, PieceT, PieceL, PieceJ, PieceS, PieceZ}
		b.rng.Shuffle(len(b.pending), func(i, j int) {
			b.pending[i], b.pending[j] = b.pending[j], b.pending[i]
		})
	}
	p := b.pending[0]
	b.pending = b.pending[1:]
	return p
}
