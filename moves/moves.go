// Package moves generates the placements reachable for a piece on a board,
// together with an input sequence that reaches each one.
package moves

import "stackbot/game"

// Mode selects how piece movement is simulated during generation.
type Mode int

const (
	// ModeZeroG lets the piece float freely, so soft-drop tucks and spins
	// under overhangs are reachable.
	ModeZeroG Mode = iota
	// Mode20G pulls the piece to the floor after every input, as under
	// instant gravity.
	Mode20G
)

// Input is one controller action of a move's path.
type Input int

const (
	InputLeft Input = iota
	InputRight
	InputCw
	InputCcw
	InputSonicDrop
)

func (i Input) String() string {
	return [...]string{"left", "right", "cw", "ccw", "sonicdrop"}[i]
}

// Move is a reachable resting placement plus the inputs that produce it.
type Move struct {
	Inputs   []Input
	Location game.Placement
}

type state struct {
	r    game.Rotation
	x, y int
}

type edge struct {
	prev  state
	input Input
}

// Find returns every distinct resting placement of p reachable from its spawn
// position, breadth first so paths are shortest in input count. Paths always
// end with a sonic drop so the host can replay them without simulating
// gravity. Returns nil if the spawn position is blocked.
func Find(b *game.Board, p game.Piece, mode Mode) []Move {
	spawn := spawnState(p)
	if b.Collides(place(p, spawn)) {
		return nil
	}
	if mode == Mode20G {
		spawn = drop(b, p, spawn)
	}

	visited := map[state]bool{spawn: true}
	parents := map[state]edge{}
	queue := []state{spawn}
	resting := map[[4][2]int]state{}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if grounded(b, p, cur) {
			cells := sortCells(place(p, cur).Cells())
			if _, seen := resting[cells]; !seen {
				resting[cells] = cur
			}
		}

		for _, input := range [...]Input{InputLeft, InputRight, InputCw, InputCcw, InputSonicDrop} {
			next, ok := step(b, p, cur, input)
			if mode == Mode20G {
				next = drop(b, p, next)
			}
			if !ok || visited[next] {
				continue
			}
			visited[next] = true
			parents[next] = edge{prev: cur, input: input}
			queue = append(queue, next)
		}
	}

	found := make([]Move, 0, len(resting))
	for _, s := range resting {
		found = append(found, Move{
			Inputs:   pathTo(parents, spawn, s),
			Location: place(p, s),
		})
	}
	return found
}

func spawnState(p game.Piece) state {
	switch p {
	case game.PieceI:
		return state{x: 3, y: 18}
	case game.PieceO:
		return state{x: 4, y: 20}
	default:
		return state{x: 3, y: 19}
	}
}

func place(p game.Piece, s state) game.Placement {
	return game.Placement{Piece: p, Rotation: s.r, X: s.x, Y: s.y}
}

// grounded reports whether the piece cannot fall further from s.
func grounded(b *game.Board, p game.Piece, s state) bool {
	return b.Collides(place(p, state{r: s.r, x: s.x, y: s.y - 1}))
}

// step applies one input without gravity. Rotation uses no kick tables.
func step(b *game.Board, p game.Piece, s state, input Input) (state, bool) {
	next := s
	switch input {
	case InputLeft:
		next.x--
	case InputRight:
		next.x++
	case InputCw:
		next.r = next.r.Cw()
	case InputCcw:
		next.r = next.r.Ccw()
	case InputSonicDrop:
		next = drop(b, p, s)
		return next, next != s
	}
	if b.Collides(place(p, next)) {
		return s, false
	}
	return next, true
}

func drop(b *game.Board, p game.Piece, s state) state {
	for !grounded(b, p, s) {
		s.y--
	}
	return s
}

// sortCells orders a cell set canonically so that symmetric rotations of the
// same resting position (S, Z, and I pieces) deduplicate.
func sortCells(cells [4][2]int) [4][2]int {
	for i := 1; i < len(cells); i++ {
		for j := i; j > 0; j-- {
			a, b := cells[j-1], cells[j]
			if b[1] < a[1] || (b[1] == a[1] && b[0] < a[0]) {
				cells[j-1], cells[j] = b, a
			}
		}
	}
	return cells
}

func pathTo(parents map[state]edge, spawn, s state) []Input {
	var reversed []Input
	for s != spawn {
		e := parents[s]
		reversed = append(reversed, e.input)
		s = e.prev
	}

	path := make([]Input, 0, len(reversed)+1)
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	if len(path) == 0 || path[len(path)-1] != InputSonicDrop {
		path = append(path, InputSonicDrop)
	}
	return path
}
