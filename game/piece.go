package game

// Piece is one of the seven tetrominoes.
type Piece int

const (
	PieceI Piece = iota
	PieceO
	PieceT
	PieceL
	PieceJ
	PieceS
	PieceZ
)

func (p Piece) String() string {
	return [...]string{"I", "O", "T", "L", "J", "S", "Z"}[p]
}

// Rotation is the orientation of a piece: 0 = spawn, then clockwise quarter turns.
type Rotation int

const (
	RotationSpawn Rotation = iota
	RotationCw
	RotationFlip
	RotationCcw
)

func (r Rotation) Cw() Rotation  { return (r + 1) % 4 }
func (r Rotation) Ccw() Rotation { return (r + 3) % 4 }

// Placement is a piece resting at a position on the field. X and Y locate the
// bottom-left corner of the piece's bounding box; the box may hang off the field
// edges as long as every cell is inside.
type Placement struct {
	Piece    Piece
	Rotation Rotation
	X        int
	Y        int
}

// Cells returns the field coordinates of the placement's four cells.
func (pl Placement) Cells() [4][2]int {
	var cells [4][2]int
	for i, c := range pieceCells[pl.Piece][pl.Rotation] {
		cells[i] = [2]int{pl.X + c[0], pl.Y + c[1]}
	}
	return cells
}

// pieceCells[piece][rotation] holds the four cell offsets inside the piece's
// bounding box, x right and y up. Rotations are derived from the spawn shape at
// init time by rotating the box clockwise.
var pieceCells [7][4][4][2]int

// boxSize is the bounding box side length per piece.
var boxSize = [7]int{4, 2, 3, 3, 3, 3, 3}

var spawnCells = [7][4][2]int{
	PieceI: {{0, 2}, {1, 2}, {2, 2}, {3, 2}},
	PieceO: {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	PieceT: {{0, 1}, {1, 1}, {2, 1}, {1, 2}},
	PieceL: {{0, 1}, {1, 1}, {2, 1}, {2, 2}},
	PieceJ: {{0, 1}, {1, 1}, {2, 1}, {0, 2}},
	PieceS: {{0, 1}, {1, 1}, {1, 2}, {2, 2}},
	PieceZ: {{1, 1}, {2, 1}, {0, 2}, {1, 2}},
}

func init() {
	for p := PieceI; p <= PieceZ; p++ {
		cells := spawnCells[p]
		n := boxSize[p]
		for r := RotationSpawn; r <= RotationCcw; r++ {
			pieceCells[p][r] = cells
			for i, c := range cells {
				cells[i] = [2]int{c[1], n - 1 - c[0]}
			}
		}
	}
}

// PieceSet is a set of pieces, used to track the remaining bag contents.
type PieceSet uint8

// FullBag contains all seven pieces.
const FullBag PieceSet = 1<<7 - 1

func (s PieceSet) Contains(p Piece) bool { return s&(1<<p) != 0 }
func (s PieceSet) With(p Piece) PieceSet { return s | 1<<p }

func (s PieceSet) Without(p Piece) PieceSet { return s &^ (1 << p) }

func (s PieceSet) Len() int {
	count := 0
	for p := PieceI; p <= PieceZ; p++ {
		if s.Contains(p) {
			count++
		}
	}
	return count
}

// Pieces lists the set's members in a fixed order.
func (s PieceSet) Pieces() []Piece {
	pieces := make([]Piece, 0, 7)
	for p := PieceI; p <= PieceZ; p++ {
		if s.Contains(p) {
			pieces = append(pieces, p)
		}
	}
	return pieces
}
