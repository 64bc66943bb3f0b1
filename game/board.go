package game

// Field dimensions. Rows 20 and above are hidden above the visible playfield.
const (
	FieldWidth    = 10
	FieldHeight   = 40
	VisibleHeight = 20
)

// Field is the playfield, indexed [y][x] with y = 0 at the bottom.
type Field [FieldHeight][FieldWidth]bool

// Board is a full game-state snapshot: playfield, hold slot, the known queue of
// upcoming pieces, the remaining bag for the next unknown piece, and the
// back-to-back and combo counters.
type Board struct {
	Field   Field
	Hold    Piece
	HasHold bool
	Queue   []Piece
	Bag     PieceSet
	B2B     bool
	Combo   int
}

// LockResult describes the effect of locking a piece in place.
type LockResult struct {
	LinesCleared int
	// B2B is true if this lock scored a back-to-back bonus.
	B2B   bool
	Combo int
	// Dead is true if the piece locked entirely above the visible field.
	Dead bool
}

// NewBoard returns an empty board with a full bag and no known pieces.
func NewBoard() Board {
	return Board{Bag: FullBag}
}

// SetField overwrites the playfield, leaving hold, queue, and bag untouched.
func (b *Board) SetField(f Field) {
	b.Field = f
}

// Occupied reports whether the cell is filled or outside the field walls. Cells
// above the top of the field count as free.
func (b *Board) Occupied(x, y int) bool {
	if x < 0 || x >= FieldWidth || y < 0 {
		return true
	}
	if y >= FieldHeight {
		return false
	}
	return b.Field[y][x]
}

// Collides reports whether the placement overlaps filled cells or the walls.
func (b *Board) Collides(pl Placement) bool {
	for _, c := range pl.Cells() {
		if b.Occupied(c[0], c[1]) {
			return true
		}
	}
	return false
}

// AddNextPiece appends a newly revealed piece to the known queue and advances
// the bag state, refilling the bag when it empties.
func (b *Board) AddNextPiece(p Piece) {
	b.Queue = append(append([]Piece(nil), b.Queue...), p)
	b.Bag = b.Bag.Without(p)
	if b.Bag == 0 {
		b.Bag = FullBag
	}
}

// QueueLen returns the number of known upcoming pieces.
func (b *Board) QueueLen() int {
	return len(b.Queue)
}

// Possibles returns the set of pieces the next unknown piece can be, under
// 7-bag piece generation.
func (b *Board) Possibles() PieceSet {
	return b.Bag
}

// Apply consumes the front of the queue (two pieces when holding into an empty
// hold slot), locks the placement, and clears lines. The caller must ensure the
// queue is long enough: one piece normally, two for a first-time hold.
func (b *Board) Apply(hold bool, pl Placement) LockResult {
	current := b.Queue[0]
	rest := b.Queue[1:]
	if hold {
		if b.HasHold {
			b.Hold, current = current, b.Hold
		} else {
			b.Hold = current
			b.HasHold = true
			current = rest[0]
			rest = rest[1:]
		}
	}
	b.Queue = append([]Piece(nil), rest...)
	return b.lock(pl)
}

func (b *Board) lock(pl Placement) LockResult {
	dead := true
	for _, c := range pl.Cells() {
		if c[1] < FieldHeight {
			b.Field[c[1]][c[0]] = true
		}
		if c[1] < VisibleHeight {
			dead = false
		}
	}

	cleared := b.clearLines()

	result := LockResult{LinesCleared: cleared, Dead: dead}
	if cleared > 0 {
		b.Combo++
		result.B2B = cleared == 4 && b.B2B
		b.B2B = cleared == 4
	} else {
		b.Combo = 0
	}
	result.Combo = b.Combo
	return result
}

func (b *Board) clearLines() int {
	cleared := 0
	for y := 0; y < FieldHeight; y++ {
		full := true
		for x := 0; x < FieldWidth; x++ {
			if !b.Field[y][x] {
				full = false
				break
			}
		}
		if full {
			cleared++
		} else if cleared > 0 {
			b.Field[y-cleared] = b.Field[y]
		}
	}
	for y := FieldHeight - cleared; y < FieldHeight; y++ {
		b.Field[y] = [FieldWidth]bool{}
	}
	return cleared
}

// ColumnHeight returns the height of the stack in column x.
func (b *Board) ColumnHeight(x int) int {
	for y := FieldHeight - 1; y >= 0; y-- {
		if b.Field[y][x] {
			return y + 1
		}
	}
	return 0
}
