package tree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stackbot/eval"
	"stackbot/game"
)

// flatEval scores boards by stack height only, so tests can predict ordering
// without depending on the full heuristic.
type flatEval struct{}

func (flatEval) Score(b *game.Board, lock game.LockResult) float64 {
	total := 0
	for x := 0; x < game.FieldWidth; x++ {
		h := b.ColumnHeight(x)
		total += h * h
	}
	return -float64(total)
}

func (flatEval) Info() []eval.InfoPair {
	return []eval.InfoPair{{Label: "flat"}}
}

func deadBoard() game.Board {
	b := game.NewBoard()
	for x := 0; x < game.FieldWidth; x++ {
		for y := 0; y <= 21; y++ {
			b.Field[y][x] = true
		}
	}
	return b
}

func TestExtendGrowsNodeCount(t *testing.T) {
	cfg := Config{UseHold: true, Speculate: false}
	b := game.NewBoard()
	b.AddNextPiece(game.PieceT)
	tr := New(b, flatEval{})

	require.Zero(t, tr.Nodes())

	dead := tr.Extend(cfg, flatEval{})
	require.False(t, dead)
	first := tr.Nodes()
	require.Positive(t, first)

	// Growth below the root keeps the count non-decreasing.
	tr.AddNextPiece(game.PieceI)
	tr.Extend(cfg, flatEval{})
	require.GreaterOrEqual(t, tr.Nodes(), first)
}

func TestTakeBestChild(t *testing.T) {
	cfg := Config{}
	b := game.NewBoard()
	b.AddNextPiece(game.PieceI)

	tr := New(b, flatEval{})
	_, ok := tr.TakeBestChild()
	require.False(t, ok, "an unexpanded root has nothing to commit")

	tr.Extend(cfg, flatEval{})
	child, ok := tr.TakeBestChild()
	require.True(t, ok)
	require.False(t, child.Tree.dead)
	require.NotEmpty(t, child.Mv.Inputs)

	// A flat I placement keeps the stack lowest; the evaluator prefers it.
	require.Equal(t, game.RotationSpawn, child.Mv.Location.Rotation)
}

func TestSpeculation(t *testing.T) {
	cfg := Config{Speculate: true}
	b := game.NewBoard()
	b.AddNextPiece(game.PieceT)
	tr := New(b, flatEval{})

	// First extension consumes the only known piece's placements; the next
	// one must speculate over the remaining bag.
	tr.Extend(cfg, flatEval{})
	child, ok := tr.TakeBestChild()
	require.True(t, ok)
	tr = child.Tree
	require.Empty(t, tr.Board.Queue)

	tr.Extend(cfg, flatEval{})
	require.Positive(t, tr.Nodes())
	require.NotNil(t, tr.speculation)
	require.Len(t, tr.speculation, tr.Board.Possibles().Len())

	_, ok = tr.TakeBestChild()
	require.False(t, ok, "speculation must resolve before committing")

	// Revealing the piece collapses the layer to the matching branch.
	revealed := tr.Board.Possibles().Pieces()[0]
	dead := tr.AddNextPiece(revealed)
	require.False(t, dead)
	require.Nil(t, tr.speculation)
	require.NotEmpty(t, tr.children)

	_, ok = tr.TakeBestChild()
	require.True(t, ok)
}

func TestSpeculationDisabled(t *testing.T) {
	cfg := Config{Speculate: false}
	b := game.NewBoard()
	tr := New(b, flatEval{})

	tr.Extend(cfg, flatEval{})
	require.Zero(t, tr.Nodes(), "nothing to grow without a known piece")
	_, ok := tr.TakeBestChild()
	require.False(t, ok)
}

func TestDeath(t *testing.T) {
	t.Run("extension with no surviving placement", func(t *testing.T) {
		tr := New(deadBoard(), flatEval{})
		dead := tr.AddNextPiece(game.PieceT)
		require.False(t, dead, "death is only discovered by expansion")

		require.True(t, tr.Extend(Config{}, flatEval{}), "no placement survives on a full board")
	})

	t.Run("reported through AddNextPiece after expansion", func(t *testing.T) {
		tr := New(deadBoard(), flatEval{})
		tr.AddNextPiece(game.PieceT)
		tr.Extend(Config{}, flatEval{})
		require.True(t, tr.AddNextPiece(game.PieceI))
	})
}
