package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stackbot/eval"
	"stackbot/game"
)

func testOptions() Options {
	options := DefaultOptions()
	options.Speculate = false
	return options
}

func pollUntilMove(t *testing.T, i *Interface, timeout time.Duration) Move {
	t.Helper()
	var mv Move
	require.Eventually(t, func() bool {
		got, ok := i.PollNextMove()
		if ok {
			mv = got
		}
		return ok
	}, timeout, time.Millisecond, "expected a move before the deadline")
	return mv
}

func TestMoveRequest(t *testing.T) {
	options := testOptions()
	options.MinNodes = 0
	options.MaxNodes = 1

	i := Launch(game.NewBoard(), options, eval.NewStandard())
	defer i.Close()

	i.AddNextPiece(game.PieceT)
	i.RequestNextMove()

	mv := pollUntilMove(t, i, 5*time.Second)
	require.NotEmpty(t, mv.Inputs)
	for _, c := range mv.ExpectedLocation.Cells() {
		require.GreaterOrEqual(t, c[0], 0)
		require.Less(t, c[0], game.FieldWidth)
		require.GreaterOrEqual(t, c[1], 0)
		require.Less(t, c[1], game.FieldHeight)
	}

	// The move was taken; polling again reports nothing new.
	_, ok := i.PollNextMove()
	require.False(t, ok)
}

func TestNoMoveWithoutPieces(t *testing.T) {
	i := Launch(game.NewBoard(), testOptions(), eval.NewStandard())
	defer i.Close()

	i.RequestNextMove()

	time.Sleep(200 * time.Millisecond)
	_, ok := i.PollNextMove()
	require.False(t, ok, "no move can be produced before any piece is known")
	require.False(t, i.IsDead())
}

func TestMinNodesFloor(t *testing.T) {
	options := testOptions()
	options.MinNodes = 1 << 40
	options.MaxNodes = 1 << 41

	i := Launch(game.NewBoard(), options, eval.NewStandard())
	defer i.Close()

	i.AddNextPiece(game.PieceT)
	i.AddNextPiece(game.PieceI)
	i.RequestNextMove()

	time.Sleep(200 * time.Millisecond)
	_, ok := i.PollNextMove()
	require.False(t, ok, "no commit below the exploration floor")
}

func TestResetUsesNewField(t *testing.T) {
	options := testOptions()
	options.UseHold = false
	options.MinNodes = 0
	options.MaxNodes = 500

	i := Launch(game.NewBoard(), options, eval.NewStandard())
	defer i.Close()

	i.AddNextPiece(game.PieceO)
	i.AddNextPiece(game.PieceO)

	// A distinctive field: a tall tower on the left half.
	var field game.Field
	for x := 0; x < 5; x++ {
		for y := 0; y < 12; y++ {
			field[y][x] = true
		}
	}
	i.Reset(field, false, 0)
	i.RequestNextMove()

	mv := pollUntilMove(t, i, 5*time.Second)
	for _, c := range mv.ExpectedLocation.Cells() {
		require.False(t, field[c[1]][c[0]],
			"move at %+v must not overlap the post-reset field", mv.ExpectedLocation)
	}
}

func TestPrepareNextMoveIsSilent(t *testing.T) {
	i := Launch(game.NewBoard(), testOptions(), eval.NewStandard())
	defer i.Close()

	i.AddNextPiece(game.PieceL)
	for n := 0; n < 10; n++ {
		i.PrepareNextMove()
	}

	time.Sleep(200 * time.Millisecond)
	_, ok := i.PollNextMove()
	require.False(t, ok, "PrepareNextMove must not produce result traffic")
	require.False(t, i.IsDead())
}

func TestDeadIsSticky(t *testing.T) {
	t.Run("after Close", func(t *testing.T) {
		i := Launch(game.NewBoard(), testOptions(), eval.NewStandard())
		i.Close()

		require.True(t, i.IsDead())
		// Further calls are no-ops, never panics or revivals.
		i.RequestNextMove()
		i.AddNextPiece(game.PieceJ)
		_, ok := i.PollNextMove()
		require.False(t, ok)
		require.True(t, i.IsDead())
	})

	t.Run("after the worker loses every future", func(t *testing.T) {
		board := game.NewBoard()
		for x := 0; x < game.FieldWidth; x++ {
			for y := 0; y <= 21; y++ {
				board.Field[y][x] = true
			}
		}
		i := Launch(board, testOptions(), eval.NewStandard())
		defer i.Close()

		i.AddNextPiece(game.PieceT)

		require.Eventually(t, func() bool {
			i.PollNextMove()
			return i.IsDead()
		}, 5*time.Second, time.Millisecond)
		require.True(t, i.IsDead())
	})
}

func TestCommitAfterCeiling(t *testing.T) {
	// With the ceiling already reached, the worker sits in blocking intake;
	// a NextMove command must still wake it and commit.
	options := testOptions()
	options.MinNodes = 0
	options.MaxNodes = 10

	i := Launch(game.NewBoard(), options, eval.NewStandard())
	defer i.Close()

	i.AddNextPiece(game.PieceS)
	time.Sleep(100 * time.Millisecond) // let the worker hit the ceiling

	i.RequestNextMove()
	mv := pollUntilMove(t, i, 5*time.Second)
	require.NotEmpty(t, mv.Inputs)
}

func TestAssembleInfo(t *testing.T) {
	evalInfo := []eval.InfoPair{{Label: "Standard"}}

	t.Run("without a commit", func(t *testing.T) {
		info := assembleInfo(evalInfo, nil)
		require.Equal(t, []eval.InfoPair{{Label: "Stackbot"}, {Label: "Standard"}}, info)
	})

	t.Run("with a commit", func(t *testing.T) {
		info := assembleInfo(evalInfo, &commitStats{depth: 3, evaluation: 12.5, nodes: 420})
		require.Equal(t, []eval.InfoPair{
			{Label: "Stackbot"},
			{Label: "Standard"},
			{Label: "Depth", Value: "3"},
			{Label: "Evaluation"},
			{Value: "12.5"},
			{Label: "Nodes"},
			{Value: "420"},
		}, info)
	})
}

func TestLaunchValidatesOptions(t *testing.T) {
	options := testOptions()
	options.MinNodes = 10
	options.MaxNodes = 5

	require.Panics(t, func() {
		Launch(game.NewBoard(), options, eval.NewStandard())
	})
}
