// Package bot runs the decision loop of an autonomous stacker-game player. A
// worker goroutine owns the search tree and alternates between servicing
// commands and growing it; the Interface is the host-facing handle.
package bot

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"stackbot/eval"
	"stackbot/game"
	"stackbot/moves"
)

// Options are the run parameters fixed at launch.
//
// MinNodes is the exploration the tree must exceed before a requested move may
// be committed; MaxNodes is the ceiling past which the worker stops growing
// the tree and only waits for commands.
type Options struct {
	Mode      moves.Mode
	UseHold   bool
	Speculate bool
	MinNodes  int
	MaxNodes  int
}

func DefaultOptions() Options {
	return Options{
		Mode:      moves.ModeZeroG,
		UseHold:   true,
		Speculate: true,
		MinNodes:  0,
		MaxNodes:  int(^uint(0) >> 1),
	}
}

// Move is a committed decision: whether to use hold, the inputs that reach the
// placement, and where the piece is expected to rest.
type Move struct {
	Hold             bool
	Inputs           []moves.Input
	ExpectedLocation game.Placement
}

type botMsg interface{ isBotMsg() }

type resetMsg struct {
	field game.Field
	b2b   bool
	combo int
}
type newPieceMsg struct{ piece game.Piece }
type nextMoveMsg struct{}
type prepareNextMoveMsg struct{}

func (resetMsg) isBotMsg()           {}
func (newPieceMsg) isBotMsg()        {}
func (nextMoveMsg) isBotMsg()        {}
func (prepareNextMoveMsg) isBotMsg() {}

type botResult interface{ isBotResult() }

type moveResult struct{ mv Move }
type infoResult struct{ info []eval.InfoPair }

func (moveResult) isBotResult() {}
func (infoResult) isBotResult() {}

// Interface is the host-side handle to a bot worker. It is not safe for use
// from multiple goroutines at once.
type Interface struct {
	send   chan<- botMsg
	recv   <-chan botResult
	done   <-chan struct{}
	dead   bool
	closed bool
	mv     *Move
}

// Launch starts a bot worker seeded from the given board and returns its
// handle immediately. Panics if options.MinNodes > options.MaxNodes; that is a
// caller error, not a runtime fault.
func Launch(board game.Board, options Options, evaluator eval.Evaluator) *Interface {
	if options.MinNodes > options.MaxNodes {
		panic(fmt.Sprintf("bot: MinNodes %d exceeds MaxNodes %d", options.MinNodes, options.MaxNodes))
	}

	msgs := make(chan botMsg, 64)
	results := make(chan botResult, 64)
	done := make(chan struct{})
	go run(msgs, results, done, board, evaluator, options)

	log.Debug().Msgf("bot launched: %+v", options)
	return &Interface{send: msgs, recv: results, done: done}
}

// RequestNextMove asks the worker to commit to a move as soon as its
// exploration floor is met. The move surfaces later through PollNextMove.
func (i *Interface) RequestNextMove() {
	i.sendMsg(nextMoveMsg{})
}

// PrepareNextMove hints that a move request is imminent. Reserved; currently
// has no scheduling effect.
func (i *Interface) PrepareNextMove() {
	i.sendMsg(prepareNextMoveMsg{})
}

// AddNextPiece appends a newly revealed piece to the known queue. With
// speculation enabled the piece must be consistent with the 7-bag implied by
// the pieces already added.
func (i *Interface) AddNextPiece(piece game.Piece) {
	i.sendMsg(newPieceMsg{piece: piece})
}

// Reset replaces the playfield, back-to-back state, and combo count, throwing
// away all accumulated exploration. Any outstanding move request is answered
// against the new field, never the old one.
func (i *Interface) Reset(field game.Field, b2bActive bool, combo int) {
	i.sendMsg(resetMsg{field: field, b2b: b2bActive, combo: combo})
}

// PollNextMove drains pending results and returns the most recent committed
// move, if any. A second call without intervening worker activity reports no
// move.
func (i *Interface) PollNextMove() (Move, bool) {
	i.poll()
	if i.mv == nil {
		return Move{}, false
	}
	mv := *i.mv
	i.mv = nil
	return mv, true
}

// IsDead reports whether the worker is known to have exited. Once true it
// never reverts.
func (i *Interface) IsDead() bool {
	return i.dead
}

// Close signals the worker to shut down. The handle is dead afterwards.
func (i *Interface) Close() {
	if i.closed {
		return
	}
	i.closed = true
	i.dead = true
	close(i.send)
}

func (i *Interface) sendMsg(m botMsg) {
	if i.dead {
		return
	}
	select {
	case i.send <- m:
	case <-i.done:
		i.dead = true
	}
}

func (i *Interface) poll() {
	if i.dead {
		return
	}
	for {
		select {
		case r, ok := <-i.recv:
			if !ok {
				i.dead = true
				return
			}
			switch r := r.(type) {
			case moveResult:
				mv := r.mv
				i.mv = &mv
			case infoResult:
				// Diagnostics are not surfaced to the host yet.
			}
		default:
			return
		}
	}
}
