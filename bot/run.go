package bot

import (
	"github.com/rs/zerolog/log"

	"stackbot/eval"
	"stackbot/game"
	"stackbot/tree"
)

// run is the worker loop. Each iteration takes a command (without waiting
// while the tree is under its node ceiling, blocking once it is over),
// applies it, attempts a deferred commit, then grows the tree by one unit.
// The loop exits when the command channel closes, when the tree reports every
// future lost, or when the host stops consuming results.
func run(msgs <-chan botMsg, results chan<- botResult, done chan<- struct{}, board game.Board, evaluator eval.Evaluator, options Options) {
	defer close(done)
	defer close(results)

	trySend(results, infoResult{info: assembleInfo(evaluator.Info(), nil)})

	cfg := tree.Config{
		Mode:      options.Mode,
		UseHold:   options.UseHold,
		Speculate: options.Speculate,
	}
	t := tree.New(board, evaluator)
	commitRequested := false

	for {
		var msg botMsg
		if t.Nodes() < options.MaxNodes {
			select {
			case m, ok := <-msgs:
				if !ok {
					log.Debug().Msg("bot: command channel closed, shutting down")
					return
				}
				msg = m
			default:
			}
		} else {
			m, ok := <-msgs
			if !ok {
				log.Debug().Msg("bot: command channel closed, shutting down")
				return
			}
			msg = m
		}

		switch m := msg.(type) {
		case newPieceMsg:
			if t.AddNextPiece(m.piece) {
				log.Debug().Msg("bot: every future is lost, shutting down")
				return
			}
		case resetMsg:
			b := t.Board
			b.SetField(m.field)
			b.B2B = m.b2b
			b.Combo = m.combo
			t = tree.New(b, evaluator)
		case nextMoveMsg:
			commitRequested = true
		case prepareNextMoveMsg:
			// Reserved.
		}

		if commitRequested && t.Nodes() > options.MinNodes {
			considered := t.Nodes()
			if child, ok := t.TakeBestChild(); ok {
				commitRequested = false
				mv := Move{
					Hold:             child.Hold,
					Inputs:           child.Mv.Inputs,
					ExpectedLocation: child.Mv.Location,
				}
				stats := &commitStats{
					depth:      child.Tree.Depth,
					evaluation: child.Tree.Evaluation,
					nodes:      considered,
				}
				if !trySend(results, moveResult{mv: mv}) {
					return
				}
				if !trySend(results, infoResult{info: assembleInfo(evaluator.Info(), stats)}) {
					return
				}
				t = child.Tree
			}
		}

		if t.Nodes() < options.MaxNodes && t.Board.QueueLen() > 0 {
			if t.Extend(cfg, evaluator) {
				log.Debug().Msg("bot: no continuation survives, shutting down")
				return
			}
		}
	}
}

// trySend never blocks: a full result buffer means nobody is consuming moves,
// which the caller treats as a termination signal.
func trySend(results chan<- botResult, r botResult) bool {
	select {
	case results <- r:
		return true
	default:
		return false
	}
}
