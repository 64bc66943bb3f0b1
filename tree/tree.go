// Package tree implements the bot's decision structure: a tree of future move
// sequences grown one expansion at a time and consumed by committing to its
// best immediate child.
package tree

import (
	"sort"

	"golang.org/x/exp/rand"

	"stackbot/eval"
	"stackbot/game"
	"stackbot/moves"
)

// Config carries the search parameters the tree needs from the bot options.
type Config struct {
	Mode      moves.Mode
	UseHold   bool
	Speculate bool
}

// Child is one immediate continuation: the move that reaches it and the
// subtree rooted at the resulting state.
type Child struct {
	Hold bool
	Mv   moves.Move
	Tree *Tree
}

// Tree is a node of the decision structure. It owns its board snapshot and its
// entire subtree; nothing is shared between nodes.
type Tree struct {
	Board game.Board
	// Evaluation is this node's raw score plus the best path below it.
	Evaluation float64
	Depth      int

	rawEval  float64
	nodes    int
	expanded bool
	// children holds continuations when the next piece is known. When it is
	// unknown and speculation is on, speculation holds one branch per piece
	// the bag still allows; AddNextPiece collapses it to the revealed branch.
	children    []*Child
	speculation map[game.Piece][]*Child
	dead        bool
}

// deathEvaluation stands in for the evaluation of a branch with no surviving
// continuation.
const deathEvaluation = -1e5

// New roots a fresh tree at the given board.
func New(board game.Board, ev eval.Evaluator) *Tree {
	raw := ev.Score(&board, game.LockResult{})
	return &Tree{Board: board, rawEval: raw, Evaluation: raw}
}

// Nodes returns the number of nodes below the root.
func (t *Tree) Nodes() int {
	return t.nodes
}

// AddNextPiece threads a newly revealed piece through the whole tree,
// resolving any speculative layers it reaches. It reports whether every
// reachable future is now a losing one.
func (t *Tree) AddNextPiece(p game.Piece) bool {
	t.addPiece(p)
	return t.dead
}

func (t *Tree) addPiece(p game.Piece) {
	t.Board.AddNextPiece(p)

	switch {
	case t.speculation != nil:
		branch, ok := t.speculation[p]
		t.speculation = nil
		if !ok {
			// The revealed piece contradicts the bag the layer was built
			// from. Discard the layer; the node can re-expand normally.
			t.expanded = false
			t.nodes = 0
			return
		}
		t.children = branch
		t.refresh()
	case t.children != nil:
		for _, c := range t.children {
			if !c.Tree.dead {
				c.Tree.addPiece(p)
			}
		}
		t.refresh()
	}
}

// Extend grows the tree by one expansion: it descends to a leaf, favoring
// strong continuations, and expands it with every reachable placement. It
// reports whether no legal continuation remains anywhere.
func (t *Tree) Extend(cfg Config, ev eval.Evaluator) bool {
	if t.dead {
		return true
	}

	var path []*Tree
	cur := t
	for cur.expanded {
		child := cur.pickChild()
		if child == nil {
			break
		}
		path = append(path, cur)
		cur = child.Tree
	}
	if !cur.expanded {
		cur.expand(cfg, ev)
	}

	for i := len(path) - 1; i >= 0; i-- {
		path[i].refresh()
	}
	return t.dead
}

// TakeBestChild extracts the best immediate continuation, or reports not ready
// when the root has no resolved children yet. The returned child's subtree is
// the caller's; the rest of the tree is discarded with the receiver.
func (t *Tree) TakeBestChild() (*Child, bool) {
	for _, c := range t.children {
		if !c.Tree.dead {
			return c, true
		}
	}
	return nil, false
}

// pickChild selects a live child to descend into, biased toward the head of
// the evaluation-sorted slice. Speculative layers first pick a hypothetical
// piece uniformly.
func (t *Tree) pickChild() *Child {
	if t.speculation != nil {
		var branches [][]*Child
		for _, branch := range t.speculation {
			if len(live(branch)) > 0 {
				branches = append(branches, branch)
			}
		}
		if len(branches) == 0 {
			return nil
		}
		return pickFrom(branches[rand.Intn(len(branches))])
	}
	return pickFrom(t.children)
}

func pickFrom(children []*Child) *Child {
	candidates := live(children)
	if len(candidates) == 0 {
		return nil
	}
	r := rand.Float64()
	return candidates[int(r*r*float64(len(candidates)))]
}

func live(children []*Child) []*Child {
	alive := make([]*Child, 0, len(children))
	for _, c := range children {
		if !c.Tree.dead {
			alive = append(alive, c)
		}
	}
	return alive
}

func (t *Tree) expand(cfg Config, ev eval.Evaluator) {
	switch {
	case len(t.Board.Queue) > 0:
		t.children = expandBoard(t.Board, cfg, ev)
		t.expanded = true
	case cfg.Speculate:
		t.speculation = map[game.Piece][]*Child{}
		for _, p := range t.Board.Possibles().Pieces() {
			speculated := t.Board
			speculated.AddNextPiece(p)
			t.speculation[p] = expandBoard(speculated, cfg, ev)
		}
		t.expanded = true
	default:
		// Nothing is known about the next piece; growth resumes once the
		// host reveals it.
		return
	}
	t.refresh()
}

// expandBoard generates one child per reachable placement of the front-of-queue
// piece, plus the hold piece's placements when holding is allowed. Placements
// that lock out are not added.
func expandBoard(b game.Board, cfg Config, ev eval.Evaluator) []*Child {
	type variant struct {
		hold  bool
		piece game.Piece
	}

	current := b.Queue[0]
	variants := []variant{{false, current}}
	if cfg.UseHold {
		if b.HasHold && b.Hold != current {
			variants = append(variants, variant{true, b.Hold})
		} else if !b.HasHold && len(b.Queue) >= 2 && b.Queue[1] != current {
			variants = append(variants, variant{true, b.Queue[1]})
		}
	}

	var children []*Child
	for _, v := range variants {
		for _, mv := range moves.Find(&b, v.piece, cfg.Mode) {
			after := b
			lock := after.Apply(v.hold, mv.Location)
			if lock.Dead {
				continue
			}
			raw := ev.Score(&after, lock)
			children = append(children, &Child{
				Hold: v.hold,
				Mv:   mv,
				Tree: &Tree{Board: after, rawEval: raw, Evaluation: raw},
			})
		}
	}
	sortChildren(children)
	return children
}

// refresh recomputes this node's aggregate stats from its direct children:
// subtree size, accumulated evaluation, depth, death, and child order.
func (t *Tree) refresh() {
	if t.speculation != nil {
		total := 0
		sum := 0.0
		count := 0
		depth := 0
		anyLive := false
		for _, branch := range t.speculation {
			sortChildren(branch)
			for _, c := range branch {
				total += 1 + c.Tree.nodes
			}
			count++
			if best := firstLive(branch); best != nil {
				anyLive = true
				sum += best.Tree.Evaluation
				if d := best.Tree.Depth + 1; d > depth {
					depth = d
				}
			} else {
				sum += deathEvaluation
			}
		}
		t.nodes = total
		t.dead = !anyLive
		if count > 0 {
			t.Evaluation = t.rawEval + sum/float64(count)
		}
		t.Depth = depth
		return
	}

	total := 0
	for _, c := range t.children {
		total += 1 + c.Tree.nodes
	}
	t.nodes = total

	sortChildren(t.children)
	best := firstLive(t.children)
	if best == nil {
		t.dead = true
		t.Evaluation = t.rawEval + deathEvaluation
		return
	}
	t.Evaluation = t.rawEval + best.Tree.Evaluation
	t.Depth = best.Tree.Depth + 1
}

func firstLive(children []*Child) *Child {
	for _, c := range children {
		if !c.Tree.dead {
			return c
		}
	}
	return nil
}

func sortChildren(children []*Child) {
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i].Tree, children[j].Tree
		if a.dead != b.dead {
			return !a.dead
		}
		return a.Evaluation > b.Evaluation
	})
}
