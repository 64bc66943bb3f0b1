package bot

import (
	"strconv"

	"stackbot/eval"
)

type commitStats struct {
	depth      int
	evaluation float64
	nodes      int
}

// assembleInfo builds the ordered diagnostic lines for a BotInfo result: the
// bot name, the evaluator's self-report, and, after a commit, the committed
// branch's depth, evaluation, and the node count that was considered. Purely
// cosmetic; scheduling never depends on it.
func assembleInfo(evalInfo []eval.InfoPair, commit *commitStats) []eval.InfoPair {
	info := make([]eval.InfoPair, 0, len(evalInfo)+6)
	info = append(info, eval.InfoPair{Label: "Stackbot"})
	info = append(info, evalInfo...)
	if commit != nil {
		info = append(info,
			eval.InfoPair{Label: "Depth", Value: strconv.Itoa(commit.depth)},
			eval.InfoPair{Label: "Evaluation"},
			eval.InfoPair{Value: strconv.FormatFloat(commit.evaluation, 'f', 1, 64)},
			eval.InfoPair{Label: "Nodes"},
			eval.InfoPair{Value: strconv.Itoa(commit.nodes)},
		)
	}
	return info
}
