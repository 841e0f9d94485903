package oriel

import (
	"fmt"
	"time"
)

// debugStats holds per-frame timing and draw-call metrics.
// Timings are only populated when Scene.debug is true.
type debugStats struct {
	traverseTime    time.Duration
	sortTime        time.Duration
	submitTime      time.Duration
	commandCount    int
	drawCallCount   int
	programSwitches int
}

// debugLog logs timing and draw-call stats at debug level.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	Logger().Debug("frame",
		"traverse", stats.traverseTime,
		"sort", stats.sortTime,
		"submit", stats.submitTime,
		"total", stats.traverseTime+stats.sortTime+stats.submitTime,
		"commands", stats.commandCount,
		"drawCalls", stats.drawCallCount,
		"programSwitches", stats.programSwitches,
	)
}

func debugEnabled() bool {
	return globalDebug
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used. Only called in debug mode; in release mode callers get ErrDisposed.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("oriel debug: %s on disposed node %q", op, n.Name))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("tree depth exceeds threshold",
			"node", n.Name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		Logger().Warn("child count exceeds threshold",
			"node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
