// Package tracker classifies the tasks of a fixed DAG as ready or blocked
// and updates the classification incrementally as completions are reported.
package tracker

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gyaneshwarpardhi/nodeflow/internal/graph"
)

// TaskID is an opaque task identifier.
type TaskID string

// ErrNotPending reports a completion for a task that is not currently
// tracked: already completed, or never part of the snapshot.
var ErrNotPending = errors.New("task is not pending")

// Tracker maintains, per pending task, the set of predecessors whose
// completion it still awaits. It is constructed once from a topology
// snapshot and never re-reads the source graph. Not safe for concurrent
// use; callers serialize behind a single writer.
type Tracker struct {
	outstanding map[TaskID]map[TaskID]struct{}
}

// New builds a Tracker from an explicit dependency map: task id → direct
// predecessors. Every key becomes a tracked task.
func New(deps map[TaskID][]TaskID) *Tracker {
	t := &Tracker{outstanding: make(map[TaskID]map[TaskID]struct{}, len(deps))}
	for id, preds := range deps {
		set := make(map[TaskID]struct{}, len(preds))
		for _, p := range preds {
			set[p] = struct{}{}
		}
		t.outstanding[id] = set
	}
	return t
}

// FromGraph snapshots the node/edge shape of g: one task per node, with the
// node's predecessors as its dependency set. Values are ignored; the
// tracker evolves independently of the graph afterwards.
func FromGraph(g *graph.Graph) *Tracker {
	deps := make(map[TaskID][]TaskID)
	for _, id := range g.NodeIDs() {
		preds := g.Predecessors(id)
		ps := make([]TaskID, 0, len(preds))
		for _, p := range preds {
			ps = append(ps, TaskID(p))
		}
		deps[TaskID(id)] = ps
	}
	return New(deps)
}

// Ready returns all tracked tasks with no outstanding predecessors, sorted.
func (t *Tracker) Ready() []TaskID {
	var out []TaskID
	for id, preds := range t.outstanding {
		if len(preds) == 0 {
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}

// Blocked returns all tracked tasks still awaiting predecessors, sorted.
func (t *Tracker) Blocked() []TaskID {
	var out []TaskID
	for id, preds := range t.outstanding {
		if len(preds) > 0 {
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}

// Pending returns the number of tasks still tracked.
func (t *Tracker) Pending() int { return len(t.outstanding) }

// Complete removes id from the tracked universe and from every remaining
// task's predecessor set. It returns exactly the tasks whose predecessor
// set became empty as a direct result of this call — the only signal that
// distinguishes "just became ready" from "was already ready".
func (t *Tracker) Complete(id TaskID) ([]TaskID, error) {
	if _, ok := t.outstanding[id]; !ok {
		return nil, fmt.Errorf("complete %s: %w", id, ErrNotPending)
	}
	delete(t.outstanding, id)

	var newlyReady []TaskID
	for task, preds := range t.outstanding {
		if _, ok := preds[id]; ok {
			delete(preds, id)
			if len(preds) == 0 {
				newlyReady = append(newlyReady, task)
			}
		}
	}
	sortIDs(newlyReady)
	return newlyReady, nil
}

func sortIDs(ids []TaskID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
