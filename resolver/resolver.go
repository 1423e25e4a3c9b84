// Package resolver implements the Dependency Resolver (spec.md §4.1): it
// turns a block's work reports plus the carried pending queue into an
// ordered list of immediately accumulatable reports and a residual queue
// to persist.
package resolver

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/jamzig/accumulate/internal/telemetry"
	"github.com/jamzig/accumulate/state"
	"github.com/jamzig/accumulate/types"
)

// Result is the resolver's output: the ordered, ready-to-run reports and
// the residual pending items to write back into theta.
type Result struct {
	Accumulatable []types.WorkReport
	Residual      []state.WorkReportAndDeps
}

// Resolve runs the full partition/filter/promote pipeline of spec.md §4.1.
// xi is the history ring, theta the carried pending queue, reports the
// block's reports, and slot the current in-epoch slot theta is walked
// from.
func Resolve(xi *state.Xi, theta *state.Theta, reports []types.WorkReport, slot int, log telemetry.Logger) Result {
	if log == nil {
		log = telemetry.NewDiscardLogger()
	}

	var immediate []types.WorkReport
	var queued []state.WorkReportAndDeps

	for _, r := range reports {
		if r.IsImmediatelyAccumulatable() {
			immediate = append(immediate, r)
			continue
		}
		remaining := make(map[types.Hash]struct{}, len(r.Context.Prerequisites))
		for _, h := range r.Context.Prerequisites {
			remaining[h] = struct{}{}
		}
		queued = append(queued, state.WorkReportAndDeps{Report: r, Remaining: remaining})
	}

	queued = filterAgainstHistory(xi, queued)

	queue := theta.WalkFrom(slot)
	queue = append(queue, queued...)

	resolved := mapset.NewThreadUnsafeSet[types.Hash]()
	for _, r := range immediate {
		resolved.Add(r.PackageHash())
	}
	queue = processQueueUpdates(queue, resolved)

	accumulatable := append([]types.WorkReport(nil), immediate...)

	for {
		var freed []state.WorkReportAndDeps
		var rest []state.WorkReportAndDeps
		for _, item := range queue {
			if len(item.Remaining) == 0 {
				freed = append(freed, item)
			} else {
				rest = append(rest, item)
			}
		}
		if len(freed) == 0 {
			queue = rest
			break
		}
		for _, item := range freed {
			accumulatable = append(accumulatable, item.Report)
			resolved.Add(item.Report.PackageHash())
		}
		queue = processQueueUpdates(rest, resolved)
	}

	log.Debug("resolved reports", telemetry.Fields{
		"accumulatable": len(accumulatable),
		"residual":      len(queue),
	})

	return Result{Accumulatable: accumulatable, Residual: queue}
}

// filterAgainstHistory drops items already accumulated (their package hash
// is in xi) and clears any prerequisite already present in xi from the
// remaining items (spec.md §4.1 "Filter against history").
func filterAgainstHistory(xi *state.Xi, items []state.WorkReportAndDeps) []state.WorkReportAndDeps {
	out := make([]state.WorkReportAndDeps, 0, len(items))
	for _, item := range items {
		if xi.ContainsWorkPackage(item.Hash()) {
			continue
		}
		for h := range item.Remaining {
			if xi.ContainsWorkPackage(h) {
				delete(item.Remaining, h)
			}
		}
		out = append(out, item)
	}
	return out
}

// processQueueUpdates implements spec.md §4.1's `process_queue_updates`:
// drop items whose own hash is now resolved, and clear resolved hashes
// from the remaining items of everything else.
func processQueueUpdates(items []state.WorkReportAndDeps, resolved mapset.Set[types.Hash]) []state.WorkReportAndDeps {
	out := make([]state.WorkReportAndDeps, 0, len(items))
	for _, item := range items {
		if resolved.Contains(item.Hash()) {
			continue
		}
		for h := range item.Remaining {
			if resolved.Contains(h) {
				delete(item.Remaining, h)
			}
		}
		out = append(out, item)
	}
	return out
}
