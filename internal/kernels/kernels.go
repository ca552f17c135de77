// Package kernels implements the eight analytical reductions the worker
// pool executes against the Dataset. Each kernel is a pure function:
// (Dataset, parameters) -> JSON string, with no side effects, grounded
// on the original data_ingestor.rs and generalized per spec.md §4.2.
package kernels

import (
	"sort"

	"nutristats/internal/dataset"
)

// statesMeanMap computes mean(Data_Value) grouped by location for rows
// matching question.
func statesMeanMap(ds *dataset.Dataset, question string) map[string]float64 {
	agg := make(map[string]*runningMean)
	for _, row := range ds.Rows() {
		if row.Question != question {
			continue
		}
		a, ok := agg[row.Location]
		if !ok {
			a = &runningMean{}
			agg[row.Location] = a
		}
		a.add(float64(row.Value))
	}
	out := make(map[string]float64, len(agg))
	for state, a := range agg {
		out[state] = a.value()
	}
	return out
}

// StatesMean emits {state: mean(values)} for every state with at least
// one matching row. Empty object when nothing matches.
func StatesMean(ds *dataset.Dataset, question string) string {
	return mustJSON(statesMeanMap(ds, question))
}

// StateMean emits {state: mean(values)} restricted to one state.
// Empty string when no rows match, per spec.md §4.2.2.
func StateMean(ds *dataset.Dataset, question, state string) string {
	var acc runningMean
	for _, row := range ds.Rows() {
		if row.Question == question && row.Location == state {
			acc.add(float64(row.Value))
		}
	}
	if acc.count() == 0 {
		return ""
	}
	return mustJSON(map[string]float64{state: acc.value()})
}

type rankEntry struct {
	state string
	mean  float64
}

// rankKernel emits the first five states of question ranked best-first
// (wantBest true) or worst-first (wantBest false). A question absent from
// both catalogs yields the catalog error; a catalog question with no
// matching rows yields the no-data error.
func rankKernel(ds *dataset.Dataset, question string, wantBest bool) string {
	orient := questionOrientation(question)
	if orient == unranked {
		return `{"error":"Question not found in predefined lists"}`
	}

	means := statesMeanMap(ds, question)
	if len(means) == 0 {
		return `{"error":"No data available for the given question"}`
	}

	ascending := (orient == minimiseIsBest) == wantBest

	entries := make([]rankEntry, 0, len(means))
	for state, mean := range means {
		entries = append(entries, rankEntry{state, mean})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].mean == entries[j].mean {
			return entries[i].state < entries[j].state
		}
		if ascending {
			return entries[i].mean < entries[j].mean
		}
		return entries[i].mean > entries[j].mean
	})

	n := 5
	if len(entries) < n {
		n = len(entries)
	}
	pairs := make([]kv, 0, n)
	for _, e := range entries[:n] {
		pairs = append(pairs, kv{e.state, e.mean})
	}
	return marshalOrdered(pairs)
}

// Best5 emits the 5 best-performing states for question, ordered from
// best to worst. "Best" means ascending order for minimise-is-best
// questions, descending for maximise-is-best.
func Best5(ds *dataset.Dataset, question string) string {
	return rankKernel(ds, question, true)
}

// Worst5 emits the 5 worst-performing states for question, the inverse
// ordering of Best5.
func Worst5(ds *dataset.Dataset, question string) string {
	return rankKernel(ds, question, false)
}

// GlobalMean emits {"global_mean": mean} over all matching rows, or
// {"global_mean": null} when nothing matches.
func GlobalMean(ds *dataset.Dataset, question string) string {
	var acc runningMean
	for _, row := range ds.Rows() {
		if row.Question == question {
			acc.add(float64(row.Value))
		}
	}
	if acc.count() == 0 {
		return `{"global_mean":null}`
	}
	return mustJSON(map[string]float64{"global_mean": acc.value()})
}

// DiffFromMean emits {state: global_mean - state_mean}, ordered by diff
// ascending.
func DiffFromMean(ds *dataset.Dataset, question string) string {
	var acc runningMean
	for _, row := range ds.Rows() {
		if row.Question == question {
			acc.add(float64(row.Value))
		}
	}
	if acc.count() == 0 {
		return "{}"
	}
	globalMean := acc.value()
	means := statesMeanMap(ds, question)

	type diffEntry struct {
		state string
		diff  float64
	}
	entries := make([]diffEntry, 0, len(means))
	for state, mean := range means {
		entries = append(entries, diffEntry{state, globalMean - mean})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].diff == entries[j].diff {
			return entries[i].state < entries[j].state
		}
		return entries[i].diff < entries[j].diff
	})

	pairs := make([]kv, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, kv{e.state, e.diff})
	}
	return marshalOrdered(pairs)
}

type categoryKey struct {
	location string
	category string
	stratum  string
}

// MeanByCategory groups matching rows by (location, category, stratum),
// skipping rows with empty category or stratum, and emits {triple:
// mean}. Ordered by category priority, then intra-category order, then
// location (spec.md §9, open question (a): the priority tables are
// applied here, not left dormant as in the original source).
func MeanByCategory(ds *dataset.Dataset, question string) string {
	agg := make(map[categoryKey]*runningMean)
	for _, row := range ds.Rows() {
		if row.Question != question {
			continue
		}
		if row.Category == "" || row.Stratum == "" {
			continue
		}
		key := categoryKey{row.Location, row.Category, row.Stratum}
		a, ok := agg[key]
		if !ok {
			a = &runningMean{}
			agg[key] = a
		}
		a.add(float64(row.Value))
	}
	if len(agg) == 0 {
		return "{}"
	}

	keys := make([]categoryKey, 0, len(agg))
	for k := range agg {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return lessCategoryKey(keys[i], keys[j])
	})

	pairs := make([]kv, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, kv{categoryTupleKey(k.location, k.category, k.stratum), agg[k].value()})
	}
	return marshalOrdered(pairs)
}

func lessCategoryKey(a, b categoryKey) bool {
	pa, pb := categoryPriority(a.category), categoryPriority(b.category)
	if pa != pb {
		return pa < pb
	}
	sa, sb := stratumPriority(a.category, a.stratum), stratumPriority(b.category, b.stratum)
	if sa != sb {
		return sa < sb
	}
	if a.stratum != b.stratum {
		return a.stratum < b.stratum
	}
	return a.location < b.location
}

func categoryTupleKey(location, category, stratum string) string {
	return location + " - (" + category + ", " + stratum + ")"
}

// StateMeanByCategory groups rows matching question and state by
// (category, stratum), skipping rows with empty category or stratum.
// Emits {"error": ...} when nothing matches.
func StateMeanByCategory(ds *dataset.Dataset, question, state string) string {
	type catKey struct {
		category string
		stratum  string
	}
	agg := make(map[catKey]*runningMean)
	for _, row := range ds.Rows() {
		if row.Question != question || row.Location != state {
			continue
		}
		if row.Category == "" || row.Stratum == "" {
			continue
		}
		key := catKey{row.Category, row.Stratum}
		a, ok := agg[key]
		if !ok {
			a = &runningMean{}
			agg[key] = a
		}
		a.add(float64(row.Value))
	}
	if len(agg) == 0 {
		return `{"error":"No data available for the given question"}`
	}

	keys := make([]catKey, 0, len(agg))
	for k := range agg {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return lessCategoryKey(
			categoryKey{category: keys[i].category, stratum: keys[i].stratum},
			categoryKey{category: keys[j].category, stratum: keys[j].stratum},
		)
	})

	pairs := make([]kv, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, kv{k.category + ", " + k.stratum, agg[k].value()})
	}
	return marshalOrdered(pairs)
}
