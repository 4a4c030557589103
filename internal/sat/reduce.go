package sat

import "sort"

// sortLearntsByQuality orders refs so the clauses ReduceDB should prefer to
// keep come first: lower glue (fewer distinct decision levels, a cheap
// proxy for how broadly useful a learnt clause is) first, ties broken by
// higher activity (recently involved in conflict analysis).
func sortLearntsByQuality(arena *Arena, refs []ClauseRef) {
	sort.Slice(refs, func(i, j int) bool {
		ci, cj := arena.Deref(refs[i]), arena.Deref(refs[j])
		if ci.Glue != cj.Glue {
			return ci.Glue < cj.Glue
		}
		return ci.Activity > cj.Activity
	})
}
