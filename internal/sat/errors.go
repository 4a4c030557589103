package sat

import (
	"fmt"
	"log"
)

// fatalInvariant reports a broken core invariant (double-free, dangling
// reference, a watch-list invariant violated). These are bugs, not
// recoverable errors: the core never surfaces them through a return value.
// Debug builds (build tag satdebug) abort with a diagnostic; release
// builds fall through with undefined behavior rather than pay the check's
// cost on every call.
func fatalInvariant(format string, args ...any) {
	if !debugChecksEnabled {
		return
	}
	log.Fatalf("sat: invariant violation: "+format, args...)
}

// errContradiction describes a clause that is trivially falsified at the
// root level. AddClause does not return it: it reports that case through
// its ok result alone (signaled, not fatal; the caller decides whether to
// continue).
type errContradiction struct {
	clause []Literal
}

func (e *errContradiction) Error() string {
	return fmt.Sprintf("sat: clause %v is trivially falsified at level 0", e.clause)
}
