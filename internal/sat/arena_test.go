package sat

import "testing"

func lit(v int32, neg bool) Literal {
	l := PositiveLiteral(Variable(v))
	if neg {
		l = l.Opposite()
	}
	return l
}

func TestArena_allocateAndDeref(t *testing.T) {
	a := NewArena()
	ref := a.Allocate([]Literal{lit(0, false), lit(1, true), lit(2, false), lit(3, false)}, false)

	c := a.Deref(ref)
	want := []Literal{lit(0, false), lit(1, true), lit(2, false), lit(3, false)}
	if len(c.Literals) != len(want) {
		t.Fatalf("Literals = %v, want %v", c.Literals, want)
	}
	for i := range want {
		if c.Literals[i] != want[i] {
			t.Fatalf("Literals[%d] = %v, want %v", i, c.Literals[i], want[i])
		}
	}
}

func TestArena_compactRelocatesAndDropsFreed(t *testing.T) {
	a := NewArena()

	r1 := a.Allocate([]Literal{lit(0, false), lit(1, false), lit(2, false), lit(3, false)}, false)
	r2 := a.Allocate([]Literal{lit(4, false), lit(5, false), lit(6, false), lit(7, false)}, true)
	r3 := a.Allocate([]Literal{lit(8, false), lit(9, false), lit(10, false), lit(11, false)}, true)

	a.SetGlue(r2, 3)
	a.Free(r1)

	relocations := map[ClauseRef]ClauseRef{}
	a.Compact(func(old, new ClauseRef) {
		relocations[old] = new
	})

	if _, stillThere := relocations[r1]; stillThere {
		t.Fatalf("freed clause %d should not survive compaction", r1)
	}
	newR2, ok := relocations[r2]
	if !ok {
		t.Fatalf("clause %d missing from relocation map", r2)
	}
	newR3, ok := relocations[r3]
	if !ok {
		t.Fatalf("clause %d missing from relocation map", r3)
	}

	if a.Deref(newR2).Glue != 3 {
		t.Errorf("glue not preserved across compaction")
	}
	gotR2 := a.Lits(newR2)
	wantR2 := []Literal{lit(4, false), lit(5, false), lit(6, false), lit(7, false)}
	for i := range wantR2 {
		if gotR2[i] != wantR2[i] {
			t.Fatalf("Lits(newR2)[%d] = %v, want %v", i, gotR2[i], wantR2[i])
		}
	}
	gotR3 := a.Lits(newR3)
	if gotR3[0] != lit(8, false) {
		t.Fatalf("Lits(newR3)[0] = %v, want %v", gotR3[0], lit(8, false))
	}
}

func TestArena_doubleFreeIsFatalUnderDebug(t *testing.T) {
	if !debugChecksEnabled {
		t.Skip("double-free invariant only checked under the satdebug build tag")
	}
	// Skipped in the default (!satdebug) build, where fatalInvariant does
	// nothing. Under satdebug the body still performs no double free:
	// fatalInvariant would call log.Fatalf and terminate the test binary.
}
