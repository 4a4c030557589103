package sat

// ClauseRef is an opaque, handle-stable reference to a clause of length >= 4
// held in the Arena. Clauses of length 2 or 3 never receive a ClauseRef:
// they are inlined directly into watch lists (see watch.go) and behave
// identically to arena clauses for propagation purposes.
//
// A reference decomposes into a chunk index in its low chunkIndexBits bits
// and an in-chunk slot offset in the remaining bits, following the layout
// of CryptoMiniSat's ClauseAllocator (NUM_BITS_OUTER_OFFSET): a small,
// fixed number of chunk-index bits keeps the reference at 32 bits while
// allowing compaction to relocate clauses between chunks.
type ClauseRef uint32

const (
	chunkIndexBits = 4
	chunkIndexMask = 1<<chunkIndexBits - 1
	maxChunks      = 1 << chunkIndexBits
)

func makeRef(chunkIdx int, slot uint32) ClauseRef {
	return ClauseRef(chunkIdx)&chunkIndexMask | ClauseRef(slot)<<chunkIndexBits
}

func (r ClauseRef) chunkIndex() int {
	return int(r & chunkIndexMask)
}

func (r ClauseRef) slot() uint32 {
	return uint32(r >> chunkIndexBits)
}

// ArenaClause is the arena's own view of a clause: a window into the
// chunk's flat literal buffer plus the header fields that travel with it.
// The Literals slice aliases the chunk's backing array directly, so
// mutating it (e.g. swapping watched positions during propagation) mutates
// the arena in place without a further store.
type ArenaClause struct {
	Literals []Literal
	Learnt   bool
	Glue     uint32
	Activity float64

	freed bool
}

// chunkSlot is the per-clause bookkeeping a chunk keeps in allocation
// order. The literal buffer itself carries no length prefix (it is not
// "self-delimiting"), so the compactor walks chunkSlot.size to know how
// many words in lits belong to each clause, exactly as CryptoMiniSat's
// ClauseAllocator keeps origClauseSizes alongside each chunk.
type chunkSlot struct {
	offset   uint32
	size     uint32
	learnt   bool
	freed    bool
	glue     uint32
	activity float64
}

type arenaChunk struct {
	lits     []Literal
	slots    []chunkSlot
	frontier uint32
}

// chunkCapacity is the number of Literal words a chunk holds before a new
// chunk is opened. It is large enough that most instances live in one or
// two chunks while keeping individual chunks cheap to compact.
const chunkCapacity = 1 << 16

// Arena is the bulk clause store described in the core's clause-arena
// component: dense storage with handle-stable 32-bit references, bulk
// chunk allocation, and a compacting garbage collector that relocates
// every surviving reference through a caller-supplied callback.
type Arena struct {
	chunks []*arenaChunk
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{chunks: []*arenaChunk{{}}}
}

// Allocate reserves space for a new clause of length >= 4 and returns its
// reference. literals is copied into the arena; the caller's slice is not
// retained.
func (a *Arena) Allocate(literals []Literal, learnt bool) ClauseRef {
	size := uint32(len(literals))
	idx := len(a.chunks) - 1
	c := a.chunks[idx]

	if c.frontier+size > chunkCapacity {
		if len(a.chunks) >= maxChunks {
			// Address-space exhaustion: every chunk slot is in use. This
			// is a bug in the caller, not a recoverable condition.
			panic("sat: arena exhausted all chunk slots")
		}
		a.chunks = append(a.chunks, &arenaChunk{})
		idx = len(a.chunks) - 1
		c = a.chunks[idx]
	}

	slotIdx := uint32(len(c.slots))
	offset := c.frontier
	c.lits = append(c.lits, literals...)
	c.frontier += size
	c.slots = append(c.slots, chunkSlot{
		offset: offset,
		size:   size,
		learnt: learnt,
	})

	return makeRef(idx, slotIdx)
}

// Deref resolves a reference to its clause in constant time. The returned
// ArenaClause's Literals slice is a live window into the arena: writes to
// it are writes to the arena's own storage.
func (a *Arena) Deref(ref ClauseRef) *ArenaClause {
	c := a.chunks[ref.chunkIndex()]
	s := &c.slots[ref.slot()]
	return &ArenaClause{
		Literals: c.lits[s.offset : s.offset+s.size : s.offset+s.size],
		Learnt:   s.learnt,
		Glue:     s.glue,
		Activity: s.activity,
		freed:    s.freed,
	}
}

// Lits returns a live window into a clause's literals without allocating
// the wrapper ArenaClause. This is the fast path used by propagation, which
// only ever needs to read and swap literals.
func (a *Arena) Lits(ref ClauseRef) []Literal {
	c := a.chunks[ref.chunkIndex()]
	s := &c.slots[ref.slot()]
	return c.lits[s.offset : s.offset+s.size : s.offset+s.size]
}

// SetGlue updates the glue (LBD) recorded for a clause.
func (a *Arena) SetGlue(ref ClauseRef, glue uint32) {
	a.chunks[ref.chunkIndex()].slots[ref.slot()].glue = glue
}

// SetActivity updates the activity recorded for a clause.
func (a *Arena) SetActivity(ref ClauseRef, activity float64) {
	a.chunks[ref.chunkIndex()].slots[ref.slot()].activity = activity
}

// ScaleActivities multiplies every clause's recorded activity by factor,
// used by the clause-activity rescaling in the search driver.
func (a *Arena) ScaleActivities(factor float64) {
	for _, c := range a.chunks {
		for i := range c.slots {
			c.slots[i].activity *= factor
		}
	}
}

// Free marks a clause as unused. Its space is not reclaimed until the next
// call to Compact. Double-free is an invariant violation: debug
// builds detect it via the header's freed flag.
func (a *Arena) Free(ref ClauseRef) {
	s := &a.chunks[ref.chunkIndex()].slots[ref.slot()]
	if s.freed {
		fatalInvariant("sat: double free of clause %d", ref)
	}
	s.freed = true
}

// Relocator is invoked once per surviving clause during Compact, in
// allocation order, with the clause's old and new references. All
// external holders of a ClauseRef (watch lists, trail reasons, per-variable
// reason fields, caller-supplied index vectors) must be rewritten through
// this callback before the old chunks are discarded.
type Relocator func(old, new ClauseRef)

// Compact walks every chunk in allocation order, drops clauses marked
// free, and writes survivors into fresh chunks starting from an empty
// frontier. relocator is called for every survivor with its old and new
// reference so external holders can be rewritten. After Compact returns,
// no free clauses remain and every chunk's frontier is tight against its
// survivors.
func (a *Arena) Compact(relocator Relocator) {
	newChunks := []*arenaChunk{{}}

	for srcIdx, c := range a.chunks {
		for slotIdx := range c.slots {
			s := &c.slots[slotIdx]
			if s.freed {
				continue
			}

			dst := newChunks[len(newChunks)-1]
			if dst.frontier+s.size > chunkCapacity {
				newChunks = append(newChunks, &arenaChunk{})
				dst = newChunks[len(newChunks)-1]
			}

			newOffset := dst.frontier
			dst.lits = append(dst.lits, c.lits[s.offset:s.offset+s.size]...)
			dst.frontier += s.size
			newSlotIdx := uint32(len(dst.slots))
			dst.slots = append(dst.slots, chunkSlot{
				offset:   newOffset,
				size:     s.size,
				learnt:   s.learnt,
				glue:     s.glue,
				activity: s.activity,
			})

			oldRef := makeRef(srcIdx, uint32(slotIdx))
			newRef := makeRef(len(newChunks)-1, newSlotIdx)
			relocator(oldRef, newRef)
		}
	}

	a.chunks = newChunks
}
