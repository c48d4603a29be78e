package emit

import (
	"fmt"

	"github.com/quanta-lang/quantac/internal/ir"
)

// newTrackerSlot implements spec.md §4.3 step 1: in the function's entry
// block, allocate a pointer-typed stack slot initialized to null. The slot
// is allocated in the entry block even when the call site lowering a
// heap-returning expression is deep inside an if/loop body, by temporarily
// switching the insertion point — the same "scoped acquisition, guaranteed
// restoration" discipline the parser's import sub-parser uses around the
// lexer state (internal/parser/parser.go's parseImport).
func (e *Emitter) newTrackerSlot() ir.Value {
	saved := e.curBlock
	e.setBlock(e.entry)
	slot := e.sink.Alloca(e.sink.PointerType(), fmt.Sprintf("trk%d", e.trackerSeq))
	e.trackerSeq++
	e.sink.Store(slot, e.sink.ConstNullPtr())
	e.setBlock(saved)
	e.tracker = append(e.tracker, slot)
	return slot
}

// track records ptr into a fresh tracker slot and returns the slot's
// current value (ptr itself), per spec.md §4.3 steps 2-3: "storing the
// fresh heap pointer into that slot at the allocation site."
func (e *Emitter) track(ptr ir.Value) ir.Value {
	slot := e.newTrackerSlot()
	e.sink.Store(slot, ptr)
	return ptr
}

// sweepTracker implements spec.md §4.3's exit-path free sweep: load each
// tracker slot and free it, except that when exclude is non-nil (the value
// a `return` is about to hand back), any slot whose current pointer matches
// exclude is masked out via a select-against-null first, so the returned
// buffer survives (the spec's double-free/leak-safety guarantee). Visits
// slots in allocation order, per spec.md §5's ordering guarantee.
func (e *Emitter) sweepTracker(exclude ir.Value) {
	free, _ := e.shim.Func("free")
	for _, slot := range e.tracker {
		cur := e.sink.Load(e.sink.PointerType(), slot)
		toFree := cur
		if exclude != nil {
			isSame := e.sink.Cmp(ir.CmpEq, false, cur, exclude)
			toFree = e.sink.Select(isSame, e.sink.ConstNullPtr(), cur)
		}
		e.sink.Call(free, []ir.Value{toFree})
	}
}
