package ember

import "github.com/google/uuid"

// TextureHandle identifies a loaded texture resource. The UUID is a
// stable, reload-safe key (mirrors the teacher's AssetId(uuid.NewString())
// pattern) independent of the bindless slot it's currently assigned — a
// slot stays fixed until Release, and a re-acquired handle may get a
// different slot; the handle itself never changes.
type TextureHandle struct {
	id uuid.UUID
}

func NewTextureHandle() TextureHandle {
	return TextureHandle{id: uuid.New()}
}

func (h TextureHandle) IsZero() bool { return h.id == uuid.Nil }
func (h TextureHandle) String() string { return h.id.String() }

// bindless2DSlots and bindlessCubeSlots are the descriptor-array
// capacities for the 2D and cube bindless tables. The spec's "slot 4"
// and "slot 4100" name the bind-group binding indices the two arrays
// occupy (pl_renderer_internal.c's uSlot=4 and uSlot=4100), not their
// sizes — the original caps both at PL_MAX_BINDLESS_TEXTURES descriptors;
// this module uses the same default capacity for each.
const (
	bindless2DSlots   = 4096
	bindlessCubeSlots = 4096
)

// bindlessTable is a slot allocator over a fixed-capacity descriptor
// array: free-list first, then append, capped at capacity. Once
// assigned, a handle's slot is stable until Release (§3 invariant).
type bindlessTable struct {
	capacity int
	slots    map[TextureHandle]int32
	freeList []int32
	next     int32
}

func newBindlessTable(capacity int) *bindlessTable {
	return &bindlessTable{
		capacity: capacity,
		slots:    make(map[TextureHandle]int32),
	}
}

var errBindlessTableFull = &ConfigurationError{Kind: "bindless_table_full"}

// Acquire returns h's existing slot, or assigns a fresh one (reused from
// the free list in preference to growing) and records it.
func (t *bindlessTable) Acquire(h TextureHandle) (int32, error) {
	if slot, ok := t.slots[h]; ok {
		return slot, nil
	}

	var slot int32
	if n := len(t.freeList); n > 0 {
		slot = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
	} else {
		if int(t.next) >= t.capacity {
			return -1, errBindlessTableFull
		}
		slot = t.next
		t.next++
	}

	t.slots[h] = slot
	return slot, nil
}

// Release frees h's slot for reuse. It is a no-op if h was never acquired.
func (t *bindlessTable) Release(h TextureHandle) {
	slot, ok := t.slots[h]
	if !ok {
		return
	}
	delete(t.slots, h)
	t.freeList = append(t.freeList, slot)
}

func (t *bindlessTable) Lookup(h TextureHandle) (int32, bool) {
	slot, ok := t.slots[h]
	return slot, ok
}
