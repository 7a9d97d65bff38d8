package ember

import (
	"fmt"
	"reflect"
	"sync"
)

// TypeKey is the small integer a ComponentLibrary uses to index into its
// per-type stores in O(1); it is assigned the first time a component type
// is registered or touched.
type TypeKey uint32

// TypeDescriptor is what a component type is registered with: a name for
// debug dumps, and optional lifecycle hooks. Init runs on the new slot
// AddComponent appends, and Cleanup runs on a slot just before it is
// removed. Reset is stored but never called by this package.
type TypeDescriptor struct {
	Name    string
	Init    func(ptr any)
	Reset   func(ptr any)
	Cleanup func(ptr any)
}

type componentStore struct {
	desc     TypeDescriptor
	elemType reflect.Type
	dense    any          // []T, grown via reflectSliceAppend
	entities []EntityId   // parallel to dense, same length
	sparse   map[uint32]int // entity index -> dense index
}

// Ecs is a ComponentLibrary: entity lifecycle plus one dense/sparse store
// per registered component type. Density and alignment between a store's
// dense slice and its parallel entity slice are the load-bearing invariant
// every other subsystem (queries, systems, scene staging) depends on.
type Ecs struct {
	mu sync.RWMutex

	entities *entityTable

	stores   map[TypeKey]*componentStore
	typeIds  map[reflect.Type]TypeKey
	nextType TypeKey
	finalized bool

	nameIndex map[string]EntityId
}

// ErrTypeRegistrationAfterFinalize is returned by RegisterComponent once the
// library has been finalized.
var ErrTypeRegistrationAfterFinalize = fmt.Errorf("ember: component type registered after library finalize")

func MakeEcs() Ecs {
	return Ecs{
		entities:  newEntityTable(),
		stores:    make(map[TypeKey]*componentStore),
		typeIds:   make(map[reflect.Type]TypeKey),
		nameIndex: make(map[string]EntityId),
	}
}

// NewEcs is the idiomatic constructor; MakeEcs is kept for callers that want
// a value rather than a pointer (historically the only constructor here).
func NewEcs() *Ecs {
	ecs := MakeEcs()
	return &ecs
}

func componentType(zero any) reflect.Type {
	t := reflect.TypeOf(zero)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// RegisterComponent declares a component type before the library is
// finalized. Registering the same type twice is idempotent. Registering
// after Finalize returns ErrTypeRegistrationAfterFinalize.
func RegisterComponent[T any](ecs *Ecs, desc TypeDescriptor) (TypeKey, error) {
	var zero T
	t := componentType(zero)

	ecs.mu.Lock()
	defer ecs.mu.Unlock()

	if key, ok := ecs.typeIds[t]; ok {
		return key, nil
	}
	if ecs.finalized {
		return 0, ErrTypeRegistrationAfterFinalize
	}

	key := ecs.nextType
	ecs.nextType++
	if desc.Name == "" {
		desc.Name = t.Name()
	}
	ecs.typeIds[t] = key
	ecs.stores[key] = &componentStore{
		desc:     desc,
		elemType: t,
		dense:    reflectSliceMake(t),
		sparse:   make(map[uint32]int),
	}
	return key, nil
}

// Finalize locks the set of registered component types. It is safe to call
// more than once.
func (ecs *Ecs) Finalize() {
	ecs.mu.Lock()
	defer ecs.mu.Unlock()
	ecs.finalized = true
}

// typeKey returns the TypeKey for T, implicitly registering it with a
// default descriptor on first use. This mirrors how query helpers resolve
// types on first use without requiring every caller to pre-register every
// component. After Finalize only an explicit RegisterComponent call is
// refused; a type first touched here is still given an empty store, the
// same way typeKeyOfValue resolves runtime-typed values.
func typeKey[T any](ecs *Ecs) TypeKey {
	var zero T
	t := componentType(zero)

	ecs.mu.RLock()
	key, ok := ecs.typeIds[t]
	ecs.mu.RUnlock()
	if ok {
		return key
	}

	key, err := RegisterComponent[T](ecs, TypeDescriptor{Name: t.Name()})
	if err != nil {
		// The only failure mode is post-finalize registration of a type
		// that was never pre-registered.
		return typeKeyOfValue(ecs, zero)
	}
	return key
}

// CreateEntity reserves a handle, attaches a Tag (defaulting to "unnamed"),
// and — when name is non-empty — indexes it in the library's name map.
func (ecs *Ecs) CreateEntity(name string) EntityId {
	e := ecs.entities.create()

	tagName := name
	if tagName == "" {
		tagName = "unnamed"
	}
	AddComponent(ecs, e, Tag{Name: tagName})
	if name != "" {
		ecs.mu.Lock()
		ecs.nameIndex[name] = e
		ecs.mu.Unlock()
	}
	return e
}

// IsValid reports whether e refers to a live entity at its recorded
// generation.
func (ecs *Ecs) IsValid(e EntityId) bool {
	return ecs.entities.isValid(e)
}

// CurrentEntityAt reconstructs the handle currently occupying index, at
// its current generation, or NullEntity if index was never allocated or
// is on the free list (removed and not yet reused). Picking read-back
// (§4.11's view state machine) uses this to resolve the raw entity index
// written into a pick buffer into a handle that is never stale: either
// the same entity that was there when the pick was issued, whatever new
// entity has since reused the slot, or null.
func (ecs *Ecs) CurrentEntityAt(index uint32) EntityId {
	ecs.mu.RLock()
	defer ecs.mu.RUnlock()
	gen, ok := ecs.entities.currentGeneration(index)
	if !ok || ecs.entities.isFree(index) {
		return NullEntity
	}
	return MakeEntityId(index, gen)
}

// Lookup resolves an entity by the name it was created or tagged with.
func (ecs *Ecs) Lookup(name string) (EntityId, bool) {
	ecs.mu.RLock()
	defer ecs.mu.RUnlock()
	e, ok := ecs.nameIndex[name]
	return e, ok
}

// RemoveEntity frees e's index for reuse (bumping its generation) and
// swap-removes e from every component store it appears in, preserving
// density. A null or already-stale handle is a no-op.
func (ecs *Ecs) RemoveEntity(e EntityId) {
	if !ecs.entities.isValid(e) {
		return
	}

	if tag, ok := GetComponent[Tag](ecs, e); ok {
		ecs.mu.Lock()
		if cur, exists := ecs.nameIndex[tag.Name]; exists && cur == e {
			delete(ecs.nameIndex, tag.Name)
		}
		ecs.mu.Unlock()
	}

	ecs.mu.Lock()
	for _, store := range ecs.stores {
		removeFromStore(store, e)
	}
	ecs.mu.Unlock()

	ecs.entities.remove(e)
}

// AddComponent attaches value as e's T component, growing the dense store
// if required, and returns a pointer to the stored copy. If e already has
// a T, that component is overwritten with value. A null-handle entity is
// a no-op returning nil.
func AddComponent[T any](ecs *Ecs, e EntityId, value T) *T {
	if e.IsNull() {
		return nil
	}
	key := typeKey[T](ecs)

	ecs.mu.Lock()
	defer ecs.mu.Unlock()
	store := ecs.stores[key]

	if idx, ok := store.sparse[e.Index()]; ok {
		reflectSliceSet(store.dense, idx, reflect.ValueOf(value))
		return sliceElemPtr[T](store.dense, idx)
	}

	idx := reflectSliceLen(store.dense)
	store.dense = reflectSliceAppend(store.dense, reflect.ValueOf(value))
	store.entities = append(store.entities, e)
	store.sparse[e.Index()] = idx
	if store.desc.Init != nil {
		store.desc.Init(sliceElemPtr[T](store.dense, idx))
	}
	return sliceElemPtr[T](store.dense, idx)
}

// typeKeyOfValue resolves (and implicitly registers) the TypeKey for a
// runtime-typed component value, for call sites that only have an `any`
// (Commands' dynamic add/remove API mirrors the host-facing ECS entry
// points, which take component values without a static type parameter).
func typeKeyOfValue(ecs *Ecs, component any) TypeKey {
	t := componentType(component)

	ecs.mu.RLock()
	key, ok := ecs.typeIds[t]
	ecs.mu.RUnlock()
	if ok {
		return key
	}

	ecs.mu.Lock()
	defer ecs.mu.Unlock()
	if key, ok := ecs.typeIds[t]; ok {
		return key
	}
	key = ecs.nextType
	ecs.nextType++
	ecs.typeIds[t] = key
	ecs.stores[key] = &componentStore{
		desc:     TypeDescriptor{Name: t.Name()},
		elemType: t,
		dense:    reflectSliceMake(t),
		sparse:   make(map[uint32]int),
	}
	return key
}

// addComponentAny is the reflection-based counterpart of AddComponent for
// callers (Commands' deferred queues) that only hold an `any`.
func addComponentAny(ecs *Ecs, e EntityId, component any) {
	if e.IsNull() {
		return
	}
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	key := typeKeyOfValue(ecs, v.Interface())

	ecs.mu.Lock()
	defer ecs.mu.Unlock()
	store := ecs.stores[key]

	if idx, ok := store.sparse[e.Index()]; ok {
		reflectSliceSet(store.dense, idx, v)
		return
	}

	idx := reflectSliceLen(store.dense)
	store.dense = reflectSliceAppend(store.dense, v)
	store.entities = append(store.entities, e)
	store.sparse[e.Index()] = idx
}

func removeComponentAny(ecs *Ecs, e EntityId, component any) {
	key := typeKeyOfValue(ecs, component)
	ecs.mu.Lock()
	defer ecs.mu.Unlock()
	removeFromStore(ecs.stores[key], e)
}

// AllComponents returns a copy of every component value attached to e;
// Commands.GetAllComponents exposes it to systems.
func (ecs *Ecs) AllComponents(e EntityId) []any {
	if !ecs.entities.isValid(e) {
		return nil
	}
	ecs.mu.RLock()
	defer ecs.mu.RUnlock()

	var out []any
	for _, store := range ecs.stores {
		idx, ok := store.sparse[e.Index()]
		if !ok {
			continue
		}
		out = append(out, reflectSliceGet(store.dense, idx).Interface())
	}
	return out
}

// RemoveComponent detaches T from e if present.
func RemoveComponent[T any](ecs *Ecs, e EntityId) {
	key := typeKey[T](ecs)
	ecs.mu.Lock()
	defer ecs.mu.Unlock()
	removeFromStore(ecs.stores[key], e)
}

func removeFromStore(store *componentStore, e EntityId) {
	idx, ok := store.sparse[e.Index()]
	if !ok {
		return
	}
	if store.desc.Cleanup != nil {
		store.desc.Cleanup(sliceElemPtr2(store.dense, idx))
	}

	last := reflectSliceLen(store.dense) - 1
	if idx != last {
		lastVal := reflectSliceGet(store.dense, last)
		reflectSliceSet(store.dense, idx, lastVal)
		movedEntity := store.entities[last]
		store.entities[idx] = movedEntity
		store.sparse[movedEntity.Index()] = idx
	}
	store.dense = reflectSliceTruncate(store.dense, last)
	store.entities = store.entities[:last]
	delete(store.sparse, e.Index())
}

// GetComponent returns a pointer to e's T component and true, or nil/false
// if e is stale or lacks the component. The returned pointer is only valid
// until the next mutation of the same store (add/remove may relocate the
// last element into the freed slot).
func GetComponent[T any](ecs *Ecs, e EntityId) (*T, bool) {
	if !ecs.entities.isValid(e) {
		return nil, false
	}
	key := typeKey[T](ecs)

	ecs.mu.RLock()
	defer ecs.mu.RUnlock()
	store := ecs.stores[key]
	idx, ok := store.sparse[e.Index()]
	if !ok {
		return nil, false
	}
	return sliceElemPtr[T](store.dense, idx), true
}

// HasComponent reports whether e currently has T attached.
func HasComponent[T any](ecs *Ecs, e EntityId) bool {
	_, ok := GetComponent[T](ecs, e)
	return ok
}

// GetComponents returns aligned dense views {components, entities} for bulk
// iteration over every live T.
func GetComponents[T any](ecs *Ecs) ([]T, []EntityId) {
	key := typeKey[T](ecs)
	ecs.mu.RLock()
	defer ecs.mu.RUnlock()
	store := ecs.stores[key]
	return store.dense.([]T), store.entities
}

func sliceElemPtr[T any](slice any, idx int) *T {
	s := slice.([]T)
	return &s[idx]
}

// sliceElemPtr2 returns an untyped pointer to a dense slot, used only for
// invoking a store's Cleanup hook (which itself type-asserts).
func sliceElemPtr2(slice any, idx int) any {
	v := reflect.ValueOf(slice).Index(idx).Addr()
	return v.Interface()
}

func reflectSliceTruncate(slice any, n int) any {
	v := reflect.ValueOf(slice)
	return v.Slice(0, n).Interface()
}

// DebugString dumps a per-type population summary, keyed by the type
// descriptor's registered name.
func (ecs *Ecs) DebugString() string {
	ecs.mu.RLock()
	defer ecs.mu.RUnlock()

	out := fmt.Sprintf("Ecs: %d live entities\n", len(ecs.entities.generations)-len(ecs.entities.freeList))
	for key, store := range ecs.stores {
		out += fmt.Sprintf("  [%d] %-16s %d rows\n", key, store.desc.Name, reflectSliceLen(store.dense))
	}
	return out
}
