package ember

// Query1..Query5 iterate the dense store of their first type parameter
// (A) and test membership against the rest, rather than
// walking archetypes — there are no archetypes in a dense/sparse library,
// only per-type stores addressed by TypeKey.
type Query1[A any] struct {
	ecs     *Ecs
	with    []TypeKey
	without []TypeKey
	any_    []TypeKey
}
type Query2[A, B any] struct {
	ecs     *Ecs
	with    []TypeKey
	without []TypeKey
	any_    []TypeKey
}
type Query3[A, B, C any] struct {
	ecs     *Ecs
	with    []TypeKey
	without []TypeKey
	any_    []TypeKey
}
type Query4[A, B, C, D any] struct {
	ecs     *Ecs
	with    []TypeKey
	without []TypeKey
	any_    []TypeKey
}
type Query5[A, B, C, D, E any] struct {
	ecs     *Ecs
	with    []TypeKey
	without []TypeKey
	any_    []TypeKey
}

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }
func MakeQuery4[A, B, C, D any](cmd *Commands) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{ecs: cmd.app.ecs}
}
func MakeQuery5[A, B, C, D, E any](cmd *Commands) Query5[A, B, C, D, E] {
	return Query5[A, B, C, D, E]{ecs: cmd.app.ecs}
}

func keysOf(ecs *Ecs, types ...any) []TypeKey {
	keys := make([]TypeKey, 0, len(types))
	for _, v := range types {
		t := componentType(v)
		ecs.mu.RLock()
		key, ok := ecs.typeIds[t]
		ecs.mu.RUnlock()
		if !ok {
			// Unregistered type can never match; use a key no store owns.
			key = TypeKey(^uint32(0))
		}
		keys = append(keys, key)
	}
	return keys
}

func (q Query1[A]) WithTypes(types ...any) Query1[A] {
	q.with = append(q.with, keysOf(q.ecs, types...)...)
	return q
}
func (q Query1[A]) WithoutTypes(types ...any) Query1[A] {
	q.without = append(q.without, keysOf(q.ecs, types...)...)
	return q
}
func (q Query1[A]) WithAnyTypes(types ...any) Query1[A] {
	q.any_ = append(q.any_, keysOf(q.ecs, types...)...)
	return q
}

func (q Query2[A, B]) WithTypes(types ...any) Query2[A, B] {
	q.with = append(q.with, keysOf(q.ecs, types...)...)
	return q
}
func (q Query2[A, B]) WithoutTypes(types ...any) Query2[A, B] {
	q.without = append(q.without, keysOf(q.ecs, types...)...)
	return q
}
func (q Query2[A, B]) WithAnyTypes(types ...any) Query2[A, B] {
	q.any_ = append(q.any_, keysOf(q.ecs, types...)...)
	return q
}

func (q Query3[A, B, C]) WithTypes(types ...any) Query3[A, B, C] {
	q.with = append(q.with, keysOf(q.ecs, types...)...)
	return q
}
func (q Query3[A, B, C]) WithoutTypes(types ...any) Query3[A, B, C] {
	q.without = append(q.without, keysOf(q.ecs, types...)...)
	return q
}
func (q Query3[A, B, C]) WithAnyTypes(types ...any) Query3[A, B, C] {
	q.any_ = append(q.any_, keysOf(q.ecs, types...)...)
	return q
}

func (q Query4[A, B, C, D]) WithTypes(types ...any) Query4[A, B, C, D] {
	q.with = append(q.with, keysOf(q.ecs, types...)...)
	return q
}
func (q Query4[A, B, C, D]) WithoutTypes(types ...any) Query4[A, B, C, D] {
	q.without = append(q.without, keysOf(q.ecs, types...)...)
	return q
}
func (q Query4[A, B, C, D]) WithAnyTypes(types ...any) Query4[A, B, C, D] {
	q.any_ = append(q.any_, keysOf(q.ecs, types...)...)
	return q
}

func (q Query5[A, B, C, D, E]) WithTypes(types ...any) Query5[A, B, C, D, E] {
	q.with = append(q.with, keysOf(q.ecs, types...)...)
	return q
}
func (q Query5[A, B, C, D, E]) WithoutTypes(types ...any) Query5[A, B, C, D, E] {
	q.without = append(q.without, keysOf(q.ecs, types...)...)
	return q
}
func (q Query5[A, B, C, D, E]) WithAnyTypes(types ...any) Query5[A, B, C, D, E] {
	q.any_ = append(q.any_, keysOf(q.ecs, types...)...)
	return q
}

func passesFilters(ecs *Ecs, e EntityId, without, any_ []TypeKey) bool {
	for _, k := range without {
		if store, ok := ecs.stores[k]; ok {
			if _, has := store.sparse[e.Index()]; has {
				return false
			}
		}
	}
	if len(any_) == 0 {
		return true
	}
	for _, k := range any_ {
		if store, ok := ecs.stores[k]; ok {
			if _, has := store.sparse[e.Index()]; has {
				return true
			}
		}
	}
	return false
}

func hasAllExtra(ecs *Ecs, e EntityId, extra []TypeKey) bool {
	for _, k := range extra {
		store, ok := ecs.stores[k]
		if !ok {
			return false
		}
		if _, has := store.sparse[e.Index()]; !has {
			return false
		}
	}
	return true
}

// Map iterates every entity carrying A (plus any With/Without/WithAny
// filters), invoking m(entity, &component). Returning false stops
// iteration early.
func (q Query1[A]) Map(m func(EntityId, *A) bool) {
	ecs := q.ecs
	ecs.mu.RLock()
	store := ecs.stores[typeKey[A](ecs)]
	dense := store.dense.([]A)
	entities := append([]EntityId(nil), store.entities...)
	ecs.mu.RUnlock()

	for i, e := range entities {
		if !hasAllExtra(ecs, e, q.with) || !passesFilters(ecs, e, q.without, q.any_) {
			continue
		}
		if !m(e, &dense[i]) {
			return
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool) {
	ecs := q.ecs
	ecs.mu.RLock()
	storeA := ecs.stores[typeKey[A](ecs)]
	storeB := ecs.stores[typeKey[B](ecs)]
	denseA := storeA.dense.([]A)
	entities := append([]EntityId(nil), storeA.entities...)
	ecs.mu.RUnlock()

	for i, e := range entities {
		idxB, ok := storeB.sparse[e.Index()]
		if !ok {
			continue
		}
		if !hasAllExtra(ecs, e, q.with) || !passesFilters(ecs, e, q.without, q.any_) {
			continue
		}
		b := storeB.dense.([]B)
		if !m(e, &denseA[i], &b[idxB]) {
			return
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool) {
	ecs := q.ecs
	ecs.mu.RLock()
	storeA := ecs.stores[typeKey[A](ecs)]
	storeB := ecs.stores[typeKey[B](ecs)]
	storeC := ecs.stores[typeKey[C](ecs)]
	denseA := storeA.dense.([]A)
	entities := append([]EntityId(nil), storeA.entities...)
	ecs.mu.RUnlock()

	for i, e := range entities {
		idxB, ok := storeB.sparse[e.Index()]
		if !ok {
			continue
		}
		idxC, ok := storeC.sparse[e.Index()]
		if !ok {
			continue
		}
		if !hasAllExtra(ecs, e, q.with) || !passesFilters(ecs, e, q.without, q.any_) {
			continue
		}
		b := storeB.dense.([]B)
		c := storeC.dense.([]C)
		if !m(e, &denseA[i], &b[idxB], &c[idxC]) {
			return
		}
	}
}

func (q Query4[A, B, C, D]) Map(m func(EntityId, *A, *B, *C, *D) bool) {
	ecs := q.ecs
	ecs.mu.RLock()
	storeA := ecs.stores[typeKey[A](ecs)]
	storeB := ecs.stores[typeKey[B](ecs)]
	storeC := ecs.stores[typeKey[C](ecs)]
	storeD := ecs.stores[typeKey[D](ecs)]
	denseA := storeA.dense.([]A)
	entities := append([]EntityId(nil), storeA.entities...)
	ecs.mu.RUnlock()

	for i, e := range entities {
		idxB, ok := storeB.sparse[e.Index()]
		if !ok {
			continue
		}
		idxC, ok := storeC.sparse[e.Index()]
		if !ok {
			continue
		}
		idxD, ok := storeD.sparse[e.Index()]
		if !ok {
			continue
		}
		if !hasAllExtra(ecs, e, q.with) || !passesFilters(ecs, e, q.without, q.any_) {
			continue
		}
		b := storeB.dense.([]B)
		c := storeC.dense.([]C)
		d := storeD.dense.([]D)
		if !m(e, &denseA[i], &b[idxB], &c[idxC], &d[idxD]) {
			return
		}
	}
}

func (q Query5[A, B, C, D, E]) Map(m func(EntityId, *A, *B, *C, *D, *E) bool) {
	ecs := q.ecs
	ecs.mu.RLock()
	storeA := ecs.stores[typeKey[A](ecs)]
	storeB := ecs.stores[typeKey[B](ecs)]
	storeC := ecs.stores[typeKey[C](ecs)]
	storeD := ecs.stores[typeKey[D](ecs)]
	storeE := ecs.stores[typeKey[E](ecs)]
	denseA := storeA.dense.([]A)
	entities := append([]EntityId(nil), storeA.entities...)
	ecs.mu.RUnlock()

	for i, e := range entities {
		idxB, ok := storeB.sparse[e.Index()]
		if !ok {
			continue
		}
		idxC, ok := storeC.sparse[e.Index()]
		if !ok {
			continue
		}
		idxD, ok := storeD.sparse[e.Index()]
		if !ok {
			continue
		}
		idxE, ok := storeE.sparse[e.Index()]
		if !ok {
			continue
		}
		if !hasAllExtra(ecs, e, q.with) || !passesFilters(ecs, e, q.without, q.any_) {
			continue
		}
		b := storeB.dense.([]B)
		c := storeC.dense.([]C)
		d := storeD.dense.([]D)
		eComp := storeE.dense.([]E)
		if !m(e, &denseA[i], &b[idxB], &c[idxC], &d[idxD], &eComp[idxE]) {
			return
		}
	}
}
