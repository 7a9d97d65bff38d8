package ember

// Commands is the deferred-mutation handle systems receive: entity and
// component changes queued through it are applied once per frame (at
// Step's flush point) so that a system iterating a Query never observes a
// store mutating underneath it mid-pass.
type Commands struct {
	app *App
}

func (cmd *Commands) App() *App { return cmd.app }

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// AddEntity reserves an entity handle immediately (so the caller can refer
// to it this frame) but defers attaching its components until flush.
func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.ecs.entities.create()
	cmd.app.pendingAdditions = append(cmd.app.pendingAdditions, pendingAdd{
		eid:        eid,
		components: components,
	})
	return eid
}

func (cmd *Commands) AddComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompAdds = append(cmd.app.pendingCompAdds, pendingCompAdd{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompRemovals = append(cmd.app.pendingCompRemovals, pendingCompRemoval{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveEntity(entityId EntityId) {
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, entityId)
}

func (cmd *Commands) GetAllComponents(entityId EntityId) []any {
	return cmd.app.ecs.AllComponents(entityId)
}

// flushCommands applies queued mutations grouped by kind, each group in
// submission order: new entities and their initial components first, then
// extra component adds, then component removals, then entity removals —
// matching the order a caller that adds an entity then immediately queues
// a component add on it expects.
func (app *App) flushCommands() {
	ecs := app.ecs

	for _, add := range app.pendingAdditions {
		for _, c := range add.components {
			addComponentAny(ecs, add.eid, c)
		}
		if tag, ok := GetComponent[Tag](ecs, add.eid); !ok || tag == nil {
			AddComponent(ecs, add.eid, Tag{Name: "unnamed"})
		}
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		for _, c := range add.components {
			addComponentAny(ecs, add.eid, c)
		}
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, rem := range app.pendingCompRemovals {
		for _, c := range rem.components {
			removeComponentAny(ecs, rem.eid, c)
		}
	}
	app.pendingCompRemovals = app.pendingCompRemovals[:0]

	for _, e := range app.pendingRemovals {
		ecs.RemoveEntity(e)
	}
	app.pendingRemovals = app.pendingRemovals[:0]
}
