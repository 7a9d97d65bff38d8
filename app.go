package ember

import (
	"fmt"
	"reflect"
)

// State identifies a phase of the host's state machine (e.g. Loading,
// Playing). Stateless apps never transition and run every stage's systems
// every frame.
type State int

const STATELESS_STATE State = 0

type systemFn any

// Module installs systems, resources, and component registrations into an
// App being built. Extensions (§4.1) are modules loaded from a shared
// library rather than linked in, but present the same Install contract.
type Module interface {
	Install(app *App, commands *Commands)
}

// App is the single owner of the engine's runtime state: the ECS, the
// stage/state scheduler, and the resource map extensions and systems pull
// their dependencies from. It is the "Engine" value DESIGN NOTES calls for
// in place of package-level globals, so the data registry and api registry
// can be installed as ordinary resources and still survive a hot reload.
type App struct {
	stateful            bool
	stateMachineStarted bool
	stateTransitioning  bool
	initialState        State
	finalState          State
	nextState           State
	state               State

	stages           []Stage
	systems          map[string]map[State]map[statePhase][]systemFn
	systemsStateless map[string][]systemFn

	resources map[reflect.Type]any
	modules   []Module

	ecs *Ecs

	pendingAdditions    []pendingAdd
	pendingCompAdds     []pendingCompAdd
	pendingCompRemovals []pendingCompRemoval
	pendingRemovals     []EntityId
}

type pendingAdd struct {
	eid        EntityId
	components []any
}
type pendingCompAdd struct {
	eid        EntityId
	components []any
}
type pendingCompRemoval struct {
	eid        EntityId
	components []any
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

func (app *App) Ecs() *Ecs { return app.ecs }

// Step runs exactly one frame: every stage's stateless systems, the
// current state's execute-phase systems (if stateful), a state transition
// if one was requested mid-frame, then flushes queued Commands mutations.
// Frame-level ordering (§5): stages run in the order they were registered;
// a transition's exit/enter systems run across every stage once, after the
// frame's execute pass completes.
func (app *App) Step() {
	for _, stage := range app.stages {
		app.runStage(stage, execute)
	}

	if app.stateful && app.stateTransitioning {
		app.stateTransitioning = false
		app.executeChangeState(app.nextState)
	}

	app.flushCommands()
}

// Run loops Step forever; hosts that own their own frame pump (§6's
// app_update) should call Step directly instead.
func (app *App) Run() {
	if app.stateful {
		app.executeChangeState(app.initialState)
	}
	for {
		app.Step()
		if app.stateful && app.state == app.finalState {
			return
		}
	}
}

func (app *App) runStage(stage Stage, phase statePhase) {
	for _, system := range app.systemsStateless[stage.Name] {
		app.callSystem(system)
	}
	if app.stateful {
		for _, system := range app.systems[stage.Name][app.state][phase] {
			app.callSystem(system)
		}
	}
}

func (app *App) changeState(newState State) {
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	if !app.stateMachineStarted {
		app.stateMachineStarted = true
		app.state = newState
		app.runAllStages(enter)
		return
	}
	app.runAllStages(exit)
	app.state = newState
	app.runAllStages(enter)
}

func (app *App) runAllStages(phase statePhase) {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name][app.state][phase] {
			app.callSystem(system)
		}
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		elem := resourceType
		if elem.Kind() == reflect.Pointer {
			elem = elem.Elem()
		}
		if _, ok := app.resources[elem]; ok {
			panic(fmt.Sprintf("%s is already in resources", elem))
		}
		app.resources[elem] = resource
	}
	return app
}

// Resource looks up a resource of type T. Panics if it was never
// installed — callers resolve resources once at module-install time, so a
// missing one is a wiring bug, not a runtime condition.
func Resource[T any](app *App) *T {
	var zero T
	t := reflect.TypeOf(zero)
	r, ok := app.resources[t]
	if !ok {
		panic(fmt.Sprintf("ember: resource %s was never installed", t))
	}
	return r.(*T)
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())
	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, isResource := app.resources[underlyingType]; isResource {
			args[i] = reflect.NewAt(underlyingType, reflect.ValueOf(resource).UnsafePointer())
		} else {
			panic(fmt.Sprintf("ember: system %s has unresolvable dependency %s",
				systemValue.String(), argType))
		}
	}
	systemValue.Call(args)
}
