package ember

import "reflect"

// NewApp constructs an App with the eight standard stages registered and
// no modules installed yet.
func NewApp() *App {
	ecs := MakeEcs()
	app := &App{
		resources:        make(map[reflect.Type]any),
		stateful:         false,
		systems:          make(map[string]map[State]map[statePhase][]systemFn),
		systemsStateless: make(map[string][]systemFn),
		ecs:              &ecs,
		modules:          make([]Module, 0),
	}
	app.stages = append(app.stages,
		Prelude, PreUpdate, Update, PostUpdate, PreRender, Render, PostRender, Finale)
	for _, stage := range app.stages {
		app.initStatefulStage(stage)
	}
	return app
}

// UseStates switches the app into stateful mode, gating OnEnter/OnExecute/
// OnExit-scheduled systems to [initialState, finalState].
func (app *App) UseStates(initialState, finalState State) *App {
	app.stateful = true
	app.initialState = initialState
	app.finalState = finalState
	for _, stage := range app.stages {
		app.initStatefulStage(stage)
	}
	return app
}

// UseModules queues modules to be installed by Build.
func (app *App) UseModules(modules ...Module) *App {
	app.modules = append(app.modules, modules...)
	return app
}

// Build installs every queued module. It is split from NewApp so that
// UseStates can run first and size the per-state system tables correctly.
func (app *App) Build() *App {
	commands := &Commands{app: app}
	for _, module := range app.modules {
		module.Install(app, commands)
	}
	app.ecs.Finalize()
	return app
}
