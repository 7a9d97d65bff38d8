// Command demo wires a minimal runtime together: an App with its standard
// stages, the hierarchy/transform/skin update systems, and a WindowModule
// opening a real OS window and WebGPU swapchain against it (§6
// "Application entry points").
package main

import (
	"github.com/emberforge/ember"
)

func main() {
	app := ember.NewApp().
		UseModules(
			ember.WindowModule{Width: 1280, Height: 720, Title: "ember"},
			ember.CoreSystemsModule{},
		).
		Build()

	state := ember.Resource[ember.WindowState](app)
	for !state.ShouldClose() {
		app.Step()
	}
}
