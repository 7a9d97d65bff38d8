package ember

import "fmt"

// ConfigurationError covers the §7 "Configuration" kind: type registered
// after finalize, extension path already registered, shadow atlas
// overflow, bindless table full. Policy: return the failure value and log
// at error — callers are expected to surface these, not retry.
type ConfigurationError struct {
	Kind    string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ember: configuration error (%s): %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("ember: configuration error (%s)", e.Kind)
}

// ResourceError covers the §7 "Resource" kind: asset failed to parse,
// shader variant not found, texture load failed. Policy: substitute a
// dummy (pink 2x2 texture, identity material, skipped drawable) and log
// at warn — the frame still presents.
type ResourceError struct {
	Kind    string
	Path    string
	Message string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("ember: resource error (%s) %s: %s", e.Kind, e.Path, e.Message)
}

// RuntimeError covers the §7 "Runtime" kind: GPU submission failed,
// present failed, read-back straddled a resize. Policy: attempt
// swapchain recreate and retry once; a second failure aborts the frame
// and logs at error.
type RuntimeError struct {
	Kind    string
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("ember: runtime error (%s): %s", e.Kind, e.Message)
}

// dummyBaseColor is the placeholder pink used for a failed texture load
// (§7's "substitute a dummy (pink 2x2 texture...)").
var dummyBaseColor = [4]float32{1, 0, 1, 1}
